// Package events carries ledger observability events to an injected sink.
// The engine never updates counters in place; aggregation happens in the
// collector that drains the queue.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Event kinds
const (
	KindPurchaseCommitted = "purchase_committed"
	KindPurchaseRejected  = "purchase_rejected"
	KindTopUpApplied      = "topup_applied"
	KindSweepCompleted    = "sweep_completed"
)

// Event is one ledger observation
type Event struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	CardID   string    `json:"card_id,omitempty"`
	Total    int64     `json:"total,omitempty"`
	Units    int       `json:"units,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Archived int64     `json:"archived,omitempty"`
	Purged   int64     `json:"purged,omitempty"`
	At       time.Time `json:"at"`
}

// Sink receives ledger events. Implementations must not block the purchase
// path on failure; a lost event is logged and dropped.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// RedisSink queues events for the collector
type RedisSink struct {
	client   *redis.Client
	queueKey string
}

// NewRedisSink creates a queue-backed sink
func NewRedisSink(client *redis.Client, queueKey string) *RedisSink {
	return &RedisSink{client: client, queueKey: queueKey}
}

// Record pushes the event onto the queue
func (s *RedisSink) Record(ctx context.Context, ev Event) {
	stamp(&ev)
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[EVENTS] Failed to marshal event: %v", err)
		return
	}
	if err := s.client.RPush(ctx, s.queueKey, data).Err(); err != nil {
		log.Printf("[EVENTS] Failed to queue event %s: %v", ev.Kind, err)
	}
}

// LogSink writes events as JSON audit lines when Redis is unavailable
type LogSink struct{}

// Record logs the event
func (s *LogSink) Record(_ context.Context, ev Event) {
	stamp(&ev)
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[EVENTS] Failed to marshal event: %v", err)
		return
	}
	log.Printf("AUDIT: %s", data)
}

// NewSink returns the Redis sink when a client is available and falls back
// to the log sink otherwise
func NewSink(client *redis.Client, queueKey string) Sink {
	if client == nil {
		return &LogSink{}
	}
	return NewRedisSink(client, queueKey)
}

func stamp(ev *Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
}
