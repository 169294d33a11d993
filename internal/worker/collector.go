// Package worker aggregates ledger events into running statistics. The
// collector drains the Redis event queue on an interval; nothing on the
// purchase path ever touches these counters directly.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/campuspay/ledger/internal/events"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

// Stats is a point-in-time aggregate of ledger activity since startup.
// AveragePurchase is gross revenue over committed purchases, in øre with
// two decimal places.
type Stats struct {
	Committed        int64            `json:"committed"`
	Rejected         int64            `json:"rejected"`
	TopUps           int64            `json:"topups"`
	Sweeps           int64            `json:"sweeps"`
	UnitsSold        int64            `json:"units_sold"`
	GrossRevenue     int64            `json:"gross_revenue"`
	AveragePurchase  string           `json:"average_purchase"`
	RejectionReasons map[string]int64 `json:"rejection_reasons,omitempty"`
	LastEventAt      *time.Time       `json:"last_event_at,omitempty"`
}

// Status is the admin view of the collector
type Status struct {
	Running     bool       `json:"running"`
	Drains      int64      `json:"drains"`
	LastDrainAt *time.Time `json:"last_drain_at,omitempty"`
	Stats       Stats      `json:"stats"`
}

// Collector drains the event queue and keeps running totals
type Collector struct {
	client    *redis.Client
	queueKey  string
	interval  time.Duration
	batchSize int

	mu        sync.RWMutex
	committed int64
	rejected  int64
	topups    int64
	sweeps    int64
	units     int64
	gross     int64
	reasons   map[string]int64
	lastEvent time.Time
	drains    int64
	lastDrain time.Time
	running   bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	runMu  sync.Mutex
}

// NewCollector creates a Collector over the shared Redis client
func NewCollector(client *redis.Client, queueKey string, interval time.Duration, batchSize int) *Collector {
	return &Collector{
		client:    client,
		queueKey:  queueKey,
		interval:  interval,
		batchSize: batchSize,
		reasons:   make(map[string]int64),
		stop:      make(chan bool),
	}
}

// Start begins draining on the configured interval
func (c *Collector) Start() {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.client == nil {
		log.Println("[COLLECTOR] Redis unavailable, collector not starting")
		return
	}

	c.ticker = time.NewTicker(c.interval)
	c.wg.Add(1)
	go c.run()

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	log.Printf("[COLLECTOR] Started with poll interval %v", c.interval)
}

// Stop halts the collector after the current drain
func (c *Collector) Stop() {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	if c.ticker != nil {
		c.ticker.Stop()
		close(c.stop)
		c.wg.Wait()

		c.mu.Lock()
		c.running = false
		c.mu.Unlock()

		log.Println("[COLLECTOR] Stopped")
	}
}

func (c *Collector) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ticker.C:
			c.Drain()
		case <-c.stop:
			return
		}
	}
}

// Drain pulls queued events until the queue is empty and folds them into
// the totals
func (c *Collector) Drain() {
	ctx := context.Background()

	for {
		vals, err := c.client.LPopCount(ctx, c.queueKey, c.batchSize).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			log.Printf("[COLLECTOR] Drain failed: %v", err)
			break
		}
		if len(vals) == 0 {
			break
		}

		for _, raw := range vals {
			var ev events.Event
			if err := json.Unmarshal([]byte(raw), &ev); err != nil {
				log.Printf("[COLLECTOR] Dropping malformed event: %v", err)
				continue
			}
			c.apply(ev)
		}

		if len(vals) < c.batchSize {
			break
		}
	}

	c.mu.Lock()
	c.drains++
	c.lastDrain = time.Now().UTC()
	c.mu.Unlock()
}

func (c *Collector) apply(ev events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case events.KindPurchaseCommitted:
		c.committed++
		c.units += int64(ev.Units)
		c.gross += ev.Total
	case events.KindPurchaseRejected:
		c.rejected++
		c.reasons[ev.Reason]++
	case events.KindTopUpApplied:
		c.topups++
	case events.KindSweepCompleted:
		c.sweeps++
	default:
		log.Printf("[COLLECTOR] Unknown event kind %q", ev.Kind)
		return
	}

	if ev.At.After(c.lastEvent) {
		c.lastEvent = ev.At
	}
}

// Snapshot returns a copy of the current totals
func (c *Collector) Snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		Committed:       c.committed,
		Rejected:        c.rejected,
		TopUps:          c.topups,
		Sweeps:          c.sweeps,
		UnitsSold:       c.units,
		GrossRevenue:    c.gross,
		AveragePurchase: "0",
	}
	if c.committed > 0 {
		stats.AveragePurchase = decimal.NewFromInt(c.gross).
			DivRound(decimal.NewFromInt(c.committed), 2).String()
	}
	if len(c.reasons) > 0 {
		stats.RejectionReasons = make(map[string]int64, len(c.reasons))
		for reason, n := range c.reasons {
			stats.RejectionReasons[reason] = n
		}
	}
	if !c.lastEvent.IsZero() {
		at := c.lastEvent
		stats.LastEventAt = &at
	}
	return stats
}

// CurrentStatus returns the admin view
func (c *Collector) CurrentStatus() Status {
	stats := c.Snapshot()

	c.mu.RLock()
	defer c.mu.RUnlock()

	status := Status{
		Running: c.running,
		Drains:  c.drains,
		Stats:   stats,
	}
	if !c.lastDrain.IsZero() {
		at := c.lastDrain
		status.LastDrainAt = &at
	}
	return status
}
