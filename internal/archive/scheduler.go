package archive

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/campuspay/ledger/internal/ledger"
)

// Scheduler runs the sweep on a fixed interval. Retention is how old a
// record must be before it is archived.
type Scheduler struct {
	sweeper   *Sweeper
	interval  time.Duration
	retention time.Duration

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a Scheduler
func NewScheduler(sweeper *Sweeper, interval, retention time.Duration) *Scheduler {
	return &Scheduler{
		sweeper:   sweeper,
		interval:  interval,
		retention: retention,
		stop:      make(chan bool),
	}
}

// Start begins periodic sweeps, running one immediately
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.interval)
	s.wg.Add(1)
	go s.run()

	log.Printf("[SWEEP] Scheduler started with interval %v, retention %v", s.interval, s.retention)
}

// Stop halts the scheduler and waits for an in-flight sweep
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[SWEEP] Scheduler stopped")
	}
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) sweep() {
	cutoff := time.Now().UTC().Add(-s.retention)
	summary, err := s.sweeper.Archive(cutoff)
	if err != nil {
		if errors.Is(err, ledger.ErrSweepInProgress) {
			log.Println("[SWEEP] Skipping scheduled sweep, another sweep is running")
			return
		}
		log.Printf("[SWEEP] Scheduled sweep failed: %v", err)
		return
	}
	if summary.Archived > 0 || summary.PurgedKeys > 0 {
		log.Printf("[SWEEP] Scheduled sweep archived %d records to %s", summary.Archived, summary.ArchivePath)
	}
}
