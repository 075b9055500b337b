package ingest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MinInterval is the floor for the tick interval; configured values below
// it are clamped up
const MinInterval = 5 * time.Second

// Scheduler drives pipeline ticks on a fixed interval. Ticks never overlap:
// a firing that arrives while a tick is still running is skipped, not queued.
type Scheduler struct {
	pipeline Pipeline
	interval time.Duration
	inFlight atomic.Bool
	wg       sync.WaitGroup
}

// NewScheduler creates a Scheduler, clamping the interval to MinInterval
func NewScheduler(pipeline Pipeline, interval time.Duration) *Scheduler {
	if interval < MinInterval {
		log.Warnf("fetch interval below %s, clamping up", MinInterval)
		interval = MinInterval
	}
	return &Scheduler{
		pipeline: pipeline,
		interval: interval,
	}
}

// Run fires ticks until the context is cancelled, then waits for an
// in-progress tick to finish. The running tick gets a detached context so
// shutdown never forcibly aborts in-flight saves; each save is idempotent
// by video ID, so letting them complete needs no rollback.
func (s *Scheduler) Run(ctx context.Context) {
	log.Infof("scheduler started, fetching every %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("stopping scheduler")
			s.wg.Wait()
			return
		case <-ticker.C:
			s.fire(context.WithoutCancel(ctx))
		}
	}
}

// fire starts one tick unless the previous one is still running
func (s *Scheduler) fire(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		log.Warn("previous tick still running, skipping this firing")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Store(false)

		if _, err := s.pipeline.Tick(ctx); err != nil {
			// Recorded and retried at the next scheduled tick; no tick
			// failure is fatal to the process
			log.Errorf("scheduled fetch failed: %v", err)
		}
	}()
}
