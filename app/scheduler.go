package app

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"
)

// Scheduler fires the scan once a day at a fixed local time and
// accepts manual triggers from the admin endpoint. Runs never overlap:
// a trigger while a scan is in flight is refused.
type Scheduler struct {
	scanAt  string
	run     func(context.Context)
	trigger chan struct{}
	done    chan bool
	running atomic.Bool
}

// NewScheduler creates a scheduler firing daily at scanAt ("HH:MM").
func NewScheduler(scanAt string, run func(context.Context)) *Scheduler {
	return &Scheduler{
		scanAt:  scanAt,
		run:     run,
		trigger: make(chan struct{}, 1),
		done:    make(chan bool),
	}
}

// Start begins the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) {
	log.Printf("⏰ Daily scan scheduled at %s", s.scanAt)
	for {
		next, err := s.nextRun(time.Now())
		if err != nil {
			log.Printf("⚠️  Invalid scan time %q: %v — scheduler accepts manual triggers only", s.scanAt, err)
			next = time.Now().Add(24 * time.Hour)
		}
		timer := time.NewTimer(time.Until(next))
		if err != nil {
			// No daily fire time: only a trigger or Stop wakes the loop.
			timer.Stop()
		}

		select {
		case <-timer.C:
			s.execute(ctx)
		case <-s.trigger:
			timer.Stop()
			s.execute(ctx)
		case <-s.done:
			timer.Stop()
			log.Println("⏰ Scheduler stopped")
			return
		}
	}
}

// Stop stops the scheduling loop.
func (s *Scheduler) Stop() {
	s.done <- true
}

// Trigger queues an immediate scan. Returns false when a scan is
// already running or queued.
func (s *Scheduler) Trigger() bool {
	if s.running.Load() {
		return false
	}
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) execute(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)
	s.run(ctx)
}

// nextRun computes the next daily fire time strictly after now.
func (s *Scheduler) nextRun(now time.Time) (time.Time, error) {
	at, err := time.Parse("15:04", s.scanAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", s.scanAt, err)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
