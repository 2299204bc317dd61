package app

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNextRunSameDay(t *testing.T) {
	s := NewScheduler("13:30", nil)
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	next, err := s.nextRun(now)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 6, 15, 13, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("nextRun = %v, want %v", next, want)
	}
}

func TestNextRunRollsToTomorrow(t *testing.T) {
	s := NewScheduler("13:30", nil)
	now := time.Date(2025, 6, 15, 13, 30, 0, 0, time.UTC)

	next, err := s.nextRun(now)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 6, 16, 13, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("nextRun = %v, want tomorrow %v", next, want)
	}
}

func TestNextRunInvalidTime(t *testing.T) {
	s := NewScheduler("25:99", nil)
	if _, err := s.nextRun(time.Now()); err == nil {
		t.Fatal("expected error for invalid HH:MM")
	}
}

func TestTriggerRunsScanOnce(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	release := make(chan struct{})
	s := NewScheduler("13:30", func(context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
		<-release
	})

	go s.Start(context.Background())
	defer s.Stop()

	if !s.Trigger() {
		t.Fatal("first trigger refused")
	}

	// Wait for the run to begin, then verify overlap is refused.
	deadline := time.After(2 * time.Second)
	for !s.running.Load() {
		select {
		case <-deadline:
			t.Fatal("scan never started")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if s.Trigger() {
		t.Error("trigger accepted while scan running")
	}
	close(release)

	// Allow the loop to come back around before stopping.
	for s.running.Load() {
		time.Sleep(5 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}
