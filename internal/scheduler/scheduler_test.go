package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

type countingRunner struct {
	calls   atomic.Int64
	block   chan struct{}
	started chan struct{}
}

func (r *countingRunner) RunDaily(ctx context.Context) error {
	r.calls.Add(1)
	if r.started != nil {
		close(r.started)
	}
	if r.block != nil {
		<-r.block
	}
	return nil
}

func TestRunCycleInvokesRunner(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, "0 2 * * *", false)

	s.runCycle(context.Background())
	s.runCycle(context.Background())

	if got := runner.calls.Load(); got != 2 {
		t.Errorf("runner calls = %d, want 2", got)
	}
}

func TestRunCycleSkipsOverlap(t *testing.T) {
	runner := &countingRunner{
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	s := New(runner, "0 2 * * *", false)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runCycle(context.Background())
	}()
	<-runner.started

	// Second tick fires while the first cycle is still in flight.
	s.runCycle(context.Background())
	close(runner.block)
	wg.Wait()

	if got := runner.calls.Load(); got != 1 {
		t.Errorf("runner calls = %d, want 1 (overlapping tick must be skipped)", got)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(&countingRunner{}, "not a cron spec", false)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("want error for invalid cron spec")
	}
}
