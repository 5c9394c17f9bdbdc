// Package scheduler wires up the cron job that triggers the daily
// lifecycle cycle.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/freshspot/jobharvest/internal/logger"
)

// Runner is the daily cycle entry point. Implemented by service.Manager.
type Runner interface {
	RunDaily(ctx context.Context) error
}

// Scheduler wraps robfig/cron and manages the daily cycle.
type Scheduler struct {
	cron       *cron.Cron
	runner     Runner
	spec       string // cron spec, e.g. "0 2 * * *"
	runOnStart bool

	mu      sync.Mutex
	running bool
}

// New creates a Scheduler firing on the given cron spec. When runOnStart is
// set, one cycle runs immediately after Start instead of waiting for the
// first tick.
func New(runner Runner, spec string, runOnStart bool) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		runner:     runner,
		spec:       spec,
		runOnStart: runOnStart,
	}
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to register cron job: %w", err)
	}

	s.cron.Start()
	logger.FromContext(ctx).WithField("spec", s.spec).Info("Scheduler started")

	if s.runOnStart {
		go s.runCycle(ctx)
	}
	return nil
}

// Stop shuts down the scheduler and waits for an in-flight cycle's cron
// callback to return.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// runCycle runs one daily cycle, skipping the tick if one is still running.
// A cycle can outlast its interval when a source is slow; overlapping runs
// would double-append to the ledgers.
func (s *Scheduler) runCycle(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.FromContext(ctx).Warn("Previous cycle still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.runner.RunDaily(ctx); err != nil {
		logger.FromContext(ctx).WithError(err).Error("Daily cycle failed")
	}
}
