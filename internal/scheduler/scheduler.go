// Package scheduler runs smoke checks on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ziadkadry99/toolprobe/internal/history"
	"github.com/ziadkadry99/toolprobe/internal/smoke"
)

// Runner triggers one smoke run. *smoke.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, source history.Source) (*smoke.Result, error)
}

// Scheduler triggers a smoke run each time its cron expression fires.
// A run still in flight when the next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	timeout time.Duration
	entry   cron.EntryID
}

// New creates a scheduler. timeout bounds each run; zero means unbounded.
func New(runner Runner, timeout time.Duration) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		runner:  runner,
		timeout: timeout,
	}
}

// Schedule registers the smoke run under a standard five-field cron
// expression or a descriptor such as "@every 5m". It may be called once.
func (s *Scheduler) Schedule(spec string) error {
	if s.entry != 0 {
		return errors.New("schedule already set")
	}
	id, err := s.cron.AddFunc(spec, s.RunOnce)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entry = id
	return nil
}

// Next returns the next activation time, or the zero time if nothing is scheduled
// or the scheduler is not running.
func (s *Scheduler) Next() time.Time {
	if s.entry == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entry).Next
}

// Start begins firing in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and returns a context that is done once any
// in-flight run has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce performs a single scheduled run and logs its outcome.
func (s *Scheduler) RunOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.runner.Run(ctx, history.SourceSchedule)
	switch {
	case err != nil:
		log.Printf("scheduler: smoke run failed: %v", err)
	case res != nil:
		log.Printf("scheduler: smoke run %s ok (%s, %d output tokens)",
			res.Run.ID, res.Run.Duration.Round(time.Millisecond), res.Run.OutputTokens)
	}
}
