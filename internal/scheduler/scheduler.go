// Package scheduler wires up the cron job that periodically recomputes the
// keyword match scores of every stored CV.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Rescorer recomputes stored match scores and reports how many CVs changed.
type Rescorer interface {
	RescoreAll(ctx context.Context) (int, error)
}

// Scheduler wraps robfig/cron and manages the rescore loop.
type Scheduler struct {
	cron    *cron.Cron
	svc     Rescorer
	spec    string // cron spec, e.g. "@every 6h"
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

// New creates a Scheduler firing on spec. Each run is bounded by timeout.
func New(svc Rescorer, spec string, timeout time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("scheduler")
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cronLogger{log.Sugar()})),
		svc:     svc,
		spec:    spec,
		timeout: timeout,
		log:     log,
	}
}

// Start registers the job and starts the scheduler. One rescore also runs
// immediately so scores are fresh without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("cron started", zap.String("spec", s.spec))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop shuts down the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("cron stopped")
}

// RunOnce performs a single rescore cycle.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	changed, err := s.svc.RescoreAll(ctx)
	if err != nil {
		s.log.Error("rescore cycle failed", zap.Error(err), zap.Int("changed", changed))
		return
	}
	s.log.Info("rescore cycle complete",
		zap.Int("changed", changed),
		zap.Duration("took", time.Since(start)),
	)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
