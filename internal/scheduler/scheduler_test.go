package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"hrhelper/recruiter-service/internal/scheduler"
)

type countingRescorer struct {
	calls   atomic.Int32
	err     error
	ran     chan struct{}
	sawDead atomic.Bool
}

func newCounting() *countingRescorer {
	return &countingRescorer{ran: make(chan struct{}, 8)}
}

func (r *countingRescorer) RescoreAll(ctx context.Context) (int, error) {
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		r.sawDead.Store(true)
	}
	r.ran <- struct{}{}
	return 3, r.err
}

func TestStart_RunsImmediately(t *testing.T) {
	r := newCounting()
	s := scheduler.New(r, "@every 1h", time.Minute, zap.NewNop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case <-r.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("no immediate rescore run")
	}
	if !r.sawDead.Load() {
		t.Error("run context has no deadline")
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := scheduler.New(newCounting(), "every now and then", time.Minute, nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start accepted an invalid cron spec")
	}
}

func TestRunOnce_ErrorIsLogged(t *testing.T) {
	r := newCounting()
	r.err = errors.New("database down")
	s := scheduler.New(r, "@every 1h", 0, nil)

	s.RunOnce(context.Background())
	if got := r.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
	if r.sawDead.Load() {
		t.Error("zero timeout should not set a deadline")
	}
}

func TestStop_WaitsForImmediateRun(t *testing.T) {
	r := newCounting()
	s := scheduler.New(r, "@every 1h", time.Minute, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Stop()
	if got := r.calls.Load(); got != 1 {
		t.Errorf("calls after Stop = %d, want 1", got)
	}
}
