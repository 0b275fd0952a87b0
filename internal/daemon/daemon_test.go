package daemon_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"todoink/internal/cycle"
	"todoink/internal/daemon"
	"todoink/internal/testsupport"
)

type fakeRunner struct {
	mu       sync.Mutex
	runs     int
	nextWake time.Time
	ran      chan struct{}
}

func (f *fakeRunner) Run(context.Context) cycle.Report {
	f.mu.Lock()
	f.runs++
	n := f.runs
	f.mu.Unlock()
	select {
	case f.ran <- struct{}{}:
	default:
	}
	return cycle.Report{CycleID: fmt.Sprintf("cycle-%d", n), Outcome: cycle.OutcomeRendered, NextWake: f.nextWake}
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	runner := &fakeRunner{nextWake: now.Add(30 * time.Minute), ran: make(chan struct{}, 8)}

	var waitsMu sync.Mutex
	var waits []time.Duration
	after := func(d time.Duration) <-chan time.Time {
		waitsMu.Lock()
		waits = append(waits, d)
		waitsMu.Unlock()
		ch := make(chan time.Time, 1)
		ch <- now
		return ch
	}

	d, err := daemon.New(cfg, runner, nil, daemon.WithNow(func() time.Time { return now }), daemon.WithAfter(after))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		select {
		case <-runner.ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("cycle %d did not run", i+1)
		}
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("lock path = %q, want %q", status.LockFilePath, cfg.LockPath())
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status()
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
	if status.Cycles < 3 {
		t.Fatalf("expected at least 3 cycles, got %d", status.Cycles)
	}

	waitsMu.Lock()
	defer waitsMu.Unlock()
	for _, w := range waits {
		if w != 30*time.Minute {
			t.Fatalf("unexpected sleep %s", w)
		}
	}
}

func TestDaemonPastWakeUsesRetryDelay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	runner := &fakeRunner{ran: make(chan struct{}, 8)}
	got := make(chan time.Duration, 1)
	after := func(d time.Duration) <-chan time.Time {
		select {
		case got <- d:
		default:
		}
		return make(chan time.Time)
	}

	d, err := daemon.New(cfg, runner, nil, daemon.WithNow(func() time.Time { return now }), daemon.WithAfter(after))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	select {
	case wait := <-got:
		if wait != time.Minute {
			t.Fatalf("wait = %s, want 1m", wait)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon never slept")
	}
}

func TestAcquireLockExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := daemon.AcquireLock(cfg.LockPath())
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if _, err := daemon.AcquireLock(cfg.LockPath()); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := daemon.AcquireLock(cfg.LockPath())
	if err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
	_ = again.Release()
}

func TestNewRequiresRunner(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemon.New(cfg, nil, nil); err == nil {
		t.Fatal("expected error without runner")
	}
}
