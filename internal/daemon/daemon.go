package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"todoink/internal/config"
	"todoink/internal/cycle"
	"todoink/internal/logging"
)

// retryDelay is used when a cycle reports no usable next wake.
const retryDelay = time.Minute

// Runner executes one wake cycle.
type Runner interface {
	Run(ctx context.Context) cycle.Report
}

// Daemon drives wake cycles and enforces single-instance execution.
type Daemon struct {
	runner   Runner
	logger   *slog.Logger
	lockPath string
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time

	lock    *Lock
	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}

	mu     sync.Mutex
	last   cycle.Report
	cycles int
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Cycles       int
	LastCycle    cycle.Report
	LockFilePath string
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithNow replaces the clock used to compute sleep durations.
func WithNow(now func() time.Time) Option {
	return func(d *Daemon) {
		if now != nil {
			d.now = now
		}
	}
}

// WithAfter replaces the timer used between cycles.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(d *Daemon) {
		if after != nil {
			d.after = after
		}
	}
}

// New constructs a daemon around a cycle runner.
func New(cfg *config.Config, runner Runner, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and cycle runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Daemon{
		runner:   runner,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: cfg.LockPath(),
		now:      time.Now,
		after:    time.After,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start acquires the instance lock and launches the wake loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	lock, err := AcquireLock(d.lockPath)
	if err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	d.lock = lock
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)

	go d.loop(loopCtx, d.done)

	d.logger.Info("todoink daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts the wake loop after the current cycle and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.done != nil {
		<-d.done
		d.done = nil
	}
	if err := d.lock.Release(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove the lock file if no todoink process is running"),
			logging.String(logging.FieldImpact, "the next start may report an existing instance"),
		)
	}
	d.lock = nil
	d.running.Store(false)
	d.logger.Info("todoink daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		Cycles:       d.cycles,
		LastCycle:    d.last,
		LockFilePath: d.lockPath,
	}
}

func (d *Daemon) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		report := d.runner.Run(ctx)
		d.mu.Lock()
		d.last = report
		d.cycles++
		d.mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		wait := report.SleepFor(d.now())
		if wait <= 0 {
			wait = retryDelay
		}
		d.logger.Info("sleeping until next wake",
			logging.String(logging.FieldEventType, "daemon_sleep"),
			logging.String(logging.FieldCycleID, report.CycleID),
			logging.String("outcome", string(report.Outcome)),
			logging.Duration("sleep", wait),
			logging.Time("next_wake", report.NextWake),
		)

		select {
		case <-ctx.Done():
			return
		case <-d.after(wait):
		}
	}
}
