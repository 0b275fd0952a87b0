package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"todoink/internal/config"
	"todoink/internal/cycle"
	"todoink/internal/daemon"
	"todoink/internal/display"
	"todoink/internal/logging"
	"todoink/internal/notifications"
	"todoink/internal/preflight"
	"todoink/internal/state"
	"todoink/internal/timesync"
	"todoink/internal/todoist"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the todoink daemon runtime loop.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("todoink-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:       levelFor(cfg, opts.LogLevel),
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update todoink.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "todoink-*.log", Exclude: []string{logPath}},
	)
	pidPath := filepath.Join(cfg.Paths.StateDir, "todoink.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	logPreflight(signalCtx, logger, cfg)

	controller, closeFn, err := NewController(cfg, logger)
	if err != nil {
		logger.Error("build wake cycle", logging.Error(err))
		return err
	}
	defer closeFn()

	d, err := daemon.New(cfg, controller, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("todoink daemon shutting down")
	return nil
}

// NewController wires the wake cycle from configuration. The returned close
// function releases the state database.
func NewController(cfg *config.Config, logger *slog.Logger) (*cycle.Controller, func() error, error) {
	return newController(cfg, logger, nil)
}

// NewControllerWithDriver is NewController with an explicit display driver.
func NewControllerWithDriver(cfg *config.Config, logger *slog.Logger, driver display.Driver) (*cycle.Controller, func() error, error) {
	return newController(cfg, logger, driver)
}

func newController(cfg *config.Config, logger *slog.Logger, driver display.Driver) (*cycle.Controller, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	settings := cfg.Settings()

	client, err := todoist.NewFromSettings(settings, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("todoist client: %w", err)
	}
	if driver == nil {
		textDriver, err := display.NewFromConfig(cfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("display driver: %w", err)
		}
		driver = textDriver
	}
	store, err := state.Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	syncer := timesync.New(settings.SyncTimeout,
		timesync.WithFallbackOffsets(settings.GMTOffset, settings.DaylightOffset),
		timesync.WithLogger(logger),
	)
	controller := cycle.New(settings, syncer, client, store, driver,
		cycle.WithNotifier(notifications.NewService(cfg)),
		cycle.WithLogger(logger),
	)
	return controller, store.Close, nil
}

func levelFor(cfg *config.Config, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return cfg.Logging.Level
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	results := preflight.RunAll(ctx, cfg, preflight.Options{})
	for _, r := range results {
		if r.Passed {
			logger.Info("preflight check passed",
				logging.String(logging.FieldEventType, "preflight_passed"),
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "run todoink status for details"),
			logging.String(logging.FieldImpact, "wake cycles may fail until resolved"),
		)
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "todoink.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// ReadPID returns the pid recorded by a running daemon, or 0 when none.
func ReadPID(cfg *config.Config) int {
	data, err := os.ReadFile(filepath.Join(cfg.Paths.StateDir, "todoink.pid"))
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
