package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"todoink/internal/cycle"
	"todoink/internal/daemon"
	"todoink/internal/daemonrun"
	"todoink/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	var development bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the wake loop in the foreground until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
			})
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in log output")
	return cmd
}

func newOnceCommand(ctx *commandContext) *cobra.Command {
	var printSleep bool

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single wake cycle and report the next wake time",
		Long: "Run a single wake cycle and exit. Intended for an external scheduler\n" +
			"(cron, systemd timer, rtcwake) that powers the board between cycles.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			lock, err := daemon.AcquireLock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			logger, err := logging.NewFromConfig(cfg, "")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if printSleep {
				logger = logging.NewNop()
			}

			controller, closeFn, err := daemonrun.NewController(cfg, logger)
			if err != nil {
				return err
			}
			defer closeFn()

			report := controller.Run(cmd.Context())
			out := cmd.OutOrStdout()
			if printSleep {
				fmt.Fprintln(out, strconv.Itoa(int(report.SleepFor(time.Now()).Seconds())))
			} else {
				printReport(out, report)
			}
			if report.Err != nil && report.Outcome != cycle.OutcomeRendered {
				return report.Err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&printSleep, "print-sleep", false, "Print only the seconds until the next wake")
	return cmd
}

func printReport(out io.Writer, report cycle.Report) {
	rows := [][]string{
		{"Cycle", report.CycleID},
		{"Outcome", string(report.Outcome)},
		{"Rendered", yesNo(report.Rendered)},
		{"Stale", yesNo(report.Stale)},
		{"Clock synced", yesNo(report.Clock.Synced)},
		{"Focus resolved", yesNo(report.Resolved)},
		{"Focus tasks", strconv.Itoa(report.Focus)},
		{"Other tasks", strconv.Itoa(report.Overview)},
		{"Next wake", report.NextWake.Format(time.RFC1123)},
	}
	if report.Err != nil {
		rows = append(rows, []string{"Error", report.Err.Error()})
	}
	fmt.Fprintln(out, renderTable("Wake cycle", []string{"Field", "Value"}, rows, nil))
}
