package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"todoink/internal/config"
	"todoink/internal/daemon"
	"todoink/internal/daemonrun"
	"todoink/internal/preflight"
	"todoink/internal/state"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, focus, recent cycle, and readiness status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			store, err := state.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			st, loadErr := store.Load(cmd.Context())
			cycles, cyclesErr := store.RecentCycles(cmd.Context(), limit)

			var lines []string
			lines = append(lines, renderSectionHeader("todoink", colorize)...)
			lines = append(lines, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			kind, message := daemonStatus(cfg)
			lines = append(lines, renderStatusLine("Daemon", kind, message, colorize))
			kind, message = focusStatus(cfg, st, loadErr)
			lines = append(lines, renderStatusLine("Focus", kind, message, colorize))
			if len(cycles) > 0 {
				last := cycles[0]
				kind := statusOK
				if !last.Rendered {
					kind = statusWarn
				}
				lines = append(lines, renderStatusLine("Last cycle", kind,
					fmt.Sprintf("%s at %s", last.Outcome, last.StartedAt.Local().Format(time.DateTime)), colorize))
				if !last.NextWake.IsZero() {
					lines = append(lines, renderStatusLine("Next wake", statusInfo, last.NextWake.Local().Format(time.DateTime), colorize))
				}
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			lines = append(lines, checkLines(preflight.RunAll(cmd.Context(), cfg, preflight.Options{Offline: offline}), colorize)...)
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if cyclesErr != nil {
				return cyclesErr
			}
			if len(cycles) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderCycleTable(cycles))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that contact Todoist or NTP")
	cmd.Flags().IntVar(&limit, "cycles", 10, "Number of recent cycles to list")
	return cmd
}

func daemonStatus(cfg *config.Config) (statusKind, string) {
	lock, err := daemon.AcquireLock(cfg.LockPath())
	if errors.Is(err, daemon.ErrAlreadyRunning) {
		if pid := daemonrun.ReadPID(cfg); pid > 0 {
			return statusOK, fmt.Sprintf("running (pid %d)", pid)
		}
		return statusOK, "cycle in progress"
	}
	if err != nil {
		return statusWarn, err.Error()
	}
	_ = lock.Release()
	return statusInfo, "not running"
}

func focusStatus(cfg *config.Config, st state.PersistedState, loadErr error) (statusKind, string) {
	focus := fmt.Sprintf("%s / %s", cfg.Focus.Project, cfg.Focus.Section)
	switch {
	case loadErr != nil:
		return statusError, loadErr.Error()
	case !st.Resolved():
		return statusWarn, focus + " (not resolved yet)"
	case st.NeedsResolution(cfg.Focus.Project, cfg.Focus.Section):
		return statusWarn, fmt.Sprintf("%s (names changed since last resolution of %s / %s)", focus, st.ProjectName, st.SectionName)
	default:
		return statusOK, fmt.Sprintf("%s (project %s, section %s)", focus, st.ProjectID, st.SectionID)
	}
}

func renderCycleTable(cycles []state.CycleRecord) string {
	rows := make([][]string, 0, len(cycles))
	for _, c := range cycles {
		errText := c.ErrorKind
		if errText == "" {
			errText = "-"
		}
		rows = append(rows, []string{
			c.StartedAt.Local().Format("01-02 15:04"),
			c.Outcome,
			yesNo(c.Stale),
			strconv.Itoa(c.FocusCount),
			strconv.Itoa(c.OverviewCount),
			c.Duration().Round(time.Millisecond).String(),
			errText,
		})
	}
	return renderTable("Recent cycles",
		[]string{"Started", "Outcome", "Stale", "Focus", "Other", "Took", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}
