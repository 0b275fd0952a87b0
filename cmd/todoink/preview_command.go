package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"todoink/internal/display"
	"todoink/internal/logging"
	"todoink/internal/planner"
	"todoink/internal/state"
	"todoink/internal/timesync"
	"todoink/internal/todoist"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var width int
	var skipSync bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the board to the terminal without touching the panel or saved state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			settings := cfg.Settings()
			logger := logging.NewNop()

			client, err := todoist.NewFromSettings(settings, logger)
			if err != nil {
				return err
			}
			store, err := state.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			now, stale := time.Now(), false
			if !skipSync {
				syncer := timesync.New(settings.SyncTimeout,
					timesync.WithFallbackOffsets(settings.GMTOffset, settings.DaylightOffset))
				wall, err := syncer.Sync(cmd.Context(), settings.NTPServer, settings.Timezone)
				now, stale = wall.Local, err != nil
			}

			tasks, err := client.ListTasks(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch tasks: %w", err)
			}

			st, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			if st.NeedsResolution(settings.Project, settings.Section) {
				res, err := client.Resolve(cmd.Context(), settings.Project, settings.Section)
				if err != nil {
					return fmt.Errorf("resolve focus: %w", err)
				}
				st = state.PersistedState{
					ProjectID:   res.ProjectID,
					SectionID:   res.SectionID,
					ProjectName: settings.Project,
					SectionName: settings.Section,
				}
			}

			focus, overview := planner.Plan(tasks, st)
			if width <= 0 {
				width = cfg.Display.Width
			}
			driver := display.NewWriterDriver(cmd.OutOrStdout(), width)
			return driver.Render(cmd.Context(), display.NewFrame(settings, now, stale, focus, overview))
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Override the configured panel width")
	cmd.Flags().BoolVar(&skipSync, "no-sync", false, "Use the system clock instead of querying NTP")
	return cmd
}
