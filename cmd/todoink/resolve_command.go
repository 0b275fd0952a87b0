package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"todoink/internal/config"
	"todoink/internal/daemon"
	"todoink/internal/logging"
	"todoink/internal/state"
	"todoink/internal/todoist"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun bool
		reset  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Look up the focus project and section ids and save them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if reset {
				return clearFocus(cmd, cfg)
			}
			settings := cfg.Settings()

			client, err := todoist.NewFromSettings(settings, logging.NewNop())
			if err != nil {
				return err
			}
			res, err := client.Resolve(cmd.Context(), settings.Project, settings.Section)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable("Focus", []string{"Kind", "Name", "ID"}, [][]string{
				{"Project", settings.Project, res.ProjectID.String()},
				{"Section", settings.Section, res.SectionID.String()},
			}, nil))
			if dryRun {
				return nil
			}

			lock, err := daemon.AcquireLock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			store, err := state.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Save(cmd.Context(), state.PersistedState{
				ProjectID:   res.ProjectID,
				SectionID:   res.SectionID,
				ProjectName: settings.Project,
				SectionName: settings.Section,
				ResolvedAt:  time.Now(),
			}); err != nil {
				return err
			}
			fmt.Fprintln(out, "Saved focus ids")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the ids without saving them")
	cmd.Flags().BoolVar(&reset, "reset", false, "Forget the saved ids so the next wake resolves again")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "reset")
	return cmd
}

func clearFocus(cmd *cobra.Command, cfg *config.Config) error {
	lock, err := daemon.AcquireLock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	store, err := state.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cleared saved focus ids")
	return nil
}
