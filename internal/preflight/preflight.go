package preflight

import (
	"context"

	"todoink/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects which checks RunAll performs.
type Options struct {
	// Offline skips checks that contact Todoist or the NTP server.
	Offline bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}
	settings := cfg.Settings()

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckTimezone(settings.Timezone),
	}
	if output := cfg.Display.Output; output != "" && output != "stdout" {
		results = append(results, CheckOutputPath(output))
	}
	if opts.Offline {
		return results
	}

	results = append(results,
		CheckTodoist(ctx, settings),
		CheckNTP(ctx, settings.NTPServer, settings.SyncTimeout),
	)
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
