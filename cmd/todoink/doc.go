// Package main hosts the todoink CLI entrypoint and command graph.
//
// The Cobra command tree covers the daemon loop (run), a single wake cycle for
// external schedulers (once), terminal previews, focus resolution, status
// reporting, and configuration scaffolding. Configuration resolution happens
// once per invocation in commandContext so subcommands only deal with output.
//
// Keep this package lean: behavior lives in the internal packages and is only
// surfaced here.
package main
