// Package daemon coordinates the long-running todoink process.
//
// It owns the wake loop: run one cycle, sleep until the reported next wake,
// repeat until the context is cancelled. A flock-based lock in the state
// directory prevents two processes (a daemon and a one-shot run, or two
// daemons) from driving the panel at the same time.
//
// Keep orchestration logic here: the stages of a cycle live in the cycle
// package while the daemon focuses on startup, shutdown, and pacing.
package daemon
