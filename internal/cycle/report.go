package cycle

import (
	"time"

	"todoink/internal/services"
	"todoink/internal/state"
	"todoink/internal/timesync"
)

// Stage names a controller state.
type Stage string

const (
	StageWake        Stage = "wake"
	StageTimeSyncing Stage = "time_syncing"
	StageFetching    Stage = "fetching"
	StageResolving   Stage = "resolving"
	StagePlanning    Stage = "planning"
	StageRendering   Stage = "rendering"
	StageSleeping    Stage = "sleeping"
)

// Outcome summarizes how a cycle ended.
type Outcome string

const (
	OutcomeRendered      Outcome = "rendered"
	OutcomeFetchFailed   Outcome = "fetch_failed"
	OutcomeResolveFailed Outcome = "resolve_failed"
	OutcomeRenderFailed  Outcome = "render_failed"
	OutcomeCancelled     Outcome = "cancelled"
)

// Report describes one completed cycle.
type Report struct {
	CycleID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    Outcome
	Err        error
	// Stale is set when the clock was not synced or tasks could not be
	// fetched, so whatever the panel shows may be out of date.
	Stale    bool
	Rendered bool
	// Resolved is set when the focus ids were looked up during this cycle.
	Resolved bool
	Trail    []Stage
	Clock    timesync.WallClock
	State    state.PersistedState
	Focus    int
	Overview int
	NextWake time.Time
}

// Record converts the report into its persisted form.
func (r Report) Record() state.CycleRecord {
	rec := state.CycleRecord{
		CycleID:       r.CycleID,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		Outcome:       string(r.Outcome),
		Stale:         r.Stale,
		Rendered:      r.Rendered,
		FocusCount:    r.Focus,
		OverviewCount: r.Overview,
		NextWake:      r.NextWake,
	}
	if r.Err != nil {
		rec.ErrorKind = services.Kind(r.Err)
		rec.ErrorMessage = r.Err.Error()
	}
	return rec
}

// SleepFor returns how long to wait from now until the next wake.
func (r Report) SleepFor(now time.Time) time.Duration {
	if d := r.NextWake.Sub(now); d > 0 {
		return d
	}
	return 0
}
