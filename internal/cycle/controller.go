package cycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"todoink/internal/config"
	"todoink/internal/display"
	"todoink/internal/logging"
	"todoink/internal/planner"
	"todoink/internal/services"
	"todoink/internal/state"
	"todoink/internal/timesync"
	"todoink/internal/todoist"
)

// Clock establishes the wall-clock time. On failure it still returns the
// best available time.
type Clock interface {
	Sync(ctx context.Context, host, rule string) (timesync.WallClock, error)
}

// TaskSource fetches tasks and resolves focus names.
type TaskSource interface {
	ListTasks(ctx context.Context) ([]todoist.Task, error)
	Resolve(ctx context.Context, projectName, sectionName string) (todoist.Resolution, error)
}

// Store persists cross-cycle state.
type Store interface {
	Load(ctx context.Context) (state.PersistedState, error)
	Save(ctx context.Context, st state.PersistedState) error
	RecordCycle(ctx context.Context, rec state.CycleRecord) error
	RecentCycles(ctx context.Context, limit int) ([]state.CycleRecord, error)
}

// Notifier reports failures that need a person to act.
type Notifier interface {
	NotifyAttentionNeeded(ctx context.Context, kind string, err error) error
	NotifyRecovered(ctx context.Context, previousKind string) error
}

// Controller runs wake cycles.
type Controller struct {
	settings config.Settings
	clock    Clock
	tasks    TaskSource
	store    Store
	driver   display.Driver
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier attaches a failure notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logging.NewComponentLogger(logger, "cycle") }
}

// WithNow replaces the clock used for cycle timestamps.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator replaces the cycle id generator.
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// New builds a controller.
func New(settings config.Settings, clock Clock, tasks TaskSource, store Store, driver display.Driver, opts ...Option) *Controller {
	c := &Controller{
		settings: settings,
		clock:    clock,
		tasks:    tasks,
		store:    store,
		driver:   driver,
		logger:   logging.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schedule returns the wake schedule derived from settings.
func (c *Controller) Schedule() Schedule {
	return Schedule{
		Interval:   c.settings.SleepInterval,
		WakeupHour: c.settings.WakeupHour,
		SleepHour:  c.settings.SleepHour,
	}
}

type run struct {
	ctx     context.Context
	logger  *slog.Logger
	report  Report
	state   state.PersistedState
	dirty   bool
	tasks   []todoist.Task
	planned struct {
		focus    []todoist.Task
		overview []todoist.Task
	}
}

func (r *run) enter(stage Stage) {
	r.report.Trail = append(r.report.Trail, stage)
	r.ctx = services.WithStage(r.ctx, string(stage))
}

func (r *run) log() *slog.Logger {
	return logging.WithContext(r.ctx, r.logger)
}

// fail records a failed outcome. Only the caller's own context being done
// counts as cancellation; request timeouts keep the stage outcome.
func (r *run) fail(outcome Outcome, err error) {
	if r.ctx.Err() != nil {
		outcome = OutcomeCancelled
	}
	r.report.Outcome = outcome
	r.report.Err = err
}

// Run executes one wake cycle. It always returns a report; failures are
// carried in Report.Err rather than returned.
func (c *Controller) Run(ctx context.Context) Report {
	r := &run{
		ctx:    services.WithCycleID(ctx, c.newID()),
		logger: c.logger,
	}
	r.report.CycleID, _ = services.CycleIDFromContext(r.ctx)
	r.report.StartedAt = c.now()

	r.enter(StageWake)
	c.wake(r)

	r.enter(StageTimeSyncing)
	c.syncTime(r)

	r.enter(StageFetching)
	if c.fetch(r) {
		if r.state.NeedsResolution(c.settings.Project, c.settings.Section) {
			r.enter(StageResolving)
			if !c.resolve(r) {
				return c.sleep(r)
			}
		}
		r.enter(StagePlanning)
		c.plan(r)

		r.enter(StageRendering)
		c.render(r)
	}
	return c.sleep(r)
}

func (c *Controller) wake(r *run) {
	st, err := c.store.Load(r.ctx)
	if err != nil {
		logging.WarnWithContext(r.log(), "persisted state unreadable; focus will be resolved again",
			"state_load_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the state directory permissions"),
			logging.String(logging.FieldImpact, "extra API calls this cycle"),
		)
		st = state.PersistedState{}
	}
	r.state = st
	r.log().Debug("woke",
		logging.String("project_id", st.ProjectID.String()),
		logging.String("section_id", st.SectionID.String()),
	)
}

func (c *Controller) syncTime(r *run) {
	wall, err := c.clock.Sync(r.ctx, c.settings.NTPServer, c.settings.Timezone)
	r.report.Clock = wall
	if err != nil {
		r.report.Stale = true
		logging.WarnWithContext(r.log(), "time sync failed; using system clock",
			"time_sync_failed",
			logging.Error(err),
			logging.String("ntp_server", c.settings.NTPServer),
			logging.String(logging.FieldErrorHint, "check NTP reachability or the timezone rule"),
			logging.String(logging.FieldImpact, "board clock marked as not synced"),
		)
		return
	}
	r.log().Debug("clock synced",
		logging.Time("local", wall.Local),
		logging.Duration("correction", wall.Correction),
	)
}

func (c *Controller) fetch(r *run) bool {
	tasks, err := c.tasks.ListTasks(r.ctx)
	if err != nil {
		r.report.Stale = true
		r.fail(OutcomeFetchFailed, err)
		logging.ErrorWithContext(r.log(), "task fetch failed; keeping previous frame",
			"fetch_failed",
			logging.Error(err),
			logging.String("error_kind", services.Kind(err)),
		)
		return false
	}
	r.tasks = tasks
	r.log().Info("tasks fetched", logging.Int("count", len(tasks)))
	return true
}

func (c *Controller) resolve(r *run) bool {
	project, section := c.settings.Project, c.settings.Section
	res, err := c.tasks.Resolve(r.ctx, project, section)
	if err != nil {
		r.fail(OutcomeResolveFailed, err)
		logging.ErrorWithContext(r.log(), "focus resolution failed; not rendering",
			"resolve_failed",
			logging.Error(err),
			logging.String("project", project),
			logging.String("section", section),
			logging.String("error_kind", services.Kind(err)),
		)
		return false
	}
	r.state = state.PersistedState{
		ProjectID:   res.ProjectID,
		SectionID:   res.SectionID,
		ProjectName: project,
		SectionName: section,
		ResolvedAt:  c.now(),
	}
	r.dirty = true
	r.report.Resolved = true
	r.log().Info("focus resolved",
		logging.String("project", project),
		logging.String("project_id", res.ProjectID.String()),
		logging.String("section", section),
		logging.String("section_id", res.SectionID.String()),
	)
	return true
}

func (c *Controller) plan(r *run) {
	r.planned.focus, r.planned.overview = planner.Plan(r.tasks, r.state)
	r.report.Focus = len(r.planned.focus)
	r.report.Overview = len(r.planned.overview)
}

func (c *Controller) render(r *run) {
	frame := display.NewFrame(c.settings, r.report.Clock.Local, r.report.Stale, r.planned.focus, r.planned.overview)
	if err := c.driver.Render(r.ctx, frame); err != nil {
		r.fail(OutcomeRenderFailed, err)
		logging.ErrorWithContext(r.log(), "render failed", "render_failed", logging.Error(err))
		return
	}
	r.report.Rendered = true
	r.report.Outcome = OutcomeRendered
}

func (c *Controller) sleep(r *run) Report {
	r.enter(StageSleeping)
	// Persistence runs even if the caller's context was cancelled mid-cycle.
	ctx := context.WithoutCancel(r.ctx)

	if r.dirty {
		if err := c.store.Save(ctx, r.state); err != nil {
			logging.ErrorWithContext(r.log(), "persist state failed", "state_save_failed", logging.Error(err))
			if r.report.Err == nil {
				r.report.Err = err
			}
		}
	}
	r.report.State = r.state

	now := r.report.Clock.Local
	if now.IsZero() {
		now = c.now()
	}
	schedule := c.Schedule()
	if rule := r.report.Clock.Rule; !rule.IsZero() {
		schedule.Zone = &rule
	}
	r.report.NextWake = schedule.Next(now)
	r.report.FinishedAt = c.now()

	previous := c.previousKind(ctx)
	if err := c.store.RecordCycle(ctx, r.report.Record()); err != nil {
		r.log().Warn("record cycle failed", logging.Error(err))
	}
	c.notify(ctx, r, previous)

	r.log().Info("cycle finished",
		logging.String("outcome", string(r.report.Outcome)),
		logging.Bool("stale", r.report.Stale),
		logging.Bool("rendered", r.report.Rendered),
		logging.Time("next_wake", r.report.NextWake),
		logging.Duration("elapsed", r.report.FinishedAt.Sub(r.report.StartedAt)),
	)
	return r.report
}

func (c *Controller) previousKind(ctx context.Context) string {
	recent, err := c.store.RecentCycles(ctx, 1)
	if err != nil || len(recent) == 0 {
		return ""
	}
	return recent[0].ErrorKind
}

// notify alerts once when a cycle first needs attention and once when it
// recovers, rather than on every wake.
func (c *Controller) notify(ctx context.Context, r *run, previousKind string) {
	if c.notifier == nil {
		return
	}
	var err error
	switch {
	case services.NeedsAttention(r.report.Err):
		kind := services.Kind(r.report.Err)
		if kind != previousKind {
			err = c.notifier.NotifyAttentionNeeded(ctx, kind, r.report.Err)
		}
	case r.report.Rendered && (previousKind == "auth" || previousKind == "resolution"):
		err = c.notifier.NotifyRecovered(ctx, previousKind)
	}
	if err != nil {
		r.log().Warn("notification failed", logging.Error(err))
	}
}
