package display

import (
	"context"
	"fmt"
	"time"

	"todoink/internal/config"
	"todoink/internal/todoist"
)

// Driver draws a complete frame. Each call is a full refresh.
type Driver interface {
	Render(ctx context.Context, frame Frame) error
}

// Frame is everything shown during one refresh.
type Frame struct {
	// Now is the cycle's wall-clock time in the board's local zone.
	Now   time.Time
	Stale bool
	Units config.Units

	Weekdays [7]string
	Months   [12]string

	FocusTitle string
	Focus      []todoist.Task
	Overview   []todoist.Task
}

// NewFrame fills the locale fields of a frame from settings.
func NewFrame(s config.Settings, now time.Time, stale bool, focus, overview []todoist.Task) Frame {
	return Frame{
		Now:        now,
		Stale:      stale,
		Units:      s.Units,
		Weekdays:   s.Weekdays,
		Months:     s.Months,
		FocusTitle: fmt.Sprintf("%s / %s", s.Project, s.Section),
		Focus:      focus,
		Overview:   overview,
	}
}

func (f Frame) weekday(day time.Weekday) string { return config.WeekdayName(f.Weekdays, day) }

func (f Frame) month(month time.Month) string { return config.MonthName(f.Months, month) }

func (f Frame) imperial() bool { return f.Units != config.UnitsMetric }

// Header formats the date line, for example "Sun Mar 10, 2024  7:30 AM EDT"
// for imperial units or "Sun 10 Mar 2024  07:30 EDT" for metric.
func (f Frame) Header() string {
	now := f.Now
	var line string
	if f.imperial() {
		line = fmt.Sprintf("%s %s %d, %d  %s", f.weekday(now.Weekday()), f.month(now.Month()), now.Day(), now.Year(), now.Format("3:04 PM MST"))
	} else {
		line = fmt.Sprintf("%s %d %s %d  %s", f.weekday(now.Weekday()), now.Day(), f.month(now.Month()), now.Year(), now.Format("15:04 MST"))
	}
	if f.Stale {
		line += "  (clock not synced)"
	}
	return line
}

// DueLabel formats a task's due date relative to the frame's locale. Overdue
// tasks are prefixed with "!".
func (f Frame) DueLabel(task todoist.Task) string {
	if !task.HasDue() {
		return ""
	}
	due := task.Due
	at := due.At
	if !due.AllDay() && !due.Floating() {
		at = at.In(f.Now.Location())
	}

	var label string
	if f.imperial() {
		label = fmt.Sprintf("%s %d", f.month(at.Month()), at.Day())
	} else {
		label = fmt.Sprintf("%d %s", at.Day(), f.month(at.Month()))
	}
	if !due.AllDay() {
		if f.imperial() {
			label += " " + at.Format("3:04 PM")
		} else {
			label += " " + at.Format("15:04")
		}
	}
	if f.overdue(due) {
		label = "!" + label
	}
	return label
}

func (f Frame) overdue(due *todoist.Due) bool {
	if f.Now.IsZero() {
		return false
	}
	// All-day and floating due times are UTC wall time; compare against
	// the local wall clock read the same way.
	y, m, d := f.Now.Date()
	wall := time.Date(y, m, d, f.Now.Hour(), f.Now.Minute(), f.Now.Second(), 0, time.UTC)
	switch {
	case due.AllDay():
		return due.At.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	case due.Floating():
		return due.At.Before(wall)
	default:
		return due.At.Before(f.Now)
	}
}
