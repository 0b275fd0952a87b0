package display_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todoink/internal/config"
	"todoink/internal/display"
	"todoink/internal/services"
	"todoink/internal/todoist"
)

var edt = time.FixedZone("EDT", -4*3600)

func testSettings(units config.Units) config.Settings {
	cfg := config.Default()
	cfg.Locale.Units = string(units)
	cfg.Focus.Project = "inbox"
	cfg.Focus.Section = "work"
	return cfg.Settings()
}

func allDay(date string) *todoist.Due {
	at, _ := time.Parse("2006-01-02", date)
	return &todoist.Due{Date: date, At: at}
}

func timed(datetime string) *todoist.Due {
	at, err := time.Parse(time.RFC3339, datetime)
	if err != nil {
		at, _ = time.Parse("2006-01-02T15:04:05", datetime)
	}
	return &todoist.Due{Date: datetime[:10], Datetime: datetime, At: at.UTC()}
}

func testFrame(units config.Units, stale bool) display.Frame {
	now := time.Date(2024, time.March, 10, 7, 30, 0, 0, edt)
	focus := []todoist.Task{
		{ID: "1", Content: "Write report", Due: allDay("2024-03-12")},
		{ID: "2", Content: "Expense claim"},
	}
	overview := []todoist.Task{
		{ID: "3", Content: "Buy milk", Due: allDay("2024-03-09")},
		{ID: "4", Content: "Dentist", Due: timed("2024-03-10T18:00:00Z"), Completed: true},
	}
	return display.NewFrame(testSettings(units), now, stale, focus, overview)
}

func TestHeaderFollowsUnits(t *testing.T) {
	if got := testFrame(config.UnitsImperial, false).Header(); got != "Sun Mar 10, 2024  7:30 AM EDT" {
		t.Fatalf("imperial header = %q", got)
	}
	if got := testFrame(config.UnitsMetric, true).Header(); got != "Sun 10 Mar 2024  07:30 EDT  (clock not synced)" {
		t.Fatalf("metric header = %q", got)
	}
}

func TestHeaderUsesConfiguredNames(t *testing.T) {
	frame := testFrame(config.UnitsMetric, false)
	frame.Weekdays[time.Sunday] = "Dom"
	frame.Months[time.March-1] = "Mar."
	if got := frame.Header(); !strings.HasPrefix(got, "Dom 10 Mar. 2024") {
		t.Fatalf("header = %q", got)
	}
}

func TestDueLabel(t *testing.T) {
	frame := testFrame(config.UnitsImperial, false)
	metric := testFrame(config.UnitsMetric, false)
	tests := []struct {
		name  string
		frame display.Frame
		due   *todoist.Due
		want  string
	}{
		{"no due", frame, nil, ""},
		{"future date", frame, allDay("2024-03-12"), "Mar 12"},
		{"today", frame, allDay("2024-03-10"), "Mar 10"},
		{"overdue date", frame, allDay("2024-03-09"), "!Mar 9"},
		{"utc time converted", frame, timed("2024-03-10T18:00:00Z"), "Mar 10 2:00 PM"},
		{"metric time", metric, timed("2024-03-10T18:00:00Z"), "10 Mar 14:00"},
		{"floating time passed", frame, timed("2024-03-10T06:00:00"), "!Mar 10 6:00 AM"},
		{"floating time ahead", frame, timed("2024-03-10T09:00:00"), "Mar 10 9:00 AM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.frame.DueLabel(todoist.Task{ID: "1", Due: tt.due})
			if got != tt.want {
				t.Fatalf("DueLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposeDrawsBothPanels(t *testing.T) {
	driver := display.NewWriterDriver(&bytes.Buffer{}, 80)
	out := driver.Compose(testFrame(config.UnitsImperial, false))

	for _, want := range []string{
		"Sun Mar 10, 2024",
		"Inbox / Work",
		"Everything Else",
		"Write report",
		"Expense claim",
		"!Mar 9",
		"[x] Dentist",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Write report") > strings.Index(out, "Buy milk") {
		t.Error("focus panel should be drawn before the overview panel")
	}
}

func TestComposeMarksEmptyPanels(t *testing.T) {
	driver := display.NewWriterDriver(&bytes.Buffer{}, 80)
	frame := display.NewFrame(testSettings(config.UnitsImperial), time.Now(), false, nil, nil)
	if out := driver.Compose(frame); strings.Count(out, "nothing here") != 2 {
		t.Fatalf("expected both panels to be marked empty:\n%s", out)
	}
}

func TestRenderReplacesOutputFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "board", "panel.txt")
	driver := display.NewTextDriver(target, 80, true, nil)

	if err := driver.Render(context.Background(), testFrame(config.UnitsImperial, false)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	frame := testFrame(config.UnitsImperial, true)
	frame.Focus = nil
	if err := driver.Render(context.Background(), frame); err != nil {
		t.Fatalf("Render: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Contains(string(data), "Write report") || !strings.Contains(string(data), "clock not synced") {
		t.Fatalf("expected the second frame only:\n%s", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(target))
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestRenderWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	driver := display.NewWriterDriver(&buf, 80)
	if err := driver.Render(context.Background(), testFrame(config.UnitsMetric, false)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Sun 10 Mar 2024") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestRenderCancelledContext(t *testing.T) {
	driver := display.NewWriterDriver(&bytes.Buffer{}, 80)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := driver.Render(ctx, testFrame(config.UnitsMetric, false)); !errors.Is(err, services.ErrDisplay) {
		t.Fatalf("expected ErrDisplay, got %v", err)
	}
}
