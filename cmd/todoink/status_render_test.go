package main

import (
	"io"
	"strings"
	"testing"

	"todoink/internal/preflight"
)

func TestRenderStatusLine(t *testing.T) {
	tests := []struct {
		kind    statusKind
		message string
		want    string
	}{
		{statusError, "not running", "  Daemon:            [ERROR] not running"},
		{statusInfo, "", "  Daemon:            [INFO]"},
	}
	for _, tc := range tests {
		if got := renderStatusLine("Daemon", tc.kind, tc.message, false); got != tc.want {
			t.Fatalf("renderStatusLine(%v)\n got: %q\nwant: %q", tc.kind, got, tc.want)
		}
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusOK, "running", true)
	if !strings.HasPrefix(got, statusStyles[statusOK].color) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestCheckLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "State directory", Passed: true, Detail: "/tmp/state (read/write ok)"},
		{Name: "Todoist API", Passed: false, Detail: "auth failed (invalid api token)"},
	}
	lines := checkLines(results, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK] /tmp/state") {
		t.Fatalf("expected ok line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] auth failed") {
		t.Fatalf("expected error detail in second line, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "Failing checks") || !strings.Contains(lines[2], "Todoist API") {
		t.Fatalf("expected failing summary, got %q", lines[2])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}

func TestRenderTablePadsRows(t *testing.T) {
	out := renderTable("", []string{"A", "B"}, [][]string{{"only"}}, []columnAlignment{alignLeft, alignRight})
	if !strings.Contains(out, "only") {
		t.Fatalf("expected row content, got %q", out)
	}
}
