package main

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"todoink/internal/services"
)

func TestOnceRendersPanel(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"once"}, env.configPath)
	if err != nil {
		t.Fatalf("once: %v", err)
	}
	requireContains(t, out, "rendered")

	panel, err := os.ReadFile(env.cfg.Display.Output)
	if err != nil {
		t.Fatalf("read panel: %v", err)
	}
	requireContains(t, string(panel), "Write report")
	requireContains(t, string(panel), "Buy milk")

	// Names unchanged: the second cycle reuses the saved ids.
	if _, _, err := runCLI(t, []string{"once", "--print-sleep"}, env.configPath); err != nil {
		t.Fatalf("second once: %v", err)
	}
	if got := env.server.Calls("/projects"); got != 1 {
		t.Fatalf("expected one projects lookup, got %d", got)
	}
}

func TestOnceReportsAuthFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.FailNext("/tasks", http.StatusUnauthorized)

	_, _, err := runCLI(t, []string{"once"}, env.configPath)
	if !errors.Is(err, services.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if exitCode(err) != 2 {
		t.Fatalf("expected exit code 2 for auth failure, got %d", exitCode(err))
	}
	if _, statErr := os.Stat(env.cfg.Display.Output); !os.IsNotExist(statErr) {
		t.Fatalf("expected no panel output, got %v", statErr)
	}
}

func TestResolveThenStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"resolve"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Saved focus ids")

	out, _, err = runCLI(t, []string{"status", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "project 1, section 7")
	requireContains(t, out, "not running")
	requireContains(t, out, "State directory")
}

func TestResolveResetForgetsFocus(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"resolve"}, env.configPath); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	out, _, err := runCLI(t, []string{"resolve", "--reset"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve --reset: %v", err)
	}
	requireContains(t, out, "Cleared saved focus ids")

	out, _, err = runCLI(t, []string{"status", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "not resolved yet")
	if got := env.server.Calls("/projects"); got != 1 {
		t.Fatalf("reset must not call the API, got %d projects lookups", got)
	}
}

func TestResolveMissingSection(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Focus.Section = "Errands"
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"resolve", "--dry-run"}, env.configPath)
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected resolution error, got %v", err)
	}
}

func TestPreviewWritesToStdout(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"preview", "--no-sync"}, env.configPath)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	requireContains(t, out, "Write report")
	requireContains(t, out, "Everything Else")
	if _, statErr := os.Stat(env.cfg.Display.Output); !os.IsNotExist(statErr) {
		t.Fatal("preview must not write the panel output")
	}

	out, _, err = runCLI(t, []string{"status", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "not resolved yet") {
		t.Fatalf("preview must not save state:\n%s", out)
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "not configured")
}
