package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todoink/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func todoistSettings(url, token string) config.Settings {
	cfg := config.Default()
	cfg.Todoist.APIToken = token
	cfg.Todoist.ProjectsURL = url + "/projects"
	cfg.Todoist.SectionsURL = url + "/sections?project_id="
	cfg.Todoist.TasksURL = url + "/tasks"
	return cfg.Settings()
}

func TestCheckTodoist_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `[{"id": "1", "name": "Inbox"}]`)
	}))
	defer srv.Close()

	result := CheckTodoist(context.Background(), todoistSettings(srv.URL, "good-token"))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckTodoist_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckTodoist(context.Background(), todoistSettings(srv.URL, "bad-token"))
	if result.Passed || !strings.Contains(result.Detail, "auth failed") {
		t.Fatalf("expected auth failure, got: %+v", result)
	}
}

func TestCheckTodoist_MissingProject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"id": "2", "name": "Home"}]`)
	}))
	defer srv.Close()

	result := CheckTodoist(context.Background(), todoistSettings(srv.URL, "token"))
	if result.Passed || !strings.Contains(result.Detail, `"Inbox" not found`) {
		t.Fatalf("expected missing project failure, got: %+v", result)
	}
}

func TestCheckTodoist_MissingToken(t *testing.T) {
	result := CheckTodoist(context.Background(), todoistSettings("http://localhost", ""))
	if result.Passed {
		t.Fatal("expected failure for missing token")
	}
}

func TestCheckTimezone(t *testing.T) {
	if result := CheckTimezone("EST5EDT,M3.2.0,M11.1.0"); !result.Passed {
		t.Fatalf("expected valid rule to pass: %s", result.Detail)
	}
	if result := CheckTimezone(""); !result.Passed {
		t.Fatal("empty rule falls back to offsets")
	}
	if result := CheckTimezone("EST5EDT,M3"); result.Passed {
		t.Fatal("expected malformed rule to fail")
	}
}

func TestCheckNTP_NoServer(t *testing.T) {
	if result := CheckNTP(context.Background(), "", 0); result.Passed {
		t.Fatal("expected failure without server")
	}
}

func TestRunAllOffline(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = base
	cfg.Paths.LogDir = base
	cfg.Display.Output = filepath.Join(base, "panel.txt")

	results := RunAll(context.Background(), &cfg, Options{Offline: true})
	if len(results) != 4 {
		t.Fatalf("expected 4 offline checks, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
