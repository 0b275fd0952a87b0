package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"todoink/internal/config"
	"todoink/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	server     *testsupport.TodoistServer
	configPath string
	baseDir    string
}

func defaultFixture() testsupport.TodoistFixture {
	return testsupport.TodoistFixture{
		Projects: []map[string]any{
			{"id": "1", "name": "Inbox"},
			{"id": "2", "name": "Home"},
		},
		Sections: map[string][]map[string]any{
			"1": {{"id": "7", "project_id": "1", "name": "Work"}},
		},
		Tasks: []map[string]any{
			{"id": "100", "content": "Write report", "project_id": "1", "section_id": "7", "due": map[string]any{"date": "2024-03-12"}},
			{"id": "101", "content": "Buy milk", "project_id": "2"},
		},
	}
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	srv := testsupport.NewTodoistServer(t, defaultFixture())
	cfg := testsupport.NewConfig(t, testsupport.WithTodoistServer(srv.URL))
	cfg.Time.NTPServer = "127.0.0.1"
	cfg.Time.SyncTimeoutSeconds = 1

	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TODOIST_API_TOKEN", "")

	configPath := filepath.Join(homeDir, ".config", "todoink", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		server:     srv,
		configPath: configPath,
		baseDir:    base,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
