package testsupport

import (
	"path/filepath"
	"testing"

	"todoink/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Todoist.APIToken = "test-token"
	cfgVal.Todoist.RetryBackoffMillis = 1
	cfgVal.Todoist.RateLimitPerSecond = 1000
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Display.Output = filepath.Join(base, "panel.txt")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTodoistServer points all three endpoints at a test server.
func WithTodoistServer(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Todoist.ProjectsURL = baseURL + "/projects"
		b.cfg.Todoist.SectionsURL = baseURL + "/sections?project_id="
		b.cfg.Todoist.TasksURL = baseURL + "/tasks"
	}
}

// WithFocus overrides the focus project and section names.
func WithFocus(project, section string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Focus.Project = project
		b.cfg.Focus.Section = section
	}
}

// WithNtfyTopic enables notifications against the given endpoint.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
