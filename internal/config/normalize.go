package config

import (
	"fmt"
	"os"
	"strings"
)

const bearerPrefix = "bearer "

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTodoist()
	c.normalizeFocus()
	c.normalizeLocale()
	c.normalizeTime()
	c.normalizeDisplay()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTodoist() {
	if strings.TrimSpace(c.Todoist.APIToken) == "" {
		if value, ok := os.LookupEnv("TODOIST_API_TOKEN"); ok {
			c.Todoist.APIToken = value
		}
	}
	c.Todoist.APIToken = stripBearer(c.Todoist.APIToken)
	c.Todoist.ProjectsURL = strings.TrimSpace(c.Todoist.ProjectsURL)
	if c.Todoist.ProjectsURL == "" {
		c.Todoist.ProjectsURL = defaultProjectsURL
	}
	c.Todoist.SectionsURL = strings.TrimSpace(c.Todoist.SectionsURL)
	if c.Todoist.SectionsURL == "" {
		c.Todoist.SectionsURL = defaultSectionsURL
	}
	c.Todoist.TasksURL = strings.TrimSpace(c.Todoist.TasksURL)
	if c.Todoist.TasksURL == "" {
		c.Todoist.TasksURL = defaultTasksURL
	}
}

// stripBearer accepts tokens copied with the "Bearer " prefix the device
// header expected and returns the bare token.
func stripBearer(token string) string {
	token = strings.TrimSpace(token)
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = strings.TrimSpace(token[len(bearerPrefix):])
	}
	return token
}

// Project and section names are matched case-sensitively, so only surrounding
// whitespace is removed.
func (c *Config) normalizeFocus() {
	c.Focus.Project = strings.TrimSpace(c.Focus.Project)
	c.Focus.Section = strings.TrimSpace(c.Focus.Section)
}

func (c *Config) normalizeLocale() {
	c.Locale.Units = strings.ToUpper(strings.TrimSpace(c.Locale.Units))
	if c.Locale.Units == "" {
		c.Locale.Units = defaultUnits
	}
	if len(c.Locale.Weekdays) == 0 {
		c.Locale.Weekdays = append([]string(nil), DefaultWeekdays...)
	}
	if len(c.Locale.Months) == 0 {
		c.Locale.Months = append([]string(nil), DefaultMonths...)
	}
	for i, name := range c.Locale.Weekdays {
		c.Locale.Weekdays[i] = strings.TrimSpace(name)
	}
	for i, name := range c.Locale.Months {
		c.Locale.Months[i] = strings.TrimSpace(name)
	}
}

func (c *Config) normalizeTime() {
	c.Time.Timezone = strings.TrimSpace(c.Time.Timezone)
	c.Time.NTPServer = strings.TrimSpace(c.Time.NTPServer)
	if c.Time.NTPServer == "" {
		c.Time.NTPServer = defaultNTPServer
	}
}

func (c *Config) normalizeDisplay() {
	c.Display.Output = strings.TrimSpace(c.Display.Output)
	if c.Display.Output == "" {
		c.Display.Output = defaultDisplayOutput
	}
	if c.Display.Output != defaultDisplayOutput {
		if expanded, err := expandPath(c.Display.Output); err == nil {
			c.Display.Output = expanded
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
