package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTodoist(); err != nil {
		return err
	}
	if err := c.validateFocus(); err != nil {
		return err
	}
	if err := c.validateLocale(); err != nil {
		return err
	}
	if err := c.validateTime(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateDisplay(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTodoist() error {
	if c.Todoist.APIToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/todoink/config.toml"
		}
		return fmt.Errorf("todoist.api_token is required. Set TODOIST_API_TOKEN env var or edit %s (create with 'todoink config init')", defaultPath)
	}
	for key, value := range map[string]string{
		"todoist.projects_url": c.Todoist.ProjectsURL,
		"todoist.sections_url": c.Todoist.SectionsURL,
		"todoist.tasks_url":    c.Todoist.TasksURL,
	} {
		if err := validateEndpoint(key, value); err != nil {
			return err
		}
	}
	if err := ensurePositiveMap(map[string]int{
		"todoist.request_timeout_seconds": c.Todoist.RequestTimeoutSeconds,
		"todoist.retry_backoff_ms":        c.Todoist.RetryBackoffMillis,
	}); err != nil {
		return err
	}
	if c.Todoist.RateLimitPerSecond <= 0 {
		return errors.New("todoist.rate_limit_per_second must be positive")
	}
	return nil
}

func validateEndpoint(key, value string) error {
	probe := strings.ReplaceAll(value, projectIDPlaceholder, "0")
	parsed, err := url.Parse(probe)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, value)
	}
	return nil
}

func (c *Config) validateFocus() error {
	if c.Focus.Project == "" {
		return errors.New("focus.project must be set")
	}
	if c.Focus.Section == "" {
		return errors.New("focus.section must be set")
	}
	return nil
}

func (c *Config) validateLocale() error {
	switch Units(c.Locale.Units) {
	case UnitsMetric, UnitsImperial:
	default:
		return fmt.Errorf("locale.units must be %q or %q, got %q", UnitsMetric, UnitsImperial, c.Locale.Units)
	}
	if len(c.Locale.Weekdays) != 7 {
		return fmt.Errorf("locale.weekdays must list 7 names, got %d", len(c.Locale.Weekdays))
	}
	if len(c.Locale.Months) != 12 {
		return fmt.Errorf("locale.months must list 12 names, got %d", len(c.Locale.Months))
	}
	return nil
}

func (c *Config) validateTime() error {
	if c.Time.SyncTimeoutSeconds <= 0 {
		return errors.New("time.sync_timeout_seconds must be positive")
	}
	const day = 24 * 60 * 60
	if c.Time.GMTOffsetSeconds <= -day || c.Time.GMTOffsetSeconds >= day {
		return errors.New("time.gmt_offset_seconds must be within one day")
	}
	if c.Time.DaylightOffsetSeconds < 0 || c.Time.DaylightOffsetSeconds >= day {
		return errors.New("time.daylight_offset_seconds must be between 0 and one day")
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if c.Schedule.SleepMinutes <= 0 {
		return errors.New("schedule.sleep_minutes must be positive")
	}
	if c.Schedule.WakeupHour < 0 || c.Schedule.WakeupHour > 23 {
		return errors.New("schedule.wakeup_hour must be between 0 and 23")
	}
	if c.Schedule.SleepHour < 0 || c.Schedule.SleepHour > 24 {
		return errors.New("schedule.sleep_hour must be between 0 and 24")
	}
	return nil
}

func (c *Config) validateDisplay() error {
	if c.Display.Width < 40 {
		return errors.New("display.width must be at least 40 columns")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
