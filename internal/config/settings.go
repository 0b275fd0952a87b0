package config

import (
	"net/url"
	"strings"
	"time"
)

// Units selects the measurement system shown on the board.
type Units string

const (
	UnitsMetric   Units = "M"
	UnitsImperial Units = "I"
)

const projectIDPlaceholder = "{project_id}"

// Settings is the immutable view of the configuration consumed by the wake
// cycle. It is built once at startup and passed by value.
type Settings struct {
	SSID     string
	Password string

	APIToken    string
	ProjectsURL string
	SectionsURL string
	TasksURL    string

	Project string
	Section string

	Units    Units
	Weekdays [7]string
	Months   [12]string

	Timezone       string
	NTPServer      string
	GMTOffset      time.Duration
	DaylightOffset time.Duration
	SyncTimeout    time.Duration

	RequestTimeout time.Duration
	RateLimit      float64
	RetryBackoff   time.Duration

	SleepInterval time.Duration
	WakeupHour    int
	SleepHour     int

	DebugDisplay bool
}

// Settings flattens the loaded configuration into a Settings value.
func (c *Config) Settings() Settings {
	s := Settings{
		SSID:           c.Network.SSID,
		Password:       c.Network.Password,
		APIToken:       c.Todoist.APIToken,
		ProjectsURL:    c.Todoist.ProjectsURL,
		SectionsURL:    c.Todoist.SectionsURL,
		TasksURL:       c.Todoist.TasksURL,
		Project:        c.Focus.Project,
		Section:        c.Focus.Section,
		Units:          Units(c.Locale.Units),
		Timezone:       c.Time.Timezone,
		NTPServer:      c.Time.NTPServer,
		GMTOffset:      time.Duration(c.Time.GMTOffsetSeconds) * time.Second,
		DaylightOffset: time.Duration(c.Time.DaylightOffsetSeconds) * time.Second,
		SyncTimeout:    time.Duration(c.Time.SyncTimeoutSeconds) * time.Second,
		RequestTimeout: time.Duration(c.Todoist.RequestTimeoutSeconds) * time.Second,
		RateLimit:      c.Todoist.RateLimitPerSecond,
		RetryBackoff:   time.Duration(c.Todoist.RetryBackoffMillis) * time.Millisecond,
		SleepInterval:  time.Duration(c.Schedule.SleepMinutes) * time.Minute,
		WakeupHour:     c.Schedule.WakeupHour,
		SleepHour:      c.Schedule.SleepHour,
		DebugDisplay:   c.Display.Debug,
	}
	copy(s.Weekdays[:], c.Locale.Weekdays)
	copy(s.Months[:], c.Locale.Months)
	return s
}

// SectionsEndpoint expands the sections URL template for a project. The
// template either contains a {project_id} placeholder or ends where the
// identifier should be appended (for example "...sections?project_id=").
func (s Settings) SectionsEndpoint(projectID string) string {
	escaped := url.QueryEscape(projectID)
	if strings.Contains(s.SectionsURL, projectIDPlaceholder) {
		return strings.ReplaceAll(s.SectionsURL, projectIDPlaceholder, escaped)
	}
	return s.SectionsURL + escaped
}

// WeekdayName returns the configured name for day, or the English
// abbreviation when that slot is blank.
func WeekdayName(names [7]string, day time.Weekday) string {
	if day < time.Sunday || day > time.Saturday || names[day] == "" {
		return day.String()[:3]
	}
	return names[day]
}

// MonthName returns the configured name for month, or the English
// abbreviation when that slot is blank.
func MonthName(names [12]string, month time.Month) string {
	if month < time.January || month > time.December || names[month-1] == "" {
		return month.String()[:3]
	}
	return names[month-1]
}

// Redacted returns a copy with secrets masked for display.
func (s Settings) Redacted() Settings {
	s.Password = mask(s.Password)
	s.APIToken = mask(s.APIToken)
	return s
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
