package config

// Network carries the Wi-Fi credentials used by the device build. The host
// runtime never joins a network itself; the values are kept for parity and
// reported (redacted) by `todoink config show`.
type Network struct {
	SSID     string `toml:"ssid"`
	Password string `toml:"password"`
}

// Todoist contains the task service credentials and endpoint templates.
type Todoist struct {
	APIToken              string  `toml:"api_token"`
	ProjectsURL           string  `toml:"projects_url"`
	SectionsURL           string  `toml:"sections_url"`
	TasksURL              string  `toml:"tasks_url"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
	RateLimitPerSecond    float64 `toml:"rate_limit_per_second"`
	RetryBackoffMillis    int     `toml:"retry_backoff_ms"`
}

// Focus names the project and section shown in the focus panel.
type Focus struct {
	Project string `toml:"project"`
	Section string `toml:"section"`
}

// Locale contains unit preference and the day/month names used by the header.
type Locale struct {
	Units    string   `toml:"units"`
	Weekdays []string `toml:"weekdays"`
	Months   []string `toml:"months"`
}

// Time contains clock synchronization settings.
type Time struct {
	Timezone              string `toml:"timezone"`
	NTPServer             string `toml:"ntp_server"`
	GMTOffsetSeconds      int    `toml:"gmt_offset_seconds"`
	DaylightOffsetSeconds int    `toml:"daylight_offset_seconds"`
	SyncTimeoutSeconds    int    `toml:"sync_timeout_seconds"`
}

// Schedule controls how long the board sleeps between wake cycles and the
// hours during which it wakes at all.
type Schedule struct {
	SleepMinutes int `toml:"sleep_minutes"`
	WakeupHour   int `toml:"wakeup_hour"`
	SleepHour    int `toml:"sleep_hour"`
}

// Display configures the bundled text panel driver.
type Display struct {
	Output string `toml:"output"`
	Width  int    `toml:"width"`
	Debug  bool   `toml:"debug"`
}

// Paths contains state and log directories.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for todoink.
//
// Configuration sections by subsystem:
//   - Network: device Wi-Fi credentials (informational on the host)
//   - Todoist: API token, endpoint templates, pacing and retry
//   - Focus: project and section for the focus panel
//   - Locale: units flag and weekday/month names
//   - Time: POSIX timezone rule and NTP source
//   - Schedule: sleep interval and active hours
//   - Display: panel driver output
//   - Paths: state database and log directories
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Network       Network       `toml:"network"`
	Todoist       Todoist       `toml:"todoist"`
	Focus         Focus         `toml:"focus"`
	Locale        Locale        `toml:"locale"`
	Time          Time          `toml:"time"`
	Schedule      Schedule      `toml:"schedule"`
	Display       Display       `toml:"display"`
	Paths         Paths         `toml:"paths"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}
