package config

const (
	defaultProjectsURL          = "https://api.todoist.com/rest/v2/projects"
	defaultSectionsURL          = "https://api.todoist.com/rest/v2/sections?project_id="
	defaultTasksURL             = "https://api.todoist.com/rest/v2/tasks"
	defaultRequestTimeout       = 15
	defaultRateLimitPerSecond   = 1.0
	defaultRetryBackoffMillis   = 2000
	defaultFocusProject         = "Inbox"
	defaultFocusSection         = "Work"
	defaultUnits                = "I"
	defaultTimezone             = "EST5EDT,M3.2.0,M11.1.0"
	defaultNTPServer            = "0.north-america.pool.ntp.org"
	defaultGMTOffsetSeconds     = -18000
	defaultDaylightOffsetSecs   = 3600
	defaultSyncTimeoutSeconds   = 10
	defaultSleepMinutes         = 30
	defaultWakeupHour           = 7
	defaultSleepHour            = 23
	defaultDisplayOutput        = "stdout"
	defaultDisplayWidth         = 100
	defaultStateDir             = "~/.local/share/todoink"
	defaultLogDir               = "~/.local/share/todoink/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultNotifyRequestTimeout = 10
)

// DefaultWeekdays lists abbreviated day names starting with Sunday.
var DefaultWeekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DefaultMonths lists abbreviated month names starting with January.
var DefaultMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Todoist: Todoist{
			ProjectsURL:           defaultProjectsURL,
			SectionsURL:           defaultSectionsURL,
			TasksURL:              defaultTasksURL,
			RequestTimeoutSeconds: defaultRequestTimeout,
			RateLimitPerSecond:    defaultRateLimitPerSecond,
			RetryBackoffMillis:    defaultRetryBackoffMillis,
		},
		Focus: Focus{
			Project: defaultFocusProject,
			Section: defaultFocusSection,
		},
		Locale: Locale{
			Units:    defaultUnits,
			Weekdays: append([]string(nil), DefaultWeekdays...),
			Months:   append([]string(nil), DefaultMonths...),
		},
		Time: Time{
			Timezone:              defaultTimezone,
			NTPServer:             defaultNTPServer,
			GMTOffsetSeconds:      defaultGMTOffsetSeconds,
			DaylightOffsetSeconds: defaultDaylightOffsetSecs,
			SyncTimeoutSeconds:    defaultSyncTimeoutSeconds,
		},
		Schedule: Schedule{
			SleepMinutes: defaultSleepMinutes,
			WakeupHour:   defaultWakeupHour,
			SleepHour:    defaultSleepHour,
		},
		Display: Display{
			Output: defaultDisplayOutput,
			Width:  defaultDisplayWidth,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
