package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/ntp"
	"golang.org/x/sys/unix"

	"todoink/internal/config"
	"todoink/internal/services"
	"todoink/internal/timesync"
	"todoink/internal/todoist"
)

// CheckTodoist verifies that the API is reachable and the token is accepted.
// It makes a single projects request with no retry.
func CheckTodoist(ctx context.Context, settings config.Settings) Result {
	const name = "Todoist API"

	if strings.TrimSpace(settings.APIToken) == "" {
		return Result{Name: name, Detail: "api token missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := todoist.New(settings.APIToken, todoist.Endpoints{
		Projects: settings.ProjectsURL,
		Sections: func(id todoist.ID) string { return settings.SectionsEndpoint(id.String()) },
		Tasks:    settings.TasksURL,
	}, todoist.WithTimeout(settings.RequestTimeout), todoist.WithRetryBackoff(0), todoist.WithRateLimit(0))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	projects, err := client.ListProjects(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	if _, err := todoist.FindProject(projects, settings.Project); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachable, but project %q not found", settings.Project)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable (%d projects)", len(projects))}
}

// CheckNTP verifies that the NTP server answers with a usable time.
func CheckNTP(ctx context.Context, host string, timeout time.Duration) Result {
	const name = "NTP"

	host = strings.TrimSpace(host)
	if host == "" {
		return Result{Name: name, Detail: "no server configured"}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if err := ctx.Err(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	resp, err := ntp.QueryWithOptions(host, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", host, summarizeError(err))}
	}
	if err := resp.Validate(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (invalid response: %v)", host, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (offset %s)", host, resp.ClockOffset.Round(time.Millisecond))}
}

// CheckTimezone verifies the POSIX timezone rule parses.
func CheckTimezone(rule string) Result {
	const name = "Timezone"

	if strings.TrimSpace(rule) == "" {
		return Result{Name: name, Passed: true, Detail: "from fixed offsets"}
	}
	parsed, err := timesync.ParseRule(rule)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	zone, _, _ := parsed.Lookup(time.Now())
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (now %s)", rule, zone)}
}

// CheckOutputPath verifies the display output directory can be written.
func CheckOutputPath(path string) Result {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return Result{Name: "Display output", Detail: err.Error()}
	}
	result := CheckDirectoryAccess("Display output", filepath.Dir(expanded))
	if result.Passed {
		result.Detail = fmt.Sprintf("%s (writable)", expanded)
	}
	return result
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeError produces a human-readable summary for check failures.
func summarizeError(err error) string {
	switch {
	case errors.Is(err, services.ErrAuth):
		return "auth failed (invalid api token)"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (unreachable)"
	}
	return err.Error()
}
