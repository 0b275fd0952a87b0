package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"todoink/internal/config"
	"todoink/internal/services"
)

const userAgent = "todoink/0.1"

// Service defines the notification surface exposed to the wake cycle.
type Service interface {
	NotifyAttentionNeeded(ctx context.Context, kind string, err error) error
	NotifyRecovered(ctx context.Context, previousKind string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
		focus:    fmt.Sprintf("%s / %s", cfg.Focus.Project, cfg.Focus.Section),
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	focus    string
}

func (n *ntfyService) NotifyAttentionNeeded(ctx context.Context, kind string, err error) error {
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}

	data := payload{
		tags:     []string{"todoink", kind, "alert"},
		priority: "high",
	}
	switch kind {
	case "auth":
		data.title = "todoink - Token Rejected"
		data.message = fmt.Sprintf("Todoist rejected the API token. The board stops updating until it is replaced.\n%s", detail)
	case "resolution":
		data.title = "todoink - Focus Not Found"
		data.message = fmt.Sprintf("Could not find %s in Todoist. The board stops updating until the names match.\n%s", n.focus, detail)
	default:
		data.title = "todoink - Error"
		data.message = fmt.Sprintf("Board update failed: %s", detail)
	}
	if cycleID, ok := services.CycleIDFromContext(ctx); ok {
		data.message += "\ncycle " + cycleID
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRecovered(ctx context.Context, previousKind string) error {
	previousKind = strings.TrimSpace(previousKind)
	if previousKind == "" {
		previousKind = "error"
	}
	data := payload{
		title:   "todoink - Recovered",
		message: fmt.Sprintf("The board is updating again after a %s failure.", previousKind),
		tags:    []string{"todoink", "recovered"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "todoink - Test",
		message:  "Notification system test",
		tags:     []string{"todoink", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyAttentionNeeded(context.Context, string, error) error { return nil }
func (noopService) NotifyRecovered(context.Context, string) error              { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
