package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"todoink/internal/config"
	"todoink/internal/logging"
	"todoink/internal/services"
)

const (
	stageName           = "fetching"
	userAgent           = "todoink/0.1"
	defaultTimeout      = 15 * time.Second
	defaultBackoff      = 2 * time.Second
	maxResponseBodySize = 8 << 20
	maxPages            = 50
)

// Endpoints locates the three collections the board reads.
type Endpoints struct {
	Projects string
	// Sections returns the sections URL for one project.
	Sections func(projectID ID) string
	Tasks    string
}

// Client reads from the Todoist REST API.
type Client struct {
	endpoints Endpoints
	token     string
	http      *http.Client
	timeout   time.Duration
	limiter   *rate.Limiter
	backoff   time.Duration
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient installs a custom base http.Client. The bearer token is
// layered on top of its transport. A Timeout set on hc becomes the
// per-request deadline.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		c.http = hc
		if hc.Timeout > 0 {
			c.timeout = hc.Timeout
		}
	}
}

// WithTimeout bounds each request attempt, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit paces requests to perSecond with a burst of one. Zero or a
// negative value disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithRetryBackoff sets the delay before the single retry of a network failure.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "todoist")
	}
}

// New builds a client for the given token and endpoints.
func New(token string, endpoints Endpoints, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, services.Wrap(services.ErrAuth, stageName, "configure client", "api token is required", nil)
	}
	if endpoints.Projects == "" || endpoints.Tasks == "" || endpoints.Sections == nil {
		return nil, errors.New("todoist: projects, sections, and tasks endpoints are required")
	}
	c := &Client{
		endpoints: endpoints,
		token:     token,
		http:      &http.Client{},
		timeout:   defaultTimeout,
		limiter:   rate.NewLimiter(rate.Limit(1), 1),
		backoff:   defaultBackoff,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.http = authorize(c.http, token)
	return c, nil
}

// NewFromSettings builds a client from loaded settings.
func NewFromSettings(s config.Settings, logger *slog.Logger) (*Client, error) {
	return New(s.APIToken, Endpoints{
		Projects: s.ProjectsURL,
		Sections: func(projectID ID) string { return s.SectionsEndpoint(projectID.String()) },
		Tasks:    s.TasksURL,
	},
		WithTimeout(s.RequestTimeout),
		WithRateLimit(s.RateLimit),
		WithRetryBackoff(s.RetryBackoff),
		WithLogger(logger),
	)
}

// authorize returns a copy of hc whose transport sets the bearer header.
// Deadlines come from the request context, so the copy carries no Timeout.
func authorize(hc *http.Client, token string) *http.Client {
	out := *hc
	out.Timeout = 0
	out.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   hc.Transport,
	}
	return &out
}

// ListProjects returns every project visible to the token.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	return list[Project](ctx, c, "list projects", c.endpoints.Projects)
}

// ListSections returns the sections of one project.
func (c *Client) ListSections(ctx context.Context, projectID ID) ([]Section, error) {
	if projectID.IsZero() {
		return nil, services.Wrap(services.ErrResolution, "resolving", "list sections", "project id is empty", nil)
	}
	return list[Section](ctx, c, "list sections", c.endpoints.Sections(projectID))
}

// ListTasks returns every active task.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	return list[Task](ctx, c, "list tasks", c.endpoints.Tasks)
}

type page[T any] struct {
	Results    []T    `json:"results"`
	NextCursor string `json:"next_cursor"`
}

// list fetches a collection, following next_cursor when the endpoint pages.
func list[T any](ctx context.Context, c *Client, operation, endpoint string) ([]T, error) {
	var all []T
	cursor := ""
	for n := 0; n < maxPages; n++ {
		target, err := withCursor(endpoint, cursor)
		if err != nil {
			return nil, services.Wrap(services.ErrParse, stageName, operation, "invalid endpoint", err)
		}
		raw, err := c.get(ctx, operation, target)
		if err != nil {
			return nil, err
		}
		items, next, err := decodeList[T](raw)
		if err != nil {
			return nil, services.Wrap(services.ErrParse, stageName, operation, "decode response", err)
		}
		all = append(all, items...)
		if next == "" {
			if all == nil {
				all = []T{}
			}
			return all, nil
		}
		cursor = next
	}
	return nil, services.Wrap(services.ErrParse, stageName, operation, fmt.Sprintf("more than %d pages", maxPages), nil)
}

func withCursor(endpoint, cursor string) (string, error) {
	if cursor == "" {
		return endpoint, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("cursor", cursor)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodeList[T any](raw []byte) ([]T, string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, "", errors.New("empty body")
	}
	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	case '{':
		var p page[T]
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, "", err
		}
		if p.Results == nil {
			return nil, "", errors.New("object without results")
		}
		return p.Results, p.NextCursor, nil
	default:
		return nil, "", fmt.Errorf("unexpected body starting with %q", raw[0])
	}
}

// get performs a GET, retrying once after the backoff when the first attempt
// fails with a network error.
func (c *Client) get(ctx context.Context, operation, endpoint string) ([]byte, error) {
	raw, err := c.attempt(ctx, operation, endpoint)
	if err == nil || !services.Retryable(err) {
		return raw, err
	}
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "todoist request failed; retrying",
		"todoist_retry",
		logging.String("operation", operation),
		logging.Duration("backoff", c.backoff),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check network connectivity"),
		logging.String(logging.FieldImpact, "board refresh delayed"),
	)
	if err := sleepContext(ctx, c.backoff); err != nil {
		return nil, services.Wrap(services.ErrNetwork, stageName, operation, "retry cancelled", err)
	}
	return c.attempt(ctx, operation, endpoint)
}

func (c *Client) attempt(ctx context.Context, operation, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, services.Wrap(services.ErrNetwork, stageName, operation, "rate limiter", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)
	logger := logging.WithContext(ctx, c.logger)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrParse, stageName, operation, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", requestID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, stageName, operation, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, services.Wrap(services.ErrNetwork, stageName, operation, "read response", err)
	}
	logger.Debug("todoist response",
		logging.String("operation", operation),
		logging.Int("status", resp.StatusCode),
		logging.Int("bytes", len(raw)),
		logging.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := buildAPIError(resp.StatusCode, raw)
		return nil, services.Wrap(classifyStatus(resp.StatusCode), stageName, operation, "", apiErr)
	}
	return raw, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
