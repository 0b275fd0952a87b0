package timesync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/beevik/ntp"

	"todoink/internal/logging"
	"todoink/internal/services"
)

const (
	stageName      = "time_sync"
	defaultTimeout = 10 * time.Second
)

// QueryFunc performs a single NTP exchange. It matches ntp.QueryWithOptions.
type QueryFunc func(host string, opt ntp.QueryOptions) (*ntp.Response, error)

// WallClock is the time established for one wake cycle.
type WallClock struct {
	UTC   time.Time
	Local time.Time
	Zone  string
	DST   bool
	// Rule is the timezone rule Local was derived from.
	Rule Rule
	// Correction is the NTP clock offset applied to the system clock.
	Correction time.Duration
	// Synced is false when the time comes from the uncorrected system clock.
	Synced bool
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithQuery replaces the NTP exchange, mainly for tests.
func WithQuery(query QueryFunc) Option {
	return func(s *Syncer) {
		if query != nil {
			s.query = query
		}
	}
}

// WithNow replaces the system clock source.
func WithNow(now func() time.Time) Option {
	return func(s *Syncer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFallbackOffsets sets the offsets used when no timezone rule is given.
func WithFallbackOffsets(gmt, dst time.Duration) Option {
	return func(s *Syncer) {
		s.fallback = RuleFromOffsets(gmt, dst)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		s.logger = logging.NewComponentLogger(logger, "timesync")
	}
}

// Syncer queries NTP and converts the corrected time into local time.
type Syncer struct {
	timeout  time.Duration
	query    QueryFunc
	now      func() time.Time
	fallback Rule
	logger   *slog.Logger
}

// New constructs a Syncer that bounds each NTP query by timeout.
func New(timeout time.Duration, opts ...Option) *Syncer {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	s := &Syncer{
		timeout:  timeout,
		query:    ntp.QueryWithOptions,
		now:      time.Now,
		fallback: UTC,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync establishes the current wall-clock time. On failure it returns an
// ErrTimeSync error together with an unsynced WallClock read from the system
// clock, so callers may continue with a stale time.
func (s *Syncer) Sync(ctx context.Context, host, rule string) (WallClock, error) {
	zone, ruleErr := s.rule(rule)

	resp, err := s.exchange(ctx, host)
	if err != nil {
		return s.clock(zone, s.now(), 0, false), err
	}
	if ruleErr != nil {
		return s.clock(zone, s.now().Add(resp.ClockOffset), resp.ClockOffset, true), ruleErr
	}

	wall := s.clock(zone, s.now().Add(resp.ClockOffset), resp.ClockOffset, true)
	logging.WithContext(ctx, s.logger).Debug("time synchronized",
		logging.String("host", host),
		logging.Duration("offset", resp.ClockOffset),
		logging.Duration("rtt", resp.RTT),
		logging.String("zone", wall.Zone),
	)
	return wall, nil
}

func (s *Syncer) rule(text string) (Rule, error) {
	if strings.TrimSpace(text) == "" {
		return s.fallback, nil
	}
	rule, err := ParseRule(text)
	if err != nil {
		return s.fallback, services.Wrap(services.ErrTimeSync, stageName, "parse timezone", "", err)
	}
	return rule, nil
}

func (s *Syncer) exchange(ctx context.Context, host string) (*ntp.Response, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, services.Wrap(services.ErrTimeSync, stageName, "query", "no NTP server configured", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, services.Wrap(services.ErrTimeSync, stageName, "query", host, err)
	}

	type result struct {
		resp *ntp.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := s.query(host, ntp.QueryOptions{Timeout: s.timeout})
		done <- result{resp: resp, err: err}
	}()

	timer := time.NewTimer(s.timeout + time.Second)
	defer timer.Stop()

	var r result
	select {
	case <-ctx.Done():
		return nil, services.Wrap(services.ErrTimeSync, stageName, "query", host, ctx.Err())
	case <-timer.C:
		return nil, services.Wrap(services.ErrTimeSync, stageName, "query", fmt.Sprintf("%s: no reply within %s", host, s.timeout), nil)
	case r = <-done:
	}
	if r.err != nil {
		return nil, services.Wrap(services.ErrTimeSync, stageName, "query", host, r.err)
	}
	if r.resp == nil {
		return nil, services.Wrap(services.ErrTimeSync, stageName, "query", host+": empty response", nil)
	}
	if err := r.resp.Validate(); err != nil {
		return nil, services.Wrap(services.ErrTimeSync, stageName, "validate", host, err)
	}
	return r.resp, nil
}

func (s *Syncer) clock(zone Rule, now time.Time, correction time.Duration, synced bool) WallClock {
	name, offset, dst := zone.Lookup(now)
	utc := now.UTC()
	return WallClock{
		UTC:        utc,
		Local:      utc.In(time.FixedZone(name, offset)),
		Zone:       name,
		DST:        dst,
		Rule:       zone,
		Correction: correction,
		Synced:     synced,
	}
}
