package timesync_test

import (
	"errors"
	"testing"
	"time"

	"todoink/internal/timesync"
)

func mustRule(t *testing.T, text string) timesync.Rule {
	t.Helper()
	rule, err := timesync.ParseRule(text)
	if err != nil {
		t.Fatalf("ParseRule(%q): %v", text, err)
	}
	return rule
}

func utc(year int, month time.Month, day, hour, minute, sec int) time.Time {
	return time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
}

func TestRuleLookupTransitions(t *testing.T) {
	tests := []struct {
		name   string
		rule   string
		at     time.Time
		zone   string
		offset int
		dst    bool
	}{
		{"us winter", "EST5EDT,M3.2.0,M11.1.0", utc(2024, time.January, 15, 12, 0, 0), "EST", -5 * 3600, false},
		{"us before spring forward", "EST5EDT,M3.2.0,M11.1.0", utc(2024, time.March, 10, 6, 59, 59), "EST", -5 * 3600, false},
		{"us at spring forward", "EST5EDT,M3.2.0,M11.1.0", utc(2024, time.March, 10, 7, 0, 0), "EDT", -4 * 3600, true},
		{"us before fall back", "EST5EDT,M3.2.0,M11.1.0", utc(2024, time.November, 3, 5, 59, 59), "EDT", -4 * 3600, true},
		{"us at fall back", "EST5EDT,M3.2.0,M11.1.0", utc(2024, time.November, 3, 6, 0, 0), "EST", -5 * 3600, false},
		{"default rules", "EST5EDT", utc(2024, time.March, 10, 7, 0, 0), "EDT", -4 * 3600, true},
		{"adelaide summer", "ACST-9:30ACDT,M10.1.0,M4.1.0/3", utc(2024, time.January, 15, 0, 0, 0), "ACDT", 37800, true},
		{"adelaide winter", "ACST-9:30ACDT,M10.1.0,M4.1.0/3", utc(2024, time.June, 15, 0, 0, 0), "ACST", 34200, false},
		{"adelaide before end", "ACST-9:30ACDT,M10.1.0,M4.1.0/3", utc(2024, time.April, 6, 16, 29, 59), "ACDT", 37800, true},
		{"adelaide at end", "ACST-9:30ACDT,M10.1.0,M4.1.0/3", utc(2024, time.April, 6, 16, 30, 0), "ACST", 34200, false},
		{"adelaide at start", "ACST-9:30ACDT,M10.1.0,M4.1.0/3", utc(2024, time.October, 5, 16, 30, 0), "ACDT", 37800, true},
		{"adelaide new year eve", "ACST-9:30ACDT,M10.1.0,M4.1.0/3", utc(2023, time.December, 31, 14, 0, 0), "ACDT", 37800, true},
		{"new zealand last sunday", "NZST-12NZDT,M9.5.0,M4.1.0/3", utc(2024, time.September, 28, 14, 0, 0), "NZDT", 13 * 3600, true},
		{"quoted names", "<+0330>-3:30", utc(2024, time.July, 1, 0, 0, 0), "+0330", 12600, false},
		{"julian skips leap day", "AAA0BBB,J60,J300", utc(2024, time.March, 1, 2, 0, 0), "BBB", 3600, true},
		{"julian before start", "AAA0BBB,J60,J300", utc(2024, time.March, 1, 1, 59, 59), "AAA", 0, false},
		{"zero based counts leap day", "AAA0BBB,59,300", utc(2024, time.February, 29, 2, 0, 0), "BBB", 3600, true},
		{"explicit dst offset", "CET-1CEST-2,M3.5.0,M10.5.0/3", utc(2024, time.July, 1, 0, 0, 0), "CEST", 2 * 3600, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, offset, dst := mustRule(t, tt.rule).Lookup(tt.at)
			if zone != tt.zone || offset != tt.offset || dst != tt.dst {
				t.Fatalf("Lookup(%s) = %s %d %v, want %s %d %v", tt.at, zone, offset, dst, tt.zone, tt.offset, tt.dst)
			}
		})
	}
}

func TestRuleInConvertsWallClock(t *testing.T) {
	rule := mustRule(t, "EST5EDT,M3.2.0,M11.1.0")
	local := rule.In(utc(2024, time.July, 4, 16, 30, 0))
	if got := local.Format("2006-01-02 15:04 MST"); got != "2024-07-04 12:30 EDT" {
		t.Fatalf("unexpected local time %q", got)
	}
}

func TestRuleResolveWallClock(t *testing.T) {
	tests := []struct {
		name string
		rule string
		wall [5]int // year, month, day, hour, minute
		want time.Time
	}{
		{"summer", "EST5EDT,M3.2.0,M11.1.0", [5]int{2024, 7, 4, 7, 0}, utc(2024, time.July, 4, 11, 0, 0)},
		{"winter", "EST5EDT,M3.2.0,M11.1.0", [5]int{2024, 1, 15, 7, 0}, utc(2024, time.January, 15, 12, 0, 0)},
		{"skipped by spring forward", "EST5EDT,M3.2.0,M11.1.0", [5]int{2024, 3, 10, 2, 30}, utc(2024, time.March, 10, 7, 30, 0)},
		{"repeated by fall back", "EST5EDT,M3.2.0,M11.1.0", [5]int{2024, 11, 3, 1, 30}, utc(2024, time.November, 3, 6, 30, 0)},
		{"southern summer", "ACST-9:30ACDT,M10.1.0,M4.1.0/3", [5]int{2024, 1, 15, 7, 0}, utc(2024, time.January, 14, 20, 30, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.wall
			got := mustRule(t, tt.rule).Resolve(w[0], time.Month(w[1]), w[2], w[3], w[4])
			if !got.Equal(tt.want) {
				t.Fatalf("Resolve = %s, want %s", got.UTC(), tt.want)
			}
		})
	}
}

func TestParseRuleRejectsMalformed(t *testing.T) {
	for _, text := range []string{
		"",
		"E5",
		"EST",
		"EST25",
		"<EST5",
		"EST5EDT,M3.2.0",
		"EST5EDT,M13.1.0,M11.1.0",
		"EST5EDT,M3.6.0,M11.1.0",
		"EST5EDT,J0,J300",
		"EST5EDT,M3.2.0,M11.1.0junk",
	} {
		if _, err := timesync.ParseRule(text); !errors.Is(err, timesync.ErrInvalidRule) {
			t.Errorf("ParseRule(%q) err = %v, want ErrInvalidRule", text, err)
		}
	}
}

func TestRuleFromOffsets(t *testing.T) {
	tests := []struct {
		gmt  time.Duration
		dst  time.Duration
		want string
	}{
		{-5 * time.Hour, time.Hour, "UTC5DST4"},
		{-5 * time.Hour, 0, "UTC5"},
		{5*time.Hour + 30*time.Minute, 0, "UTC-5:30"},
		{0, 0, "UTC0"},
	}
	for _, tt := range tests {
		rule := timesync.RuleFromOffsets(tt.gmt, tt.dst)
		if rule.String() != tt.want {
			t.Errorf("RuleFromOffsets(%s, %s) = %q, want %q", tt.gmt, tt.dst, rule.String(), tt.want)
		}
	}

	rule := timesync.RuleFromOffsets(-5*time.Hour, time.Hour)
	if zone, offset, _ := rule.Lookup(utc(2024, time.July, 1, 0, 0, 0)); zone != "DST" || offset != -4*3600 {
		t.Fatalf("summer lookup = %s %d", zone, offset)
	}
}
