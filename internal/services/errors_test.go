package services_test

import (
	"errors"
	"strings"
	"testing"

	"todoink/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := services.Wrap(services.ErrNetwork, "fetching", "list tasks", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"fetching", "list tasks", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		kind           string
		retryable      bool
		needsAttention bool
	}{
		{"nil", nil, "", false, false},
		{"network", services.Wrap(services.ErrNetwork, "fetching", "", "", nil), "network", true, false},
		{"auth", services.Wrap(services.ErrAuth, "fetching", "", "401", nil), "auth", false, true},
		{"parse", services.Wrap(services.ErrParse, "fetching", "", "", nil), "parse", false, false},
		{"resolution", services.Wrap(services.ErrResolution, "resolving", "", "", nil), "resolution", false, true},
		{"time sync", services.Wrap(services.ErrTimeSync, "time", "", "", nil), "time_sync", false, false},
		{"plain", errors.New("other"), "unknown", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Kind(tc.err); got != tc.kind {
				t.Fatalf("Kind = %q, want %q", got, tc.kind)
			}
			if got := services.Retryable(tc.err); got != tc.retryable {
				t.Fatalf("Retryable = %v, want %v", got, tc.retryable)
			}
			if got := services.NeedsAttention(tc.err); got != tc.needsAttention {
				t.Fatalf("NeedsAttention = %v, want %v", got, tc.needsAttention)
			}
		})
	}
}
