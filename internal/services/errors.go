package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTimeSync   = errors.New("time sync error")
	ErrNetwork    = errors.New("network error")
	ErrAuth       = errors.New("auth error")
	ErrParse      = errors.New("parse error")
	ErrResolution = errors.New("resolution error")
	ErrStorage    = errors.New("storage error")
	ErrDisplay    = errors.New("display error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrNetwork
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether a failure may succeed on a second attempt within
// the same wake cycle. Only transport failures qualify; auth and resolution
// problems are configuration-level and repeat until the user fixes them.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// Kind returns a short label for the taxonomy marker carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrTimeSync):
		return "time_sync"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrDisplay):
		return "display"
	default:
		return "unknown"
	}
}

// NeedsAttention reports failures that will not clear on their own and should
// be surfaced to the user.
func NeedsAttention(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrResolution)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
