package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// consoleHandler writes one human-readable line per record:
//
//	2024-05-01 07:00:02 INFO [cycle 1a2b3c4d fetching] todoist: tasks fetched count=12
//
// The component, cycle id and stage fields are lifted out of the key=value
// tail into the line prefix.
type consoleHandler struct {
	mu         *sync.Mutex
	out        io.Writer
	level      slog.Leveler
	withSource bool

	component string
	cycleID   string
	stage     string
	tail      string // pre-rendered attrs from WithAttrs
	group     string // dotted key prefix from WithGroup
}

func newConsoleHandler(out io.Writer, level slog.Leveler, withSource bool) *consoleHandler {
	return &consoleHandler{mu: new(sync.Mutex), out: out, level: level, withSource: withSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	var tail strings.Builder
	tail.WriteString(h.tail)
	for _, attr := range attrs {
		next.absorb(&tail, h.group, attr)
	}
	next.tail = tail.String()
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = h.group + name + "."
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	line := *h
	var tail strings.Builder
	tail.WriteString(h.tail)
	record.Attrs(func(attr slog.Attr) bool {
		line.absorb(&tail, h.group, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	b.WriteString(ts.Local().Format(consoleTimeLayout))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	b.WriteByte(' ')
	if prefix := line.cyclePrefix(); prefix != "" {
		b.WriteString(prefix)
		b.WriteByte(' ')
	}
	if line.component != "" {
		b.WriteString(line.component)
		b.WriteString(": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if h.withSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteString(tail.String())
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// absorb lifts prefix fields onto h and renders everything else into tail.
func (h *consoleHandler) absorb(tail *strings.Builder, group string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		inner := group
		if attr.Key != "" {
			inner += attr.Key + "."
		}
		for _, child := range attr.Value.Group() {
			h.absorb(tail, inner, child)
		}
		return
	}
	if group == "" {
		switch attr.Key {
		case FieldComponent:
			if h.component == "" {
				h.component = attr.Value.String()
				return
			}
		case FieldCycleID:
			if h.cycleID == "" {
				h.cycleID = attr.Value.String()
				return
			}
		case FieldStage:
			if h.stage == "" {
				h.stage = attr.Value.String()
				return
			}
		}
	}
	if attr.Key == "" {
		return
	}
	tail.WriteByte(' ')
	tail.WriteString(group)
	tail.WriteString(attr.Key)
	tail.WriteByte('=')
	tail.WriteString(formatValue(attr.Value))
}

func (h *consoleHandler) cyclePrefix() string {
	var parts []string
	if h.cycleID != "" {
		id := h.cycleID
		if len(id) > 8 {
			id = id[:8]
		}
		parts = append(parts, "cycle "+id)
	}
	if h.stage != "" {
		parts = append(parts, h.stage)
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\r=\"") {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
