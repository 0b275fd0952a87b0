package display

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"todoink/internal/config"
	"todoink/internal/logging"
	"todoink/internal/services"
	"todoink/internal/todoist"
)

const (
	stdoutTarget = "stdout"
	minWidth     = 40
	dueWidth     = 18
	emptyPanel   = "nothing here"
)

// TextDriver renders frames as text tables.
type TextDriver struct {
	output string
	writer io.Writer
	width  int
	debug  bool
	logger *slog.Logger
}

// NewTextDriver builds a driver that writes to output, either a file path
// replaced on every refresh or "stdout".
func NewTextDriver(output string, width int, debug bool, logger *slog.Logger) *TextDriver {
	if width < minWidth {
		width = minWidth
	}
	output = strings.TrimSpace(output)
	if output == "" {
		output = stdoutTarget
	}
	return &TextDriver{
		output: output,
		writer: os.Stdout,
		width:  width,
		debug:  debug,
		logger: logging.NewComponentLogger(logger, "display"),
	}
}

// NewFromConfig builds the configured driver.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*TextDriver, error) {
	output := strings.TrimSpace(cfg.Display.Output)
	if output != "" && output != stdoutTarget {
		expanded, err := config.ExpandPath(output)
		if err != nil {
			return nil, services.Wrap(services.ErrDisplay, "rendering", "configure", "", err)
		}
		output = expanded
	}
	return NewTextDriver(output, cfg.Display.Width, cfg.Display.Debug, logger), nil
}

// NewWriterDriver builds a driver that streams every frame to w.
func NewWriterDriver(w io.Writer, width int) *TextDriver {
	d := NewTextDriver(stdoutTarget, width, false, nil)
	d.writer = w
	return d
}

// Render draws the frame and replaces the previous output.
func (d *TextDriver) Render(ctx context.Context, frame Frame) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrDisplay, "rendering", "render", "", err)
	}
	body := d.Compose(frame)
	logger := logging.WithContext(ctx, d.logger)
	if d.debug {
		logger.Debug("frame composed", logging.String("frame", body))
	}

	if d.output == stdoutTarget {
		if _, err := io.WriteString(d.writer, body); err != nil {
			return services.Wrap(services.ErrDisplay, "rendering", "write", "", err)
		}
	} else if err := writeAtomic(d.output, body); err != nil {
		return services.Wrap(services.ErrDisplay, "rendering", "write", d.output, err)
	}
	logger.Info("frame rendered",
		logging.String("output", d.output),
		logging.Int("focus", len(frame.Focus)),
		logging.Int("overview", len(frame.Overview)),
		logging.Bool("stale", frame.Stale),
	)
	return nil
}

// Compose returns the text of one frame without writing it.
func (d *TextDriver) Compose(frame Frame) string {
	var b strings.Builder
	b.WriteString(frame.Header())
	b.WriteString("\n\n")
	b.WriteString(d.panel(frame, cases.Title(language.Und).String(frame.FocusTitle), frame.Focus))
	b.WriteString("\n\n")
	b.WriteString(d.panel(frame, "Everything Else", frame.Overview))
	b.WriteString("\n")
	return b.String()
}

func (d *TextDriver) panel(frame Frame, title string, tasks []todoist.Task) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(title)
	tw.AppendHeader(table.Row{"Due", "Task"})
	if len(tasks) == 0 {
		tw.AppendRow(table.Row{"", emptyPanel})
	}
	for _, task := range tasks {
		content := strings.TrimSpace(task.Content)
		if task.Completed {
			content = "[x] " + content
		}
		tw.AppendRow(table.Row{frame.DueLabel(task), content})
	}
	taskWidth := d.width - dueWidth - 7
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft, WidthMax: dueWidth},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft, WidthMax: taskWidth, WidthMaxEnforcer: text.Trim},
	})
	return tw.Render()
}

func writeAtomic(path, body string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".frame-*")
	if err != nil {
		return fmt.Errorf("create temp frame: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp frame: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace frame: %w", err)
	}
	return nil
}
