package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/kiln/internal/ui/style"
)

// TargetKey is the attribute rendered as a "[name]" prefix instead of key=value.
const TargetKey = "target"

type levelStyle struct {
	symbol string
	color  lipgloss.Color
}

func styleFor(level slog.Level) levelStyle {
	switch {
	case level >= slog.LevelError:
		return levelStyle{symbol: style.Cross, color: style.Red}
	case level >= slog.LevelWarn:
		return levelStyle{symbol: style.Warning, color: style.Yellow}
	case level < slog.LevelInfo:
		return levelStyle{symbol: style.Circle, color: style.Ash}
	default:
		return levelStyle{color: style.Ash}
	}
}

// PrettyHandler is a slog.Handler producing one colored line per record,
// in the same shape as the linear build output.
type PrettyHandler struct {
	out    *termenv.Output
	level  slog.Leveler
	target string
	attrs  []string
	prefix string
}

// NewPrettyHandler creates a PrettyHandler writing to w (stderr when nil).
// A *slog.LevelVar passed as opts.Level stays live.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record as a single line.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	ls := styleFor(r.Level)

	target := h.target
	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	parts = append(parts, h.attrs...)
	r.Attrs(func(attr slog.Attr) bool {
		if h.prefix == "" && attr.Key == TargetKey {
			target = attr.Value.String()
			return true
		}
		parts = append(parts, h.prefix+attr.Key+"="+attr.Value.String())
		return true
	})

	var line strings.Builder
	if target != "" {
		line.WriteString("[" + target + "] ")
	}
	if ls.symbol != "" {
		line.WriteString(ls.symbol + " ")
	}
	line.WriteString(r.Message)
	for _, p := range parts {
		line.WriteString(" " + p)
	}

	styled := h.out.String(line.String()).Foreground(termenv.RGBColor(string(ls.color)))
	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// WithAttrs returns a handler that renders attrs on every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]string, len(h.attrs), len(h.attrs)+len(attrs))
	copy(next.attrs, h.attrs)
	for _, attr := range attrs {
		if h.prefix == "" && attr.Key == TargetKey {
			next.target = attr.Value.String()
			continue
		}
		next.attrs = append(next.attrs, h.prefix+attr.Key+"="+attr.Value.String())
	}
	return &next
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
