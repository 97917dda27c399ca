package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Handler writes records as "LEVEL   - message key=value ..." lines.
// Errors and warnings are colored when the output is a terminal.
type Handler struct {
	level  slog.Leveler
	out    io.Writer
	mu     *sync.Mutex
	styles map[slog.Level]lipgloss.Style
	attrs  []slog.Attr
	groups []string
}

func NewHandler(out io.Writer, level slog.Leveler) *Handler {
	renderer := lipgloss.NewRenderer(out)

	return &Handler{
		level: level,
		out:   out,
		mu:    &sync.Mutex{},
		styles: map[slog.Level]lipgloss.Style{
			slog.LevelError: renderer.NewStyle().
				Background(lipgloss.Color("88")).
				Foreground(lipgloss.Color("15")),
			slog.LevelWarn: renderer.NewStyle().
				Foreground(lipgloss.Color("11")),
		},
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%-7s - %s", r.Level.String(), r.Message)

	for _, attr := range h.attrs {
		writeAttr(&buf, "", attr)
	}

	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(&buf, prefix, attr)
		return true
	})

	line := buf.String()
	if style, ok := h.styles[severity(r.Level)]; ok {
		line = style.Render(line)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.out, line+"\n")
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	prefix := strings.Join(h.groups, ".")

	clone.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, attr := range attrs {
		if prefix != "" {
			attr.Key = prefix + "." + attr.Key
		}
		clone.attrs = append(clone.attrs, attr)
	}

	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// severity folds custom levels onto the styled ones.
func severity(level slog.Level) slog.Level {
	switch {
	case level >= slog.LevelError:
		return slog.LevelError
	case level >= slog.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func writeAttr(buf *bytes.Buffer, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := attr.Key
	if prefix != "" {
		key = prefix + "." + key
	}

	if attr.Value.Kind() == slog.KindGroup {
		for _, member := range attr.Value.Group() {
			writeAttr(buf, key, member)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(key)
	buf.WriteByte('=')

	switch attr.Value.Kind() {
	case slog.KindTime:
		buf.WriteString(attr.Value.Time().Format(time.RFC3339))
	case slog.KindString:
		value := attr.Value.String()
		if value == "" || strings.ContainsAny(value, " \t\n\"=") {
			value = fmt.Sprintf("%q", value)
		}
		buf.WriteString(value)
	default:
		buf.WriteString(attr.Value.String())
	}
}
