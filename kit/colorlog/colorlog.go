package colorlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[37m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorBlue   = "\033[34m"
)

type Options struct {
	Output   io.Writer
	Level    slog.Leveler
	UseColor *bool // nil = color only when Output is a terminal
}

type ColorLogHandler struct {
	label  string
	opts   Options
	mu     *sync.Mutex // shared across WithAttrs/WithGroup clones
	attrs  []slog.Attr
	prefix string // dotted group path, "" or ending in "."
	color  bool
}

func New(label string, opts ...Options) *slog.Logger {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Output == nil {
		o.Output = os.Stderr
	}
	if o.Level == nil {
		o.Level = slog.LevelInfo
	}
	return slog.New(&ColorLogHandler{
		label: label,
		opts:  o,
		mu:    &sync.Mutex{},
		color: detectColor(o.Output, o.UseColor),
	})
}

// ParseLevel accepts debug, info, warn or error in any case. The empty
// string means info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("colorlog: invalid level %q", s)
	}
	return l, nil
}

func detectColor(w io.Writer, override *bool) bool {
	if override != nil {
		return *override
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (h *ColorLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *ColorLogHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(h.wrap(colorGray, r.Time.Format("2006/01/02 15:04:05")))
	b.WriteString("  (")
	b.WriteString(h.wrap(colorBlue, h.label))
	b.WriteString(")  ")
	b.WriteString(h.wrap(levelColor(r.Level), levelPrefix(r.Level)+r.Message))

	n := 0
	writeAttr := func(a slog.Attr) {
		if n == 0 {
			b.WriteString("  ")
		} else {
			b.WriteByte(' ')
		}
		n++
		fmt.Fprintf(&b, "%s %s %s %v %s",
			h.wrap(colorGray, "["),
			h.wrap(colorGray, a.Key),
			h.wrap(colorGray, "="),
			a.Value.Any(),
			h.wrap(colorGray, "]"),
		)
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.opts.Output, b.String())
	return err
}

func (h *ColorLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &clone
}

func (h *ColorLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *ColorLogHandler) wrap(color string, v any) string {
	if !h.color {
		return fmt.Sprint(v)
	}
	return color + fmt.Sprint(v) + colorReset
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorCyan
	default:
		return colorGray
	}
}

func levelPrefix(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR  "
	case level >= slog.LevelWarn:
		return "WARNING  "
	case level >= slog.LevelInfo:
		return ""
	default:
		return "DEBUG  "
	}
}
