// Package logger configures log/slog for the whole process and hands out
// per-component loggers.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level     slog.Level
	Format    string
	Output    io.Writer
	AddSource bool
}

func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// ParseLevel accepts debug, info, warn/warning and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// Init replaces the process default. Loggers from ForComponent pick up the
// change even when they were created earlier.
func Init(cfg Config) {
	slog.SetDefault(New(cfg))
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ForComponent returns a logger tagged with component that resolves the
// default handler at each call.
func ForComponent(component string) *slog.Logger {
	return slog.New(lazyHandler{}).With("component", component)
}

// lazyHandler forwards to slog.Default, replaying attributes and groups
// recorded through WithAttrs and WithGroup.
type lazyHandler struct {
	wrap func(slog.Handler) slog.Handler
}

func (h lazyHandler) target() slog.Handler {
	t := slog.Default().Handler()
	if h.wrap != nil {
		t = h.wrap(t)
	}
	return t
}

func (h lazyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slog.Default().Handler().Enabled(ctx, level)
}

func (h lazyHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.target().Handle(ctx, r)
}

func (h lazyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prev := h.wrap
	return lazyHandler{wrap: func(t slog.Handler) slog.Handler {
		if prev != nil {
			t = prev(t)
		}
		return t.WithAttrs(attrs)
	}}
}

func (h lazyHandler) WithGroup(name string) slog.Handler {
	prev := h.wrap
	return lazyHandler{wrap: func(t slog.Handler) slog.Handler {
		if prev != nil {
			t = prev(t)
		}
		return t.WithGroup(name)
	}}
}
