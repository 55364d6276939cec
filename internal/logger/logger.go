package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel converts a configured level name into a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// New builds a tint-backed logger writing to w at the given level.
func New(w io.Writer, level string, noColor bool) (*slog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	h := tint.NewHandler(w, &tint.Options{
		Level:      l,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	})
	return slog.New(h), nil
}
