// Package logger provides a structured logger which is carried in a
// context, with a request-scoped HTTP middleware.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	FormatText = "text"
	FormatJSON = "json"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a logger writing to w in the given format ("text" or "json")
// at the given level
func New(w io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %q", format)
	}
}

// NewDiscard returns a logger which drops all output, for tests
func NewDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel returns the level for a name such as "debug" or "warn"
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}
