// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// New creates a logger writing to w with timestamps. format is "text" or
// "json"; level is any level log.ParseLevel accepts.
func New(w io.Writer, level, format string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	opts := log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		Prefix:          "moodshift",
	}
	switch format {
	case "", "text":
		opts.Formatter = log.TextFormatter
	case "json":
		opts.Formatter = log.JSONFormatter
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
	return log.NewWithOptions(w, opts), nil
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(l *log.Logger, name string) *log.Logger {
	return l.With("component", name)
}
