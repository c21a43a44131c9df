// Package logging configures the structured charmbracelet logger used across
// text2image. Messages below the configured level are discarded.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel parses a level string. Unknown or empty values map to info.
func ParseLevel(s string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// New creates a logger writing to output (stderr when nil)
func New(level string, output io.Writer) *log.Logger {
	if output == nil {
		output = os.Stderr
	}
	return log.NewWithOptions(output, log.Options{
		Level:           ParseLevel(level),
		ReportTimestamp: true,
		Prefix:          "text2image",
	})
}

// OpenFile creates a logger appending to path. The returned closer must be
// closed when the program exits.
func OpenFile(level, path string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		Level:           ParseLevel(level),
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
	return logger, f, nil
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.New(io.Discard)
}
