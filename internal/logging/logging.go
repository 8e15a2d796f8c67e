// Package logging builds the charmbracelet logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/tessro/spotify-cli/internal/config"
)

// NewLogger creates a [log.Logger] writing to w (stderr when nil).
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, Prefix: config.AppName}
	return log.NewWithOptions(w, opts)
}

// New creates the logger described by cfg. verbose forces debug level.
// When cfg.File is set the returned closer must be called on exit.
func New(cfg config.LogConfig, verbose bool) (*log.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	}

	logger := NewLogger(w)

	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			_ = closer.Close()
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
