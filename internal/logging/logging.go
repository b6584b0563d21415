// Package logging builds the structured logger shared by the QOSST Scope commands
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"qosst-scope/internal/config"
)

// New returns a logger writing to w at the level named in cfg.
// verbose forces debug level regardless of the configured level.
func New(w io.Writer, prefix string, cfg config.LoggingConfig, verbose bool) (*log.Logger, error) {
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	}), nil
}
