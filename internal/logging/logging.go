// Package logging builds the charmbracelet loggers shared by the palette packages.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Prefix is prepended to every palette log line
const Prefix = "[CommandPalette]"

// New creates a logger that only reports debug output when debug is enabled.
// Warnings and errors are always written.
func New(w io.Writer, debug bool) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := NewWithConfig(w, Prefix, log.WarnLevel, false, true, log.TextFormatter)
	SetDebug(logger, debug)
	return logger
}

// SetDebug switches between debug and warn level. The debug notice is
// written once, when debug output is first turned on.
func SetDebug(logger *log.Logger, debug bool) {
	if !debug {
		logger.SetLevel(log.WarnLevel)
		return
	}
	if logger.GetLevel() == log.DebugLevel {
		return
	}
	logger.SetLevel(log.DebugLevel)
	logger.Warn("Debug mode is ENABLED")
}

// NewWithConfig creates a logger with explicit options
func NewWithConfig(w io.Writer, prefix string, level log.Level, caller bool, showTimestamp bool, fmt log.Formatter) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       fmt,
	})
}

// Discard returns a logger that writes nowhere, for tests
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
