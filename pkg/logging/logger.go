// Package logging provides structured logging for peakmap using zerolog.
// Console output is used when stderr is a terminal and JSON output
// otherwise, so scheduled batch runs produce machine-readable logs.
//
//	ctx := logging.WithLogger(context.Background(), logging.Default())
//	ctx = logging.WithPair(ctx, "survey")
//	logging.FromContext(ctx).Info().Int("matched", 412).Msg("Resolved links")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger = NewLoggerFromConfig(DefaultConfig())

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger and zerolog's global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts an info event on the default logger.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a warning event on the default logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Err starts an error event for err on the default logger. A nil err
// gives an info event.
func Err(err error) *zerolog.Event { return defaultLogger.Err(err) }

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
