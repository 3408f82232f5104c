package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/peakmap/pkg/constants"
)

// Config describes a logger.
type Config struct {
	// Level is trace, debug, info, warn, error or off. Unknown levels mean info.
	Level string

	// Format is json, console or auto. Auto picks console when the output
	// is a terminal.
	Format string

	// Output is stderr, stdout, discard or a file path.
	Output string

	NoColor   bool
	AddCaller bool
}

// DefaultConfig reads the logger settings from LOG_LEVEL, LOG_FORMAT,
// LOG_OUTPUT, LOG_CALLER and NO_COLOR. DEBUG=1 lowers the default level
// to debug.
func DefaultConfig() *Config {
	level := os.Getenv("LOG_LEVEL")
	if level == "" && os.Getenv("DEBUG") != "" {
		level = "debug"
	}
	return &Config{
		Level:     level,
		Format:    os.Getenv("LOG_FORMAT"),
		Output:    os.Getenv("LOG_OUTPUT"),
		NoColor:   os.Getenv("NO_COLOR") != "",
		AddCaller: os.Getenv("LOG_CALLER") == "true",
	}
}

// NewLoggerFromConfig builds a logger. It also sets the zerolog global
// level, so libraries logging through zerolog follow the same level.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := ParseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	lctx := zerolog.New(newWriter(cfg)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		lctx = lctx.Caller()
	}
	return lctx.Logger()
}

// ParseLevel converts a level name to a zerolog level. Unknown or empty
// names give info.
func ParseLevel(name string) zerolog.Level {
	switch name = strings.ToLower(strings.TrimSpace(name)); name {
	case "warning":
		return zerolog.WarnLevel
	case "off", "none", "disabled":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	if level, err := zerolog.ParseLevel(name); err == nil && level != zerolog.NoLevel {
		return level
	}
	return zerolog.InfoLevel
}

func newWriter(cfg *Config) io.Writer {
	out, terminal := openOutput(cfg.Output)

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
	case "", "auto":
		if !terminal {
			return out
		}
	default:
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen, NoColor: cfg.NoColor}
}

// openOutput resolves an output name. A file that cannot be opened falls
// back to stderr.
func openOutput(name string) (w io.Writer, terminal bool) {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr, isTerminal(os.Stderr)
	case "stdout":
		return os.Stdout, isTerminal(os.Stdout)
	case "discard", "none":
		return io.Discard, false
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions) //nolint:gosec // path comes from configuration
	if err != nil {
		return os.Stderr, isTerminal(os.Stderr)
	}
	return f, false
}
