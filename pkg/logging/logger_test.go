package logging_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peakmap/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	original := *logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	buf := &bytes.Buffer{}
	logging.SetDefault(zerolog.New(buf).Level(zerolog.InfoLevel))

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Err(errors.New("boom")).Msg("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "boom")
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithSource(ctx, "survey")
	ctx = logging.WithPair(ctx, "anchor-survey")
	ctx = logging.WithPeak(ctx, "AMAD")
	ctx = logging.WithOperation(ctx, "resolve")

	logging.FromContext(ctx).Info().Msg("linked peak")

	entries := testLogger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "survey", entries[0]["source"])
	assert.Equal(t, "anchor-survey", entries[0]["pair"])
	assert.Equal(t, "AMAD", entries[0]["peak_id"])
	assert.Equal(t, "resolve", entries[0]["operation"])
	assert.Equal(t, "linked peak", entries[0]["message"])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	//nolint:staticcheck // nil context is part of the contract
	assert.Equal(t, logging.Default(), logging.FromContext(nil))
	assert.Equal(t, logging.Default(), logging.FromContext(logging.WithLogger(context.Background(), nil)))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"chatty":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}
}

func TestNewLoggerFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		present []string
		absent  []string
	}{
		{
			name:    "debug level",
			level:   "debug",
			present: []string{`"level":"debug"`, `"level":"info"`, `"caller":`},
		},
		{
			name:    "error level only",
			level:   "error",
			present: []string{`"level":"error"`},
			absent:  []string{`"level":"info"`, `"level":"debug"`, `"caller":`},
		},
		{
			name:    "unknown level falls back to info",
			level:   "chatty",
			present: []string{`"level":"info"`},
			absent:  []string{`"level":"debug"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldLevel := zerolog.GlobalLevel()
			t.Cleanup(func() { zerolog.SetGlobalLevel(oldLevel) })

			buf := &bytes.Buffer{}
			cfg := &logging.Config{Level: tt.level, Format: "json", Output: "discard"}
			logger := logging.NewLoggerFromConfig(cfg).Output(buf)

			logger.Debug().Msg("debug")
			logger.Info().Msg("info")
			logger.Error().Msg("error")

			for _, s := range tt.present {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEBUG", "1")
	t.Setenv("LOG_OUTPUT", "discard")
	t.Setenv("NO_COLOR", "1")

	cfg := logging.DefaultConfig()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "discard", cfg.Output)
	assert.True(t, cfg.NoColor)

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", logging.DefaultConfig().Level)
}

func TestCaptureLoggingForTest(t *testing.T) {
	testLogger := logging.CaptureLoggingForTest(t)

	logging.Info().Str("region", "KHUMBU").Msg("first")
	logging.Warn().Msg("second")

	testLogger.AssertCount(t, 2)
	testLogger.AssertContains(t, "KHUMBU")
	testLogger.AssertNotContains(t, "third")
	assert.True(t, testLogger.Contains("second"))

	testLogger.Clear()
	testLogger.AssertCount(t, 0)
}
