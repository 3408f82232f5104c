package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestLogger is a trace-level JSON logger writing to a buffer.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// NewTestLogger creates a TestLogger. The zerolog global level is lowered
// to trace until the test ends.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()

	old := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(old) })

	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &TestLogger{Logger: &logger, Buffer: buf}
}

func (tl *TestLogger) lines() []string {
	out := strings.TrimSpace(tl.Buffer.String())
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Entries decodes the captured events. Lines that are not JSON are skipped.
func (tl *TestLogger) Entries() []map[string]any {
	var entries []map[string]any
	for _, line := range tl.lines() {
		var entry map[string]any
		if json.Unmarshal([]byte(line), &entry) == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Contains reports whether any captured event contains substr.
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Buffer.String(), substr)
}

// Count returns the number of captured events.
func (tl *TestLogger) Count() int {
	return len(tl.lines())
}

// Clear drops the captured events.
func (tl *TestLogger) Clear() {
	tl.Buffer.Reset()
}

// AssertContains fails the test unless some event contains substr.
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	assert.Contains(t, tl.Buffer.String(), substr)
}

// AssertNotContains fails the test if some event contains substr.
func (tl *TestLogger) AssertNotContains(t testing.TB, substr string) {
	t.Helper()
	assert.NotContains(t, tl.Buffer.String(), substr)
}

// AssertCount fails the test unless exactly n events were captured.
func (tl *TestLogger) AssertCount(t testing.TB, n int) {
	t.Helper()
	assert.Equal(t, n, tl.Count(), "log output:\n%s", tl.Buffer.String())
}

// DisableLoggingForTest silences the default logger until the test ends.
func DisableLoggingForTest(t testing.TB) {
	t.Helper()
	original := *Default()
	SetDefault(zerolog.Nop())
	t.Cleanup(func() { SetDefault(original) })
}

// CaptureLoggingForTest routes the default logger into a TestLogger until
// the test ends.
func CaptureLoggingForTest(t testing.TB) *TestLogger {
	t.Helper()
	original := *Default()
	tl := NewTestLogger(t)
	SetDefault(*tl.Logger)
	t.Cleanup(func() { SetDefault(original) })
	return tl
}
