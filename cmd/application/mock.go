package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/peakmap"
	"github.com/agentstation/peakmap/pkg/save"
)

// Mock is an Application for tests. A nil function field makes the method
// return a default value.
type Mock struct {
	ClientFunc       func(opts ...peakmap.Option) (peakmap.Client, error)
	SaveOptionsFunc  func() []save.Option
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
}

// Client returns a client from ClientFunc, or one built from opts alone.
func (m *Mock) Client(opts ...peakmap.Option) (peakmap.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc(opts...)
	}
	return peakmap.New(opts...)
}

// SaveOptions returns save options from SaveOptionsFunc or none.
func (m *Mock) SaveOptions() []save.Option {
	if m.SaveOptionsFunc != nil {
		return m.SaveOptionsFunc()
	}
	return nil
}

// Logger returns a logger from LoggerFunc or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format from OutputFormatFunc or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns the version from VersionFunc or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns "unknown".
func (m *Mock) Commit() string { return "unknown" }

// Date returns "unknown".
func (m *Mock) Date() string { return "unknown" }

// BuiltBy returns "test".
func (m *Mock) BuiltBy() string { return "test" }

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
