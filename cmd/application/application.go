// Package application provides the application interface for peakmap commands.
//
// Commands accept an Application rather than the concrete App, so they can be
// tested with a Mock:
//
//	mock := &application.Mock{
//	    ClientFunc: func(opts ...peakmap.Option) (peakmap.Client, error) {
//	        return peakmap.New(append(testOptions, opts...)...)
//	    },
//	}
//	cmd := build.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/peakmap"
	"github.com/agentstation/peakmap/pkg/save"
)

// Application provides what commands need from the application layer.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns a pipeline client configured from the loaded
	// configuration. opts are applied after the configured options.
	Client(opts ...peakmap.Option) (peakmap.Client, error)

	// SaveOptions returns the output settings from the configuration.
	SaveOptions() []save.Option

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, wide, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// AnnotationSources marks commands that read the source tables. The
// application checks that every source path is configured before they run.
const AnnotationSources = "peakmap/sources"

// NeedsSources returns the annotations of a command that reads the source
// tables.
func NeedsSources() map[string]string {
	return map[string]string{AnnotationSources: "required"}
}
