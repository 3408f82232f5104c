// Package app provides the application context and dependency management
// for the peakmap CLI: configuration, logging and the pipeline client.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/peakmap"
	"github.com/agentstation/peakmap/internal/observability"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/save"
	"github.com/agentstation/peakmap/pkg/types"
)

// MetricsNamespace prefixes the run metrics written by the CLI.
const MetricsNamespace = "peakmap"

// App represents the peakmap application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	flags  globalFlags

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client peakmap.Client

	metricsOnce sync.Once
	metrics     *observability.Metrics
}

// globalFlags holds the raw values of the persistent flags.
type globalFlags struct {
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	format     string
	logLevel   string

	anchor   string
	survey   string
	registry string
	regions  string
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the pipeline client. Without opts the configured client
// is created once and shared; with opts a new client is created with opts
// applied after the configured options.
func (a *App) Client(opts ...peakmap.Option) (peakmap.Client, error) {
	if len(opts) > 0 {
		return a.newClient(opts...)
	}

	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}
	c, err := a.newClient()
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func (a *App) newClient(extra ...peakmap.Option) (peakmap.Client, error) {
	c, err := peakmap.New(append(a.clientOptions(), extra...)...)
	if err != nil {
		return nil, errors.NewConfigError("client", "cannot create pipeline client", err)
	}
	return c, nil
}

// clientOptions constructs client options from the configuration.
func (a *App) clientOptions() []peakmap.Option {
	cfg := a.config
	opts := []peakmap.Option{
		peakmap.WithSources(cfg.Sources()),
		peakmap.WithThreshold(types.SurveyID, cfg.SurveyThreshold),
		peakmap.WithThreshold(types.RegistryID, cfg.RegistryThreshold),
		peakmap.WithPrimaryOverride(cfg.PrimaryOverride),
		peakmap.WithWorkers(cfg.Workers),
		peakmap.WithProvenance(cfg.Provenance),
	}
	if cfg.RegionsPath != "" {
		opts = append(opts, peakmap.WithRegionsFile(cfg.RegionsPath))
	}
	if cfg.RulesPath != "" {
		opts = append(opts, peakmap.WithRulesFile(cfg.RulesPath))
	}
	if cfg.OverridesPath != "" {
		opts = append(opts, peakmap.WithOverridesFile(cfg.OverridesPath))
	}
	if cfg.MetricsFile != "" {
		opts = append(opts, peakmap.WithMetrics(a.Metrics()))
	}
	return opts
}

// Metrics returns the run metrics, creating them on first use.
func (a *App) Metrics() *observability.Metrics {
	a.metricsOnce.Do(func() {
		a.metrics = observability.NewMetrics(MetricsNamespace)
	})
	return a.metrics
}

// SaveOptions returns the output settings from the configuration.
func (a *App) SaveOptions() []save.Option {
	cfg := a.config
	opts := []save.Option{save.WithDir(cfg.OutDir)}
	if cfg.Provenance {
		opts = append(opts, save.WithArtifacts(save.Artifacts()...))
	}
	if cfg.SQLitePath != "" {
		opts = append(opts, save.WithSQLite(cfg.SQLitePath))
	}
	if cfg.MetricsFile != "" {
		opts = append(opts, save.WithMetricsFile(cfg.MetricsFile))
	}
	return opts
}

// Shutdown releases application resources.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.client = nil
	return nil
}

// reset drops the cached client after the configuration changed.
func (a *App) reset() {
	a.mu.Lock()
	a.client = nil
	a.mu.Unlock()
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
