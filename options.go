package peakmap

import (
	"fmt"
	"runtime"

	"github.com/agentstation/peakmap/internal/observability"
	"github.com/agentstation/peakmap/pkg/authority"
	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/sources"
	"github.com/agentstation/peakmap/pkg/types"
)

// Option configures a Client.
type Option func(*options) error

// options holds the configuration of a Client.
type options struct {
	paths           sources.Paths
	regionsPath     string
	rulesPath       string
	overridesPath   string
	thresholds      map[types.SourceID]float64
	primaryOverride float64
	workers         int
	authority       authority.Authority
	provenance      bool
	metrics         *observability.Metrics
}

// defaults returns the default options: survey links need 0.9, registry
// links 0.7, and the embedded rule and override tables are used.
func defaults() *options {
	return &options{
		thresholds: map[types.SourceID]float64{
			types.SurveyID:   constants.SurveyThreshold,
			types.RegistryID: constants.RegistryThreshold,
		},
		primaryOverride: constants.PrimaryOverride,
		workers:         min(runtime.GOMAXPROCS(0), constants.MaxWorkers),
		authority:       authority.New(),
	}
}

// apply applies opts in order and stops at the first error.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithSources sets the paths of the three source tables.
func WithSources(paths sources.Paths) Option {
	return func(o *options) error {
		o.paths = paths
		return nil
	}
}

// WithRegionsFile sets the GeoJSON file of region boundaries. Without one,
// peaks are only assigned regions from the override table.
func WithRegionsFile(path string) Option {
	return func(o *options) error {
		o.regionsPath = path
		return nil
	}
}

// WithRulesFile replaces the embedded name rewrite rules.
func WithRulesFile(path string) Option {
	return func(o *options) error {
		o.rulesPath = path
		return nil
	}
}

// WithOverridesFile replaces the embedded link and region override tables.
func WithOverridesFile(path string) Option {
	return func(o *options) error {
		o.overridesPath = path
		return nil
	}
}

// WithThreshold sets the lowest accepted similarity for links to target.
func WithThreshold(target types.SourceID, threshold float64) Option {
	return func(o *options) error {
		if target != types.SurveyID && target != types.RegistryID {
			return &errors.ValidationError{Field: "target", Value: target, Message: fmt.Sprintf("%q is not a linked source", target)}
		}
		if threshold < 0 || threshold > 1 {
			return &errors.ValidationError{Field: "threshold", Value: threshold, Message: "must be between 0 and 1"}
		}
		o.thresholds[target] = threshold
		return nil
	}
}

// WithPrimaryOverride sets the similarity above which a primary-name match
// beats a better alternate-name match.
func WithPrimaryOverride(sim float64) Option {
	return func(o *options) error {
		if sim < 0 || sim > 1 {
			return &errors.ValidationError{Field: "primary_override", Value: sim, Message: "must be between 0 and 1"}
		}
		o.primaryOverride = sim
		return nil
	}
}

// WithWorkers bounds the goroutines used per resolution. Zero means the
// default.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "workers", Value: n, Message: "must not be negative"}
		}
		if n > 0 {
			o.workers = n
		}
		return nil
	}
}

// WithAuthority replaces the source priority table.
func WithAuthority(a authority.Authority) Option {
	return func(o *options) error {
		if a == nil {
			return &errors.ValidationError{Field: "authority", Message: "must not be nil"}
		}
		o.authority = a
		return nil
	}
}

// WithProvenance records where every coordinate came from.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.provenance = enabled
		return nil
	}
}

// WithMetrics records run metrics into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}
