// Package peakmap builds a unified mountain peak catalog from three
// independently curated peak tables.
//
// A Client loads the expedition archive (the anchor), the crowd-sourced
// survey and the government registry, links every anchor peak to its best
// matching survey and registry records by fuzzy name similarity, merges the
// linked records into one catalog row per anchor peak and assigns each
// peak a mountain region by polygon containment.
//
// Example usage:
//
//	client, err := peakmap.New(
//	    peakmap.WithSources(sources.Paths{
//	        Anchor:   "hdb_peak.txt",
//	        Survey:   "osm_peak.txt",
//	        Registry: "mot_peak.txt",
//	    }),
//	    peakmap.WithRegionsFile("himal.geojson"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnLinked(func(target types.SourceID, _ linkage.LinkMap, r *linkage.Result) {
//	    log.Printf("%s: %d matched", target, r.Matched)
//	})
//
//	result, err := client.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = client.Save(ctx, result, save.WithDir("out"))
package peakmap

import (
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/logging"
	"github.com/agentstation/peakmap/pkg/names"
)

// Client runs the catalog pipeline.
type Client interface {

	// Builder runs the pipeline stages
	Builder

	// Persistence writes build results
	Persistence

	// Hooks provides access to event callback registration
	Hooks

	// Normalizer returns the name normalizer in use
	Normalizer() *names.Normalizer

	// Overrides returns the manual link and region corrections in use
	Overrides() *linkage.Tables
}

// client is the internal implementation of the Client interface.
type client struct {
	options    *options
	normalizer *names.Normalizer
	overrides  *linkage.Tables
	hooks      *hooks
}

// New creates a Client. Rule and override files named by options are read
// here, so configuration errors surface before any run.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	c := &client{options: o, hooks: newHooks()}

	rules, err := names.DefaultRules()
	if o.rulesPath != "" {
		rules, err = names.LoadRules(o.rulesPath)
	}
	if err != nil {
		return nil, errors.NewConfigError("rules", "cannot load name rules", err)
	}
	if c.normalizer, err = names.NewNormalizer(rules); err != nil {
		return nil, errors.NewConfigError("rules", "cannot compile name rules", err)
	}

	c.overrides, err = linkage.DefaultTables()
	if o.overridesPath != "" {
		c.overrides, err = linkage.LoadTables(o.overridesPath)
	}
	if err != nil {
		return nil, errors.NewConfigError("overrides", "cannot load override tables", err)
	}

	logging.Debug().
		Int("rules", len(rules.Rules)).
		Int("survey_overrides", len(c.overrides.For("survey"))).
		Int("registry_overrides", len(c.overrides.For("registry"))).
		Int("region_overrides", len(c.overrides.Regions)).
		Msg("Client configured")

	return c, nil
}

// Normalizer returns the name normalizer in use.
func (c *client) Normalizer() *names.Normalizer {
	return c.normalizer
}

// Overrides returns the manual link and region corrections in use.
func (c *client) Overrides() *linkage.Tables {
	return c.overrides
}

// OnLinked registers a callback for resolved source pairs.
func (c *client) OnLinked(fn LinkedHook) { c.hooks.OnLinked(fn) }

// OnRegions registers a callback for the prepared region set.
func (c *client) OnRegions(fn RegionsHook) { c.hooks.OnRegions(fn) }

// OnBuilt registers a callback for built catalogs.
func (c *client) OnBuilt(fn BuiltHook) { c.hooks.OnBuilt(fn) }
