package peakmap

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/peakmap/pkg/catalog"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/logging"
	"github.com/agentstation/peakmap/pkg/names"
	"github.com/agentstation/peakmap/pkg/provenance"
	"github.com/agentstation/peakmap/pkg/regions"
	"github.com/agentstation/peakmap/pkg/sources"
	"github.com/agentstation/peakmap/pkg/types"
)

// Compile-time interface check to ensure proper implementation.
var _ Builder = (*client)(nil)

// Builder runs the pipeline stages.
type Builder interface {
	// Build runs the whole pipeline
	Build(ctx context.Context) (*Result, error)

	// Link loads the source tables and resolves one source pair
	Link(ctx context.Context, target types.SourceID) (linkage.LinkMap, *linkage.Result, error)

	// Regions loads the region boundaries and computes shadowing
	Regions(ctx context.Context) (*regions.Set, error)
}

// Result is the output of a pipeline run.
type Result struct {
	Tables     *sources.Tables
	Regions    *regions.Set
	Links      map[types.SourceID]linkage.LinkMap
	Linkage    map[types.SourceID]*linkage.Result
	Catalog    *catalog.Catalog
	Provenance provenance.Map
	Duration   time.Duration
}

// Build loads the tables and regions concurrently, resolves the survey and
// registry pairs, then builds the catalog.
func (c *client) Build(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	ctx = logging.WithOperation(ctx, "build")
	logger := logging.FromContext(ctx)

	defer func() {
		if m := c.options.metrics; m != nil {
			m.ObserveStage("total", time.Since(start))
			m.RecordRun(time.Now(), err == nil)
		}
	}()

	res = &Result{
		Links:   make(map[types.SourceID]linkage.LinkMap),
		Linkage: make(map[types.SourceID]*linkage.Result),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer c.observe("load", time.Now())
		var err error
		res.Tables, err = sources.Load(gctx, c.options.paths)
		return err
	})
	g.Go(func() error {
		var err error
		res.Regions, err = c.Regions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	anchors := res.Tables.Anchors.Records(c.normalizer)
	for _, target := range types.TargetIDs() {
		links, result, err := c.resolve(ctx, target, anchors, res.Tables)
		if err != nil {
			return nil, err
		}
		res.Links[target] = links
		res.Linkage[target] = result
	}

	tracker := provenance.NewTracker(c.options.provenance)
	builder := catalog.New(
		catalog.WithAuthority(c.options.authority),
		catalog.WithRegions(res.Regions),
		catalog.WithRegionOverrides(c.overrides.Regions),
		catalog.WithTracker(tracker),
	)

	buildStart := time.Now()
	res.Catalog, err = builder.Build(ctx, catalog.Input{
		Anchors: res.Tables.Anchors,
		Secondary: map[types.SourceID]*sources.Secondary{
			types.SurveyID:   res.Tables.Survey,
			types.RegistryID: res.Tables.Registry,
		},
		Links: res.Links,
	})
	if err != nil {
		return nil, err
	}
	c.observe("catalog", buildStart)
	res.Provenance = tracker.Map()
	c.recordCatalog(res.Catalog.Stats)
	c.hooks.triggerBuilt(res.Catalog)

	res.Duration = time.Since(start)
	logger.Info().
		Int("peaks", res.Catalog.Stats.Peaks).
		Dur("duration", res.Duration).
		Msg("Build complete")

	return res, nil
}

// Link loads the source tables and resolves anchors against target.
func (c *client) Link(ctx context.Context, target types.SourceID) (linkage.LinkMap, *linkage.Result, error) {
	if _, ok := c.options.thresholds[target]; !ok {
		return nil, nil, &errors.ValidationError{Field: "target", Value: target, Message: "not a linked source"}
	}
	tables, err := sources.Load(ctx, c.options.paths)
	if err != nil {
		return nil, nil, err
	}
	return c.resolve(ctx, target, tables.Anchors.Records(c.normalizer), tables)
}

// Regions loads the region boundaries. With no regions file the set is
// empty.
func (c *client) Regions(ctx context.Context) (*regions.Set, error) {
	defer c.observe("regions", time.Now())
	ctx = logging.WithOperation(ctx, "regions")

	var rs []regions.Region
	if c.options.regionsPath == "" {
		logging.FromContext(ctx).Warn().Msg("No regions file configured, only region overrides apply")
	} else {
		var err error
		if rs, err = regions.LoadFile(ctx, c.options.regionsPath); err != nil {
			return nil, err
		}
	}

	set, err := regions.New(ctx, rs)
	if err != nil {
		return nil, err
	}

	if m := c.options.metrics; m != nil {
		shadowed := 0
		for _, r := range set.Regions() {
			if r.Shadowed {
				shadowed++
			}
		}
		m.RecordRegions(set.Len()-shadowed, shadowed)
	}
	c.hooks.triggerRegions(set)
	return set, nil
}

func (c *client) resolve(ctx context.Context, target types.SourceID, anchors []names.Record, tables *sources.Tables) (linkage.LinkMap, *linkage.Result, error) {
	defer c.observe("resolve_"+target.String(), time.Now())

	r, err := linkage.New(
		linkage.WithPair(target.String()),
		linkage.WithThreshold(c.options.thresholds[target]),
		linkage.WithPrimaryOverride(c.options.primaryOverride),
		linkage.WithOverrides(c.overrides.For(target.String())),
		linkage.WithWorkers(c.options.workers),
	)
	if err != nil {
		return nil, nil, err
	}

	links, result, err := r.Resolve(ctx, anchors, tables.Secondary(target).Records(c.normalizer))
	if err != nil {
		return nil, nil, err
	}

	if m := c.options.metrics; m != nil {
		m.RecordLinks(target.String(), result.Anchors, result.Overridden, result.Matched, result.Unmatched, result.BelowThreshold)
	}
	c.hooks.triggerLinked(target, links, result)
	return links, result, nil
}

func (c *client) observe(stage string, start time.Time) {
	if m := c.options.metrics; m != nil {
		m.ObserveStage(stage, time.Since(start))
	}
}

func (c *client) recordCatalog(s catalog.Stats) {
	m := c.options.metrics
	if m == nil {
		return
	}
	m.RecordPeaks("total", s.Peaks)
	m.RecordPeaks("with_coordinates", s.WithCoordinates)
	m.RecordPeaks("approximate", s.Approximate)
	m.RecordPeaks("with_region", s.WithRegion)
	m.RecordPeaks("region_overrides", s.RegionOverrides)
}
