// Package linkage links anchor peak records to the records of another
// source. Manual overrides are applied first; every other anchor record is
// linked to its best scoring target name when that score reaches the
// threshold of the pair.
package linkage

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/iter"

	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/logging"
	"github.com/agentstation/peakmap/pkg/names"
	"github.com/agentstation/peakmap/pkg/similarity"
)

// Option configures a Resolver.
type Option func(*config) error

type config struct {
	pair            string
	threshold       float64
	primaryOverride float64
	overrides       Overrides
	workers         int
	engineOpts      []similarity.Option
}

// WithPair names the source pair in logs and results.
func WithPair(pair string) Option {
	return func(c *config) error {
		c.pair = pair
		return nil
	}
}

// WithThreshold sets the lowest similarity accepted for a computed link.
func WithThreshold(threshold float64) Option {
	return func(c *config) error {
		if threshold < 0 || threshold > 1 {
			return &errors.ValidationError{Field: "threshold", Value: threshold, Message: "must be between 0 and 1"}
		}
		c.threshold = threshold
		return nil
	}
}

// WithPrimaryOverride sets the similarity above which a primary name match
// beats a better alternate name match.
func WithPrimaryOverride(sim float64) Option {
	return func(c *config) error {
		if sim < 0 || sim > 1 {
			return &errors.ValidationError{Field: "primary_override", Value: sim, Message: "must be between 0 and 1"}
		}
		c.primaryOverride = sim
		return nil
	}
}

// WithOverrides sets the manual links. They are copied.
func WithOverrides(o Overrides) Option {
	return func(c *config) error {
		c.overrides = make(Overrides, len(o))
		for k, v := range o {
			c.overrides[k] = v
		}
		return nil
	}
}

// WithWorkers caps the goroutines scoring anchors. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return &errors.ValidationError{Field: "workers", Value: n, Message: "must not be negative"}
		}
		c.workers = n
		return nil
	}
}

// WithSimilarityOptions passes options to the similarity engine.
func WithSimilarityOptions(opts ...similarity.Option) Option {
	return func(c *config) error {
		c.engineOpts = append(c.engineOpts, opts...)
		return nil
	}
}

// Resolver builds the LinkMap of one source pair.
type Resolver struct {
	cfg config
}

// New creates a Resolver.
func New(opts ...Option) (*Resolver, error) {
	cfg := config{
		threshold:       constants.DefaultThreshold,
		primaryOverride: constants.PrimaryOverride,
		overrides:       Overrides{},
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.workers == 0 {
		cfg.workers = min(runtime.GOMAXPROCS(0), constants.MaxWorkers)
	}
	return &Resolver{cfg: cfg}, nil
}

// Threshold returns the configured threshold.
func (r *Resolver) Threshold() float64 {
	return r.cfg.threshold
}

// Decision is the outcome for one anchor record.
type Decision struct {
	SourceID string
	// Best is the selected candidate; nil when there was none or the
	// anchor was overridden.
	Best     *similarity.Candidate
	Accepted bool
}

// Result summarizes a resolution run.
type Result struct {
	Pair      string
	Threshold float64
	Anchors   int
	// Overridden counts anchor ids with an override entry. Overrides for
	// ids outside the corpus still appear in the LinkMap but are not
	// counted, so the outcome counts add up to Anchors.
	Overridden     int
	Matched        int
	Unmatched      int
	BelowThreshold int
	// Decisions holds one entry per anchor id without an override, in
	// anchor order.
	Decisions []Decision
}

// Resolve links anchors to targets. Both corpora hold every name variant
// of their records. Override entries are inserted first and never
// replaced; remaining anchor ids are linked when their selected candidate
// reaches the threshold.
func (r *Resolver) Resolve(ctx context.Context, anchors, targets []names.Record) (LinkMap, *Result, error) {
	ctx = logging.WithPair(ctx, r.cfg.pair)
	log := logging.FromContext(ctx)

	links := make(LinkMap, len(r.cfg.overrides))
	for id, target := range r.cfg.overrides {
		l := Link{SourceID: id, Origin: OriginOverride}
		if target != nil {
			l.TargetID = *target
			l.TargetName = firstName(targets, *target)
		}
		links[id] = l
	}

	groups := groupBySource(anchors)
	result := &Result{
		Pair:      r.cfg.pair,
		Threshold: r.cfg.threshold,
		Anchors:   len(groups),
	}

	pending := make([]group, 0, len(groups))
	for _, g := range groups {
		if _, ok := links[g.id]; ok {
			result.Overridden++
			continue
		}
		pending = append(pending, g)
	}

	engine := similarity.New(anchors, targets, r.cfg.engineOpts...)
	mapper := iter.Mapper[group, Decision]{MaxGoroutines: r.cfg.workers}
	decisions := mapper.Map(pending, func(g *group) Decision {
		d := Decision{SourceID: g.id}
		if ctx.Err() != nil {
			return d
		}

		var cands []similarity.Candidate
		for _, rec := range g.records {
			cands = append(cands, engine.Candidates(rec)...)
		}
		if best, ok := Select(cands, r.cfg.primaryOverride); ok {
			d.Best = &best
			d.Accepted = best.Similarity >= r.cfg.threshold
		}
		return d
	})
	if err := ctx.Err(); err != nil {
		return nil, nil, errors.WrapCanceled("resolve "+r.cfg.pair, err)
	}

	for _, d := range decisions {
		switch {
		case d.Best == nil:
			result.Unmatched++
		case !d.Accepted:
			result.BelowThreshold++
			log.Debug().
				Str("peak_id", d.SourceID).
				Str("candidate", d.Best.TargetID).
				Float64("similarity", d.Best.Similarity).
				Msg("Best candidate below threshold")
		default:
			result.Matched++
			links[d.SourceID] = Link{
				SourceID:   d.SourceID,
				TargetID:   d.Best.TargetID,
				TargetName: d.Best.TargetName,
				Similarity: d.Best.Similarity,
				Origin:     OriginMatch,
			}
		}
	}
	result.Decisions = decisions

	log.Info().
		Int("anchors", result.Anchors).
		Int("overridden", result.Overridden).
		Int("matched", result.Matched).
		Int("unmatched", result.Unmatched).
		Int("below_threshold", result.BelowThreshold).
		Float64("threshold", r.cfg.threshold).
		Msg("Resolved links")

	return links, result, nil
}

// group holds the name variants of one source record.
type group struct {
	id      string
	records []names.Record
}

// groupBySource groups records by source id in order of first appearance.
func groupBySource(records []names.Record) []group {
	index := make(map[string]int)
	var groups []group
	for _, rec := range records {
		i, ok := index[rec.SourceID]
		if !ok {
			i = len(groups)
			index[rec.SourceID] = i
			groups = append(groups, group{id: rec.SourceID})
		}
		groups[i].records = append(groups[i].records, rec)
	}
	return groups
}

// firstName returns the primary full name of target id, or "".
func firstName(records []names.Record, id string) string {
	for _, rec := range records {
		if rec.SourceID == id {
			return rec.FullName
		}
	}
	return ""
}
