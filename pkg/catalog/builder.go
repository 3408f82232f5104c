// Package catalog merges the anchor peaks with their linked survey and
// registry records into the unified peak catalog.
//
// For every anchor peak the builder collects alternate names from all
// linked records, picks coordinates from the most authoritative source
// that has them, cites every source that supplied coordinates and assigns
// a region. Output order is anchor table order.
package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/agentstation/peakmap/internal/utils/ptr"
	"github.com/agentstation/peakmap/pkg/authority"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/linkage"
	"github.com/agentstation/peakmap/pkg/logging"
	"github.com/agentstation/peakmap/pkg/names"
	"github.com/agentstation/peakmap/pkg/provenance"
	"github.com/agentstation/peakmap/pkg/regions"
	"github.com/agentstation/peakmap/pkg/sources"
	"github.com/agentstation/peakmap/pkg/types"
)

// Field paths looked up in the authority table.
const (
	FieldCoordinates = "Coordinates"
	FieldAltNames    = "AltNames"
	FieldNotes       = "Notes"
)

// Builder builds catalogs. It is safe for concurrent use once built.
type Builder struct {
	authority   authority.Authority
	regions     *regions.Set
	overrides   map[string]string
	citations   map[types.SourceID]string
	approximate map[types.SourceID]bool
	tracker     provenance.Tracker
}

// Option configures a Builder.
type Option func(*Builder)

// WithAuthority replaces the source priority table.
func WithAuthority(a authority.Authority) Option {
	return func(b *Builder) {
		if a != nil {
			b.authority = a
		}
	}
}

// WithRegions sets the regions peaks are assigned to.
func WithRegions(set *regions.Set) Option {
	return func(b *Builder) {
		b.regions = set
	}
}

// WithRegionOverrides assigns regions by anchor id ahead of containment.
func WithRegionOverrides(overrides map[string]string) Option {
	return func(b *Builder) {
		b.overrides = make(map[string]string, len(overrides))
		for k, v := range overrides {
			b.overrides[k] = v
		}
	}
}

// WithCitation sets the name a source is cited by in coordinate notes.
func WithCitation(source types.SourceID, cite string) Option {
	return func(b *Builder) {
		b.citations[source] = cite
	}
}

// WithApproximate marks whether coordinates from a source are approximate.
func WithApproximate(source types.SourceID, approximate bool) Option {
	return func(b *Builder) {
		b.approximate[source] = approximate
	}
}

// WithTracker records the source of every coordinate in t.
func WithTracker(t provenance.Tracker) Option {
	return func(b *Builder) {
		b.tracker = t
	}
}

// New returns a Builder. By default survey coordinates are exact and cited
// as OSM, and registry coordinates are approximate and cited as MoTCA.
func New(opts ...Option) *Builder {
	b := &Builder{
		authority: authority.New(),
		overrides: map[string]string{},
		citations: map[types.SourceID]string{
			types.SurveyID:   "OSM",
			types.RegistryID: "MoTCA",
		},
		approximate: map[types.SourceID]bool{
			types.SurveyID:   false,
			types.RegistryID: true,
		},
		tracker: provenance.NewTracker(false),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Input is everything a build reads.
type Input struct {
	Anchors   sources.Anchors
	Secondary map[types.SourceID]*sources.Secondary
	Links     map[types.SourceID]linkage.LinkMap
}

// Stats counts catalog properties.
type Stats struct {
	Peaks           int `json:"peaks" yaml:"peaks"`
	WithCoordinates int `json:"with_coordinates" yaml:"with_coordinates"`
	Approximate     int `json:"approximate" yaml:"approximate"`
	WithRegion      int `json:"with_region" yaml:"with_region"`
	RegionOverrides int `json:"region_overrides" yaml:"region_overrides"`
}

// Catalog is a built catalog.
type Catalog struct {
	Peaks []Peak
	Stats Stats
}

// Build merges one catalog row per anchor peak, in anchor order.
func (b *Builder) Build(ctx context.Context, in Input) (*Catalog, error) {
	logger := logging.FromContext(ctx)

	cat := &Catalog{Peaks: make([]Peak, 0, len(in.Anchors))}
	for i := range in.Anchors {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.WrapCanceled("build catalog", err)
			}
		}

		a := &in.Anchors[i]
		linked := b.linked(in, a.ID)

		p := Peak{
			ID:       a.ID,
			Name:     a.Name,
			AltNames: b.altNames(a, linked),
			Height:   parseHeight(a.Height),
			Location: a.Location,
		}
		b.coordinates(&p, linked)

		if region, ok := b.overrides[a.ID]; ok {
			p.RegionID = region
			cat.Stats.RegionOverrides++
		} else if p.HasCoordinates() {
			p.RegionID, _ = b.regions.Assign(*p.Longitude, *p.Latitude)
		}

		cat.Stats.count(&p)
		cat.Peaks = append(cat.Peaks, p)
	}

	logger.Info().
		Int("peaks", cat.Stats.Peaks).
		Int("with_coordinates", cat.Stats.WithCoordinates).
		Int("with_region", cat.Stats.WithRegion).
		Msg("Built catalog")

	return cat, nil
}

// linkedPeak is a secondary record linked to an anchor peak.
type linkedPeak struct {
	peak sources.Peak
	link linkage.Link
}

func (b *Builder) linked(in Input, anchorID string) map[types.SourceID]linkedPeak {
	out := make(map[types.SourceID]linkedPeak, len(in.Links))
	for src, links := range in.Links {
		targetID, ok := links.Target(anchorID)
		if !ok {
			continue
		}
		peak, ok := in.Secondary[src].Get(targetID)
		if !ok {
			continue
		}
		out[src] = linkedPeak{peak: peak, link: links[anchorID]}
	}
	return out
}

// altNames collects every name variant of the anchor and its linked
// records, without duplicates or the primary name, sorted.
func (b *Builder) altNames(a *sources.Anchor, linked map[types.SourceID]linkedPeak) []string {
	set := make(map[string]struct{})
	for _, src := range b.authority.Ranked(FieldAltNames, types.ResourceTypePeak) {
		var fields []string
		if src == types.AnchorID {
			fields = []string{a.AltName}
		} else if lp, ok := linked[src]; ok {
			fields = lp.peak.NameFields()
		}
		for _, v := range names.Variants(fields...) {
			set[v] = struct{}{}
		}
	}
	delete(set, a.Name)

	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// coordinates takes the position of the most authoritative linked source
// that has one and cites every source that has one, in notes order.
func (b *Builder) coordinates(p *Peak, linked map[types.SourceID]linkedPeak) {
	notes := make(map[types.SourceID]string)
	for _, src := range b.authority.Ranked(FieldCoordinates, types.ResourceTypePeak) {
		lp, ok := linked[src]
		if !ok || lp.peak.Coordinates == nil {
			continue
		}
		c := lp.peak.Coordinates

		dmsLon, dmsLat := c.DMSLongitude, c.DMSLatitude
		if dmsLon == "" {
			dmsLon = DMS(c.Longitude, Longitude)
		}
		if dmsLat == "" {
			dmsLat = DMS(c.Latitude, Latitude)
		}

		reason := "cited"
		if !p.HasCoordinates() {
			p.Longitude, p.Latitude = ptr.To(c.Longitude), ptr.To(c.Latitude)
			p.Approximate = ptr.To(b.approximate[src])
			p.DMSLongitude, p.DMSLatitude = dmsLon, dmsLat
			reason = "selected"
		}

		notes[src] = fmt.Sprintf("%s: (%s, %s)", b.cite(src), dmsLat, dmsLon)

		b.tracker.Track(types.ResourceTypePeak, p.ID, FieldCoordinates, provenance.Provenance{
			Source:     src,
			Value:      Decimal(c.Latitude) + ", " + Decimal(c.Longitude),
			Authority:  b.priority(FieldCoordinates, src),
			Similarity: lp.link.Similarity,
			Reason:     reason,
		})
	}

	var lines []string
	for _, src := range b.authority.Ranked(FieldNotes, types.ResourceTypePeak) {
		if n, ok := notes[src]; ok {
			lines = append(lines, n)
		}
	}
	p.CoordinateNotes = strings.Join(lines, "\n")
}

func (b *Builder) cite(src types.SourceID) string {
	if c, ok := b.citations[src]; ok {
		return c
	}
	return src.String()
}

func (b *Builder) priority(field string, src types.SourceID) int {
	return b.authority.Priority(field, types.ResourceTypePeak, src)
}

// parseHeight reads a whole number of metres. Anything else is null.
func parseHeight(s string) *int {
	if s == "" {
		return nil
	}
	if h, err := strconv.Atoi(s); err == nil {
		return ptr.To(h)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	return ptr.To(int(f))
}

func (s *Stats) count(p *Peak) {
	s.Peaks++
	if p.HasCoordinates() {
		s.WithCoordinates++
		if p.Approximate != nil && *p.Approximate {
			s.Approximate++
		}
	}
	if p.RegionID != "" {
		s.WithRegion++
	}
}
