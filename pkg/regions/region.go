// Package regions assigns points to named mountain regions.
//
// Regions are simple polygons. When a larger region is almost entirely
// covered by a smaller one nested inside it, the larger region is shadowed:
// it is kept for reporting but never returned by Assign, so a point inside
// both resolves to the nested region.
package regions

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/agentstation/peakmap/pkg/errors"
)

// Region is a named polygon.
type Region struct {
	ID string `json:"id" yaml:"id"`

	// Boundary is closed and counter-clockwise.
	Boundary orb.Ring  `json:"-" yaml:"-"`
	Bound    orb.Bound `json:"-" yaml:"-"`
	Area     float64   `json:"area" yaml:"area"`

	// ParentID is the smallest larger region this region nests in.
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	// Shadowed regions are never assignment results.
	Shadowed bool `json:"shadowed" yaml:"shadowed"`

	// Hint is the parent named by the input, if any.
	Hint string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// NewRegion validates ring and returns a Region with a closed,
// counter-clockwise boundary. The ring needs at least three distinct
// vertices and a non-zero area, and must not intersect itself.
func NewRegion(id string, ring orb.Ring) (Region, error) {
	if id == "" {
		return Region{}, &errors.ValidationError{Field: "id", Message: "region id is empty"}
	}

	distinct := make(map[orb.Point]bool, len(ring))
	for _, p := range ring {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return Region{}, errors.NewGeometryError(id, "boundary has a non-finite coordinate")
		}
		distinct[p] = true
	}
	if len(distinct) < 3 {
		return Region{}, errors.NewGeometryError(id, fmt.Sprintf("boundary has %d distinct vertices", len(distinct)))
	}

	b := make(orb.Ring, 0, len(ring)+1)
	for _, p := range ring {
		if len(b) == 0 || b[len(b)-1] != p {
			b = append(b, p)
		}
	}
	if !b.Closed() {
		b = append(b, b[0])
	}

	switch b.Orientation() {
	case orb.CW:
		b.Reverse()
	case orb.CCW:
	default:
		return Region{}, errors.NewGeometryError(id, "boundary has zero area")
	}

	area := math.Abs(planar.Area(b))
	if area == 0 {
		return Region{}, errors.NewGeometryError(id, "boundary has zero area")
	}
	if i, j, ok := selfIntersection(b); ok {
		return Region{}, errors.NewGeometryError(id,
			fmt.Sprintf("boundary intersects itself between edges %d and %d", i, j))
	}

	return Region{
		ID:       id,
		Boundary: b,
		Bound:    b.Bound(),
		Area:     area,
	}, nil
}

// Contains reports whether the point lies strictly inside the region.
// Points on the boundary belong to no region.
func (r *Region) Contains(p orb.Point) bool {
	if !r.Bound.Contains(p) {
		return false
	}
	if _, edge := onBoundary(p, r.Boundary, tolerance(r.Boundary, r.Boundary)); edge {
		return false
	}
	return planar.RingContains(r.Boundary, p)
}
