package regions

import (
	"bytes"
	"context"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/agentstation/peakmap/pkg/constants"
	"github.com/agentstation/peakmap/pkg/errors"
	"github.com/agentstation/peakmap/pkg/logging"
)

// Set is an immutable, ordered collection of regions ready for
// assignment.
type Set struct {
	regions []Region
	byID    map[string]int
}

// New orders regions by id and computes which of them are shadowed. A
// region is shadowed when a smaller region overlaps it by more than
// constants.ShadowRatio of the smaller region's area.
func New(ctx context.Context, regions []Region) (*Set, error) {
	logger := logging.FromContext(ctx)

	rs := make([]Region, len(regions))
	copy(rs, regions)
	sort.Slice(rs, func(i, j int) bool {
		return bytes.Compare([]byte(rs[i].ID), []byte(rs[j].ID)) < 0
	})

	byID := make(map[string]int, len(rs))
	for i := range rs {
		if _, dup := byID[rs[i].ID]; dup {
			return nil, &errors.ValidationError{Field: "id", Value: rs[i].ID, Message: "duplicate region id"}
		}
		byID[rs[i].ID] = i
		rs[i].ParentID = ""
		rs[i].Shadowed = false
	}

	idx := make([]int, len(rs))
	for i := range idx {
		idx[i] = i
	}
	parents := iter.Map(idx, func(child *int) []int {
		if ctx.Err() != nil {
			return nil
		}
		return coveringParents(rs, *child)
	})
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapCanceled("compute region shadows", err)
	}

	for child, ps := range parents {
		for _, p := range ps {
			rs[p].Shadowed = true
		}
		if len(ps) > 0 {
			rs[child].ParentID = rs[smallest(rs, ps)].ID
		}
	}

	for i := range rs {
		checkHint(logger, rs, byID, i)
	}

	shadowed := 0
	for i := range rs {
		if rs[i].Shadowed {
			shadowed++
		}
	}
	logger.Debug().
		Int("regions", len(rs)).
		Int("shadowed", shadowed).
		Msg("Computed region shadows")

	return &Set{regions: rs, byID: byID}, nil
}

// coveringParents returns the indexes of the larger regions that child
// almost entirely overlaps.
func coveringParents(rs []Region, child int) []int {
	c := &rs[child]
	var out []int
	for j := range rs {
		p := &rs[j]
		if j == child || p.Area <= c.Area || !p.Bound.Intersects(c.Bound) {
			continue
		}
		if IntersectionArea(p.Boundary, c.Boundary)/c.Area > constants.ShadowRatio {
			out = append(out, j)
		}
	}
	return out
}

// smallest returns the index of the region with the least area, ties broken
// by the lower index, which is the lower id.
func smallest(rs []Region, idx []int) int {
	best := idx[0]
	for _, i := range idx[1:] {
		if rs[i].Area < rs[best].Area || (rs[i].Area == rs[best].Area && i < best) {
			best = i
		}
	}
	return best
}

// checkHint logs when an input parent hint disagrees with the computed
// nesting. Hints never change the result.
func checkHint(logger *zerolog.Logger, rs []Region, byID map[string]int, i int) {
	r := &rs[i]
	if r.Hint == "" || r.Hint == r.ParentID {
		return
	}
	event := logger.Warn().
		Str("region", r.ID).
		Str("hint", r.Hint).
		Str("computed_parent", r.ParentID)
	if _, ok := byID[r.Hint]; !ok {
		event.Msg("Parent hint names an unknown region")
		return
	}
	event.Msg("Parent hint disagrees with computed overlap")
}

// Assign returns the id of the first non-shadowed region, in id order, that
// contains the point.
func (s *Set) Assign(lon, lat float64) (string, bool) {
	if s == nil {
		return "", false
	}
	p := orb.Point{lon, lat}
	for i := range s.regions {
		r := &s.regions[i]
		if r.Shadowed {
			continue
		}
		if r.Contains(p) {
			return r.ID, true
		}
	}
	return "", false
}

// Get returns the region with the given id.
func (s *Set) Get(id string) (Region, bool) {
	if s == nil {
		return Region{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return Region{}, false
	}
	return s.regions[i], true
}

// Regions returns the regions in id order.
func (s *Set) Regions() []Region {
	if s == nil {
		return nil
	}
	out := make([]Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// Len returns the number of regions.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.regions)
}

// TableHeader is the column list of the region table.
var TableHeader = []string{"region_id", "parent_region_id", "shadowed", "area"}

// Table returns one row per region in id order.
func (s *Set) Table() [][]string {
	rows := make([][]string, 0, s.Len())
	for _, r := range s.Regions() {
		shadowed := "N"
		if r.Shadowed {
			shadowed = "Y"
		}
		rows = append(rows, []string{
			r.ID,
			r.ParentID,
			shadowed,
			strconv.FormatFloat(r.Area, 'f', constants.DecimalPlaces, 64),
		})
	}
	return rows
}
