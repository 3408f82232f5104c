package regions

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// IntersectionArea returns the area of the intersection of two simple
// counter-clockwise rings.
//
// The boundary of the intersection is made of the pieces of a's edges that
// lie inside b, and the pieces of b's edges that lie strictly inside a.
// Pieces shared by both boundaries count once when both run the same way
// and not at all when they run opposite ways. Summing the shoelace terms of
// those pieces gives the area.
func IntersectionArea(a, b orb.Ring) float64 {
	if !a.Bound().Intersects(b.Bound()) {
		return 0
	}

	eps := tolerance(a, b)
	sum := boundaryPieces(a, b, eps, true) + boundaryPieces(b, a, eps, false)
	return math.Max(0, sum/2)
}

// boundaryPieces sums the shoelace terms of the pieces of ring's edges that
// lie inside other. Pieces on other's boundary count only when keepShared
// is set and both edges run the same way.
func boundaryPieces(ring, other orb.Ring, eps float64, keepShared bool) float64 {
	var sum float64
	for i := 0; i+1 < len(ring); i++ {
		p, q := ring[i], ring[i+1]
		ts := splitPoints(p, q, other, eps)
		for k := 0; k+1 < len(ts); k++ {
			if ts[k+1]-ts[k] <= 0 {
				continue
			}
			s, e := lerp(p, q, ts[k]), lerp(p, q, ts[k+1])
			mid := lerp(p, q, (ts[k]+ts[k+1])/2)

			switch dir, on := onBoundary(mid, other, eps); {
			case on:
				if !keepShared || dot(sub(q, p), dir) <= 0 {
					continue
				}
			case !planar.RingContains(other, mid):
				continue
			}
			sum += s[0]*e[1] - e[0]*s[1]
		}
	}
	return sum
}

// splitPoints returns the sorted parameters along p->q where it meets the
// edges of ring, including 0 and 1.
func splitPoints(p, q orb.Point, ring orb.Ring, eps float64) []float64 {
	r := sub(q, p)
	rr := dot(r, r)
	ts := []float64{0, 1}
	if rr == 0 {
		return ts
	}

	for j := 0; j+1 < len(ring); j++ {
		a, b := ring[j], ring[j+1]
		s := sub(b, a)
		qp := sub(a, p)
		denom := cross(r, s)

		if math.Abs(denom) > eps*eps {
			t := cross(qp, s) / denom
			u := cross(qp, r) / denom
			if t > 0 && t < 1 && u >= -eps && u <= 1+eps {
				ts = append(ts, t)
			}
			continue
		}

		// Parallel: split at the other segment's endpoints when collinear.
		if math.Abs(cross(qp, r)) > eps*math.Sqrt(rr) {
			continue
		}
		for _, v := range []orb.Point{a, b} {
			if t := dot(sub(v, p), r) / rr; t > 0 && t < 1 {
				ts = append(ts, t)
			}
		}
	}

	sort.Float64s(ts)
	return ts
}

// onBoundary reports whether pt lies on an edge of ring and returns that
// edge's direction.
func onBoundary(pt orb.Point, ring orb.Ring, eps float64) (orb.Point, bool) {
	for j := 0; j+1 < len(ring); j++ {
		a, b := ring[j], ring[j+1]
		s := sub(b, a)
		ss := dot(s, s)
		if ss == 0 {
			continue
		}
		t := dot(sub(pt, a), s) / ss
		if t < 0 || t > 1 {
			continue
		}
		if math.Abs(cross(sub(pt, a), s))/math.Sqrt(ss) <= eps {
			return s, true
		}
	}
	return orb.Point{}, false
}

// selfIntersection returns the first pair of edges of a closed ring that
// meet although they are not neighbours. Neighbouring edges that fold back
// over each other also count.
func selfIntersection(ring orb.Ring) (int, int, bool) {
	eps := tolerance(ring, ring)
	n := len(ring) - 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p1, p2, q1, q2 := ring[i], ring[i+1], ring[j], ring[j+1]
			if j == i+1 || (i == 0 && j == n-1) {
				if foldsBack(p1, p2, q1, q2, eps) {
					return i, j, true
				}
				continue
			}
			if segmentsMeet(p1, p2, q1, q2, eps) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// segmentsMeet reports whether segments p1-p2 and q1-q2 share a point.
func segmentsMeet(p1, p2, q1, q2 orb.Point, eps float64) bool {
	d1, d2 := side(p1, p2, q1, eps), side(p1, p2, q2, eps)
	d3, d4 := side(q1, q2, p1, eps), side(q1, q2, p2, eps)
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return (d1 == 0 && within(p1, p2, q1, eps)) ||
		(d2 == 0 && within(p1, p2, q2, eps)) ||
		(d3 == 0 && within(q1, q2, p1, eps)) ||
		(d4 == 0 && within(q1, q2, p2, eps))
}

// foldsBack reports whether two neighbouring edges are collinear and run in
// opposite directions, so they overlap along more than their shared vertex.
func foldsBack(p1, p2, q1, q2 orb.Point, eps float64) bool {
	if side(p1, p2, q1, eps) != 0 || side(p1, p2, q2, eps) != 0 {
		return false
	}
	return dot(sub(p2, p1), sub(q2, q1)) < 0
}

// side returns the sign of q relative to the line a->b, or 0 when q lies
// within eps of it.
func side(a, b, q orb.Point, eps float64) int {
	s := sub(b, a)
	l := math.Sqrt(dot(s, s))
	if l == 0 {
		return 0
	}
	c := cross(s, sub(q, a)) / l
	switch {
	case c > eps:
		return 1
	case c < -eps:
		return -1
	}
	return 0
}

// within reports whether q, known to be collinear with a-b, lies on it.
func within(a, b, q orb.Point, eps float64) bool {
	return q[0] >= math.Min(a[0], b[0])-eps && q[0] <= math.Max(a[0], b[0])+eps &&
		q[1] >= math.Min(a[1], b[1])-eps && q[1] <= math.Max(a[1], b[1])+eps
}

// tolerance scales a fixed relative epsilon to the coordinates in use.
func tolerance(a, b orb.Ring) float64 {
	bound := a.Bound().Union(b.Bound())
	scale := math.Max(
		math.Max(math.Abs(bound.Min[0]), math.Abs(bound.Max[0])),
		math.Max(math.Abs(bound.Min[1]), math.Abs(bound.Max[1])),
	)
	return 1e-12 * math.Max(scale, 1)
}

func lerp(p, q orb.Point, t float64) orb.Point {
	return orb.Point{p[0] + (q[0]-p[0])*t, p[1] + (q[1]-p[1])*t}
}

func sub(a, b orb.Point) orb.Point { return orb.Point{a[0] - b[0], a[1] - b[1]} }

func dot(a, b orb.Point) float64 { return a[0]*b[0] + a[1]*b[1] }

func cross(a, b orb.Point) float64 { return a[0]*b[1] - a[1]*b[0] }
