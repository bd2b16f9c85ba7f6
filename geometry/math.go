// Package geometry provides pure math helpers for orthogonal connector
// routing: segment/rectangle intersection, polyline simplification, and the
// deterministic L-shape used as a fallback path.
package geometry

import (
	"math"

	"orthoroute/core"
)

// Abs returns the absolute value of a float.
func Abs(x float64) float64 {
	return math.Abs(x)
}

// ManhattanDistance calculates the Manhattan distance between two points.
func ManhattanDistance(a, b core.Point) float64 {
	return math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y)
}

// IsHorizontalSegment reports whether the segment a→b runs along the X axis.
func IsHorizontalSegment(a, b core.Point) bool {
	return a.Y == b.Y
}

// IsVerticalSegment reports whether the segment a→b runs along the Y axis.
func IsVerticalSegment(a, b core.Point) bool {
	return a.X == b.X
}

// SegmentIntersectsRect reports whether the axis-aligned segment a→b passes
// through the interior of r. Touching the boundary does not count: pin stubs
// legitimately start on a node edge.
func SegmentIntersectsRect(a, b core.Point, r core.Rect) bool {
	const eps = 1e-9

	switch {
	case IsHorizontalSegment(a, b):
		if a.Y <= r.Top()+eps || a.Y >= r.Bottom()-eps {
			return false
		}
		lo, hi := math.Min(a.X, b.X), math.Max(a.X, b.X)
		return lo < r.Right()-eps && hi > r.Left()+eps
	case IsVerticalSegment(a, b):
		if a.X <= r.Left()+eps || a.X >= r.Right()-eps {
			return false
		}
		lo, hi := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
		return lo < r.Bottom()-eps && hi > r.Top()+eps
	default:
		// Non-orthogonal segment: clip against the rect with the
		// Liang-Barsky bounds check on both axes.
		return clippedSegmentOverlaps(a, b, r)
	}
}

// clippedSegmentOverlaps handles the rare diagonal segment (fallback paths are
// always orthogonal, but caller-supplied polylines may not be).
func clippedSegmentOverlaps(a, b core.Point, r core.Rect) bool {
	t0, t1 := 0.0, 1.0
	dx, dy := b.X-a.X, b.Y-a.Y

	clip := func(p, q float64) bool {
		if p == 0 {
			return q > 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	if !clip(-dx, a.X-r.Left()) || !clip(dx, r.Right()-a.X) {
		return false
	}
	if !clip(-dy, a.Y-r.Top()) || !clip(dy, r.Bottom()-a.Y) {
		return false
	}
	return t1-t0 > 1e-9
}

// PolylineIntersectsRect reports whether any segment of the polyline crosses
// the interior of r.
func PolylineIntersectsRect(pl core.Polyline, r core.Rect) bool {
	for i := 0; i+1 < len(pl); i++ {
		if SegmentIntersectsRect(pl[i], pl[i+1], r) {
			return true
		}
	}
	return false
}

// Simplify removes collinear interior points from a polyline, so a route that
// passes straight through several grid coordinates collapses to its corners.
func Simplify(pl core.Polyline) core.Polyline {
	if len(pl) <= 2 {
		return pl
	}

	out := make(core.Polyline, 0, len(pl))
	out = append(out, pl[0])
	for i := 1; i+1 < len(pl); i++ {
		if !collinear(out[len(out)-1], pl[i], pl[i+1]) {
			out = append(out, pl[i])
		}
	}
	out = append(out, pl[len(pl)-1])
	return out
}

func collinear(a, b, c core.Point) bool {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	return math.Abs(cross) < 1e-9
}

// IsOrthogonal reports whether every segment of the polyline is axis-aligned.
func IsOrthogonal(pl core.Polyline) bool {
	for i := 0; i+1 < len(pl); i++ {
		if !IsHorizontalSegment(pl[i], pl[i+1]) && !IsVerticalSegment(pl[i], pl[i+1]) {
			return false
		}
	}
	return true
}

// MidpointLPath builds the deterministic 4-point fallback shape between two
// points. With horizontalFirst the route runs horizontally to the X midpoint,
// turns, and finishes vertically; otherwise the axes swap. Degenerate inputs
// still produce a polyline whose endpoints exactly equal src and tgt.
func MidpointLPath(src, tgt core.Point, horizontalFirst bool) core.Polyline {
	if horizontalFirst {
		midX := (src.X + tgt.X) / 2
		return core.Polyline{
			src,
			{X: midX, Y: src.Y},
			{X: midX, Y: tgt.Y},
			tgt,
		}
	}
	midY := (src.Y + tgt.Y) / 2
	return core.Polyline{
		src,
		{X: src.X, Y: midY},
		{X: tgt.X, Y: midY},
		tgt,
	}
}

// PathLength returns the total Manhattan length of a polyline.
func PathLength(pl core.Polyline) float64 {
	var total float64
	for i := 0; i+1 < len(pl); i++ {
		total += ManhattanDistance(pl[i], pl[i+1])
	}
	return total
}

// Midpoint returns the midpoint of the polyline by arc length, used to place
// the warning badge for degraded connectors.
func Midpoint(pl core.Polyline) core.Point {
	if len(pl) == 0 {
		return core.Point{}
	}
	if len(pl) == 1 {
		return pl[0]
	}

	half := PathLength(pl) / 2
	var walked float64
	for i := 0; i+1 < len(pl); i++ {
		seg := ManhattanDistance(pl[i], pl[i+1])
		if walked+seg >= half && seg > 0 {
			t := (half - walked) / seg
			return core.Point{
				X: pl[i].X + (pl[i+1].X-pl[i].X)*t,
				Y: pl[i].Y + (pl[i+1].Y-pl[i].Y)*t,
			}
		}
		walked += seg
	}
	return pl[len(pl)-1]
}

// SegmentsOverlap reports whether two collinear axis-aligned segments share
// more than a single point, and returns the overlapping extent.
func SegmentsOverlap(a1, a2, b1, b2 core.Point) (float64, bool) {
	if IsHorizontalSegment(a1, a2) && IsHorizontalSegment(b1, b2) && a1.Y == b1.Y {
		lo := math.Max(math.Min(a1.X, a2.X), math.Min(b1.X, b2.X))
		hi := math.Min(math.Max(a1.X, a2.X), math.Max(b1.X, b2.X))
		if hi-lo > 1e-9 {
			return hi - lo, true
		}
	}
	if IsVerticalSegment(a1, a2) && IsVerticalSegment(b1, b2) && a1.X == b1.X {
		lo := math.Max(math.Min(a1.Y, a2.Y), math.Min(b1.Y, b2.Y))
		hi := math.Min(math.Max(a1.Y, a2.Y), math.Max(b1.Y, b2.Y))
		if hi-lo > 1e-9 {
			return hi - lo, true
		}
	}
	return 0, false
}

// SegmentsCross reports whether two axis-aligned segments cross at a single
// interior point (a perpendicular crossing, not a shared corridor).
func SegmentsCross(a1, a2, b1, b2 core.Point) bool {
	if IsHorizontalSegment(a1, a2) && IsVerticalSegment(b1, b2) {
		return perpendicularCross(a1, a2, b1, b2)
	}
	if IsVerticalSegment(a1, a2) && IsHorizontalSegment(b1, b2) {
		return perpendicularCross(b1, b2, a1, a2)
	}
	return false
}

// perpendicularCross: h is horizontal, v is vertical.
func perpendicularCross(h1, h2, v1, v2 core.Point) bool {
	const eps = 1e-9
	loX, hiX := math.Min(h1.X, h2.X), math.Max(h1.X, h2.X)
	loY, hiY := math.Min(v1.Y, v2.Y), math.Max(v1.Y, v2.Y)
	return v1.X > loX+eps && v1.X < hiX-eps &&
		h1.Y > loY+eps && h1.Y < hiY-eps
}
