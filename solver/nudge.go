package solver

import (
	"orthoroute/core"
	"orthoroute/geometry"
)

// separateSharedCorridors applies strictly local ideal-spacing separation:
// when an interior segment of the freshly solved route runs along the exact
// corridor of an already-routed connection, the segment shifts perpendicular
// by IdealSpacing. Only the route being solved moves; cached routes of other
// connections are never touched, which is what keeps unrelated connectors
// stable. This is not the global nudging pass (see Options.
// NudgeOrthogonalSegments) — a shift is attempted once per segment and
// abandoned if the shifted corridor is occupied or collides.
func separateSharedCorridors(route core.Polyline, others []core.Polyline, obstacles []core.Rect, opts Options) core.Polyline {
	if len(route) < 4 {
		// No interior segments; endpoint stubs never move.
		return route
	}

	for i := 1; i+2 < len(route); i++ {
		a, b := route[i], route[i+1]
		if !corridorShared(a, b, others) {
			continue
		}

		for _, delta := range []float64{opts.IdealSpacing, -opts.IdealSpacing} {
			na, nb := shiftSegment(a, b, delta)
			if !shiftLegal(route, i, na, nb, others, obstacles) {
				continue
			}
			route[i], route[i+1] = na, nb
			break
		}
	}
	return route
}

func corridorShared(a, b core.Point, others []core.Polyline) bool {
	for _, o := range others {
		for j := 0; j+1 < len(o); j++ {
			if _, ok := geometry.SegmentsOverlap(a, b, o[j], o[j+1]); ok {
				return true
			}
		}
	}
	return false
}

// shiftSegment moves an axis-aligned segment perpendicular to its direction.
func shiftSegment(a, b core.Point, delta float64) (core.Point, core.Point) {
	if geometry.IsHorizontalSegment(a, b) {
		return core.Point{X: a.X, Y: a.Y + delta}, core.Point{X: b.X, Y: b.Y + delta}
	}
	return core.Point{X: a.X + delta, Y: a.Y}, core.Point{X: b.X + delta, Y: b.Y}
}

// shiftLegal checks that replacing segment i with na→nb keeps the route
// orthogonal and collision-free, and does not land in another occupied
// corridor.
func shiftLegal(route core.Polyline, i int, na, nb core.Point, others []core.Polyline, obstacles []core.Rect) bool {
	// The stretched neighbor segments plus the shifted segment itself.
	candidate := core.Polyline{route[i-1], na, nb, route[i+2]}
	if !geometry.IsOrthogonal(candidate) {
		return false
	}
	for _, r := range obstacles {
		if geometry.PolylineIntersectsRect(candidate, r) {
			return false
		}
	}
	if corridorShared(na, nb, others) {
		return false
	}
	return true
}
