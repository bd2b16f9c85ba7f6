package routing

import (
	"orthoroute/core"
	"orthoroute/geometry"
)

// fallbackPath produces the deterministic 4-point L-shape used when the
// solver yields no usable route: horizontal-then-vertical through the
// midpoint when the preferred source direction is horizontal, the transpose
// otherwise. The result always renders and its endpoints exactly equal the
// requested points; it may cross an obstacle, which the collision validator
// reports.
func fallbackPath(src, dst core.Point, preferred core.Direction) core.Polyline {
	return geometry.MidpointLPath(src, dst, preferred.Horizontal())
}
