// Package core contains the fundamental types used throughout the orthoroute
// connector routing engine.
package core

import "math"

// Point represents a 2D coordinate in canvas space.
type Point struct {
	X, Y float64
}

// Direction represents a cardinal direction. A connector pin always carries
// one of the four cardinals; there is no "any side" wildcard, because an
// ambiguous pin direction lets a route cut through the node body.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// Opposite returns the opposite direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Horizontal reports whether the direction points along the X axis.
func (d Direction) Horizontal() bool {
	return d == East || d == West
}

// Vector returns the unit step for the direction in canvas space
// (Y grows downward).
func (d Direction) Vector() Point {
	switch d {
	case North:
		return Point{0, -1}
	case East:
		return Point{1, 0}
	case South:
		return Point{0, 1}
	default:
		return Point{-1, 0}
	}
}

// Rect represents an axis-aligned rectangle: top-left corner plus dimensions.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains checks if a point is strictly inside the rectangle.
// Boundary points are not contained; pin stubs sit on the boundary.
func (r Rect) Contains(p Point) bool {
	return p.X > r.X && p.X < r.X+r.W &&
		p.Y > r.Y && p.Y < r.Y+r.H
}

// Intersects checks if two rectangles overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() &&
		r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Inflate returns the rectangle grown by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Equal reports whether two rectangles are equal within a small tolerance.
func (r Rect) Equal(o Rect) bool {
	const eps = 1e-9
	return math.Abs(r.X-o.X) < eps && math.Abs(r.Y-o.Y) < eps &&
		math.Abs(r.W-o.W) < eps && math.Abs(r.H-o.H) < eps
}

// Polyline represents a route through the canvas as a point sequence.
type Polyline []Point

// Length returns the number of points in the polyline.
func (p Polyline) Length() int {
	return len(p)
}

// IsEmpty returns true if the polyline has no points.
func (p Polyline) IsEmpty() bool {
	return len(p) == 0
}

// Equal reports pointwise equality of two polylines.
func (p Polyline) Equal(o Polyline) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy backed by a fresh array.
func (p Polyline) Clone() Polyline {
	if p == nil {
		return nil
	}
	out := make(Polyline, len(p))
	copy(out, p)
	return out
}

// RouteStatus classifies the health of a computed route.
type RouteStatus int

const (
	// StatusOK means the solver produced a collision-free route.
	StatusOK RouteStatus = iota
	// StatusDegraded means the solver produced no usable route but the
	// fallback path is collision-free.
	StatusDegraded
	// StatusError means the path collides with an obstacle or came from a
	// failed solve.
	StatusError
)

// String returns the string representation of a RouteStatus.
func (s RouteStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// RouteResult is the per-connector output of a routing pass: the polyline to
// draw, a health status, and a human-readable message for the warning badge.
type RouteResult struct {
	Polyline Polyline
	Status   RouteStatus
	Message  string
}
