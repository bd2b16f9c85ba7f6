package solver

import (
	"testing"

	"orthoroute/core"
)

func TestSeparateSharedCorridors_ShiftsOverlappingInteriorSegment(t *testing.T) {
	opts := DefaultOptions
	opts.IdealSpacing = 8

	// Route with an interior horizontal segment along y=50.
	route := core.Polyline{{X: 0, Y: 0}, {X: 0, Y: 50}, {X: 100, Y: 50}, {X: 100, Y: 100}}
	// Another connection already occupies the y=50 corridor.
	other := core.Polyline{{X: -20, Y: 50}, {X: 120, Y: 50}}

	out := separateSharedCorridors(route, []core.Polyline{other}, nil, opts)

	if out[1].Y == 50 || out[2].Y == 50 {
		t.Errorf("shared segment should have shifted off y=50: %v", out)
	}
	if out[1].Y != out[2].Y {
		t.Errorf("shifted segment must stay horizontal: %v", out)
	}
	if out[0] != (core.Point{X: 0, Y: 0}) || out[3] != (core.Point{X: 100, Y: 100}) {
		t.Errorf("endpoints must not move: %v", out)
	}
	if d := out[1].Y - 50; d != 8 && d != -8 {
		t.Errorf("shift should be exactly IdealSpacing, got %v", d)
	}
}

func TestSeparateSharedCorridors_NoShiftWithoutOverlap(t *testing.T) {
	opts := DefaultOptions

	route := core.Polyline{{X: 0, Y: 0}, {X: 0, Y: 50}, {X: 100, Y: 50}, {X: 100, Y: 100}}
	other := core.Polyline{{X: -20, Y: 80}, {X: 120, Y: 80}}

	out := separateSharedCorridors(route.Clone(), []core.Polyline{other}, nil, opts)
	if !out.Equal(route) {
		t.Errorf("route without corridor overlap should be untouched: %v", out)
	}
}

func TestSeparateSharedCorridors_SkipsWhenShiftCollides(t *testing.T) {
	opts := DefaultOptions
	opts.IdealSpacing = 8

	route := core.Polyline{{X: 0, Y: 0}, {X: 0, Y: 50}, {X: 100, Y: 50}, {X: 100, Y: 100}}
	other := core.Polyline{{X: -20, Y: 50}, {X: 120, Y: 50}}

	// Obstacles hem the corridor in on both sides.
	obstacles := []core.Rect{
		{X: 10, Y: 40, W: 80, H: 9}, // just above
		{X: 10, Y: 51, W: 80, H: 9}, // just below
	}

	out := separateSharedCorridors(route.Clone(), []core.Polyline{other}, obstacles, opts)
	if out[1].Y != 50 {
		t.Errorf("blocked shift should leave the segment in place: %v", out)
	}
}

func TestSeparateSharedCorridors_TwoPointRouteUntouched(t *testing.T) {
	route := core.Polyline{{X: 0, Y: 0}, {X: 100, Y: 0}}
	other := core.Polyline{{X: -20, Y: 0}, {X: 120, Y: 0}}

	out := separateSharedCorridors(route.Clone(), []core.Polyline{other}, nil, DefaultOptions)
	if !out.Equal(route) {
		t.Errorf("straight route has no interior segment to shift: %v", out)
	}
}
