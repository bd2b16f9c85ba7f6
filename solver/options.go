package solver

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// Options contains every tunable solver parameter. All options are applied
// exactly once when an engine is created; nothing is re-applied mid-session,
// because re-applying nudging settings mid-flight reshuffles routes globally
// even for connectors that did not change.
type Options struct {
	// BufferDistance is the clearance kept between routes and obstacle
	// boundaries. Pin stubs exit perpendicular to the node edge by this
	// distance before the route enters the grid.
	BufferDistance float64
	// IdealSpacing is the perpendicular separation applied between sibling
	// pins on a shared node side, and between routes that share a corridor.
	// This is strictly local separation, not a global nudging pass.
	IdealSpacing float64
	// BendPenalty is the cost added for each 90-degree turn.
	BendPenalty float64
	// CrossingPenalty is the cost added when a candidate segment crosses an
	// already-routed connector.
	CrossingPenalty float64
	// SharedPathPenalty is the cost added when a candidate segment runs
	// along the same corridor as an already-routed connector.
	SharedPathPenalty float64
	// HateCrossings doubles the crossing penalty.
	HateCrossings bool

	// NudgeOrthogonalSegments enables the global segment redistribution
	// pass. Disabled by default: redistributing parallel segments moves
	// routes whose own geometry did not change.
	NudgeOrthogonalSegments bool
	// NudgeSharedPathsWithCommonEnd enables redistribution of shared paths
	// that end on the same pin. Disabled by default for the same reason.
	NudgeSharedPathsWithCommonEnd bool
}

// DefaultOptions is the default solver configuration.
var DefaultOptions = Options{
	BufferDistance:    10,
	IdealSpacing:      12,
	BendPenalty:       40,
	CrossingPenalty:   60,
	SharedPathPenalty: 30,
	HateCrossings:     false,
}

// Version returns a stable hash of the option set. A routing session is keyed
// by this value: any change to the options produces a fresh session rather
// than re-applying parameters to a live engine.
func (o Options) Version() uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8)

	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
		h.Write(buf)
	}
	writeBool := func(b bool) {
		if b {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}

	writeFloat(o.BufferDistance)
	writeFloat(o.IdealSpacing)
	writeFloat(o.BendPenalty)
	writeFloat(o.CrossingPenalty)
	writeFloat(o.SharedPathPenalty)
	writeBool(o.HateCrossings)
	writeBool(o.NudgeOrthogonalSegments)
	writeBool(o.NudgeSharedPathsWithCommonEnd)

	return h.Sum64()
}

// effectiveCrossingPenalty folds HateCrossings into the crossing cost.
func (o Options) effectiveCrossingPenalty() float64 {
	if o.HateCrossings {
		return o.CrossingPenalty * 2
	}
	return o.CrossingPenalty
}
