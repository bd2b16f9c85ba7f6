package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orthoroute/core"
	"orthoroute/solver"
)

func TestResolveDirection(t *testing.T) {
	at := func(x, y float64) core.Rect {
		return core.Rect{X: x, Y: y, W: 96, H: 96}
	}

	tests := []struct {
		name string
		src  core.Rect
		dst  core.Rect
		want core.Direction
	}{
		{"target to the east", at(0, 0), at(300, 0), core.East},
		{"target to the west", at(300, 0), at(0, 0), core.West},
		{"target below", at(0, 0), at(0, 300), core.South},
		{"target above", at(0, 300), at(0, 0), core.North},
		{"diagonal tie goes horizontal", at(0, 0), at(200, 200), core.East},
		{"diagonal tie westward", at(200, 200), at(0, 0), core.West},
		{"exact overlap defaults rightward", at(50, 50), at(50, 50), core.East},
		{"mostly vertical", at(0, 0), at(50, 300), core.South},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDirection(tt.src, tt.dst, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveDirection_PreferredWins(t *testing.T) {
	north := core.North
	src := core.Rect{X: 0, Y: 0, W: 96, H: 96}
	dst := core.Rect{X: 300, Y: 0, W: 96, H: 96}
	assert.Equal(t, core.North, ResolveDirection(src, dst, &north))
}

func TestPortPlan_GroupsOrderedByConnectorID(t *testing.T) {
	s := NewSession(solver.DefaultOptions, nil)
	require.NoError(t, s.RegisterOrMove("t", core.Rect{X: 300, Y: 0, W: 96, H: 96}))
	require.NoError(t, s.RegisterOrMove("s1", core.Rect{X: 0, Y: 0, W: 96, H: 96}))
	require.NoError(t, s.RegisterOrMove("s2", core.Rect{X: 0, Y: 40, W: 96, H: 96}))

	// Deliberately registered out of id order.
	specs := []ConnectorSpec{
		{ID: "z-conn", SourceNodeID: "s2", TargetNodeID: "t"},
		{ID: "a-conn", SourceNodeID: "s1", TargetNodeID: "t"},
	}

	plan, failed := s.buildPortPlan(specs)
	require.Empty(t, failed)

	group := plan.groups[portKey{"t", core.West}]
	require.Equal(t, []string{"a-conn", "z-conn"}, group,
		"groups must order by connector id, not arrival order")
}

func TestPortPlan_OffsetSymmetry(t *testing.T) {
	plan := &portPlan{groups: portGroups{
		{"t", core.West}: {"c1", "c2", "c3", "c4"},
	}}
	key := portKey{"t", core.West}

	offsets := []float64{
		plan.offsetFor(key, "c1", 10),
		plan.offsetFor(key, "c2", 10),
		plan.offsetFor(key, "c3", 10),
		plan.offsetFor(key, "c4", 10),
	}
	assert.Equal(t, []float64{-15, -5, 5, 15}, offsets,
		"even group sizes straddle the center symmetrically")

	var sum float64
	for _, o := range offsets {
		sum += o
	}
	assert.Zero(t, sum)
}

func TestPortPlan_MissingConnectorGetsZeroOffset(t *testing.T) {
	plan := &portPlan{groups: portGroups{
		{"t", core.West}: {"c1", "c2"},
	}}
	assert.Zero(t, plan.offsetFor(portKey{"t", core.West}, "not-there", 10))
	assert.Zero(t, plan.offsetFor(portKey{"t", core.East}, "c1", 10))
}

func TestPinOffsets(t *testing.T) {
	r := core.Rect{X: 0, Y: 0, W: 100, H: 100}

	relX, relY := pinOffsets(r, core.East, 0)
	assert.Equal(t, 1.0, relX)
	assert.Equal(t, 0.5, relY)

	_, relY = pinOffsets(r, core.West, 20)
	assert.Equal(t, 0.7, relY)

	relX, relY = pinOffsets(r, core.North, -10)
	assert.Equal(t, 0.4, relX)
	assert.Equal(t, 0.0, relY)

	// Offsets beyond the edge clamp away from the corners.
	_, relY = pinOffsets(r, core.East, 1000)
	assert.Equal(t, 0.95, relY)
	_, relY = pinOffsets(r, core.East, -1000)
	assert.Equal(t, 0.05, relY)
}

func TestPinFor_CachesByKey(t *testing.T) {
	s := NewSession(solver.DefaultOptions, nil)
	require.NoError(t, s.RegisterOrMove("n", core.Rect{X: 0, Y: 0, W: 96, H: 96}))

	p1, err := s.pinFor("n", core.East, 0)
	require.NoError(t, err)
	p2, err := s.pinFor("n", core.East, 0)
	require.NoError(t, err)
	require.Same(t, p1, p2, "identical pin keys must reuse the cached pin")

	p3, err := s.pinFor("n", core.East, 12)
	require.NoError(t, err)
	require.NotSame(t, p1, p3, "different sibling offsets are different pins")

	_, err = s.pinFor("ghost", core.East, 0)
	require.ErrorIs(t, err, ErrUnknownNode)
}
