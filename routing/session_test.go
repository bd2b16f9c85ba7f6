package routing

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orthoroute/core"
	"orthoroute/solver"
)

func TestManager_SameOptionsShareSession(t *testing.T) {
	m := NewManager(slog.Default())

	a := m.GetOrCreate(solver.DefaultOptions)
	b := m.GetOrCreate(solver.DefaultOptions)
	require.Same(t, a, b, "one session per configuration version")
	assert.Equal(t, solver.DefaultOptions.Version(), a.Version())
	assert.NotEmpty(t, a.ID())
}

func TestManager_VersionBumpRetiresOldSession(t *testing.T) {
	m := NewManager(nil)
	old := m.GetOrCreate(solver.DefaultOptions)
	require.False(t, old.Stale())

	changed := solver.DefaultOptions
	changed.CrossingPenalty *= 2
	fresh := m.GetOrCreate(changed)

	require.NotSame(t, old, fresh)
	assert.True(t, old.Stale())
	assert.False(t, fresh.Stale())
}

func TestRegisterOrMove_CreatesThenMovesInPlace(t *testing.T) {
	s := NewSession(solver.DefaultOptions, nil)

	require.NoError(t, s.RegisterOrMove("n", core.Rect{X: 0, Y: 0, W: 50, H: 50}))
	require.Equal(t, 1, s.ObstacleCount())

	require.NoError(t, s.RegisterOrMove("n", core.Rect{X: 10, Y: 10, W: 50, H: 50}))
	require.Equal(t, 1, s.ObstacleCount(), "move must reuse the existing handle")

	r, ok := s.ObstacleRect("n")
	require.True(t, ok)
	assert.True(t, r.Equal(core.Rect{X: 10, Y: 10, W: 50, H: 50}))
}

func TestRegisterOrMove_FailedHandleUpdateIsSkippedNotFatal(t *testing.T) {
	s := NewSession(solver.DefaultOptions, nil)
	require.NoError(t, s.RegisterOrMove("n", core.Rect{X: 0, Y: 0, W: 50, H: 50}))

	// A degenerate rect makes the solver reject the in-place move; the
	// registry keeps the stale handle and carries on.
	require.NoError(t, s.RegisterOrMove("n", core.Rect{X: 0, Y: 0, W: 0, H: 0}))

	r, ok := s.ObstacleRect("n")
	require.True(t, ok)
	assert.True(t, r.Equal(core.Rect{X: 0, Y: 0, W: 50, H: 50}),
		"stale rect kept after failed move")
}

func TestApplyMoves_InvalidatesOnlyAttachedConnectors(t *testing.T) {
	s := NewSession(solver.DefaultOptions, nil)
	for id, r := range map[string]core.Rect{
		"a": {X: 0, Y: 0, W: 96, H: 96},
		"b": {X: 300, Y: 0, W: 96, H: 96},
		"c": {X: 0, Y: 300, W: 96, H: 96},
		"d": {X: 300, Y: 300, W: 96, H: 96},
	} {
		require.NoError(t, s.RegisterOrMove(id, r))
	}

	_, err := s.RoutePass(context.Background(), []ConnectorSpec{
		{ID: "ab", SourceNodeID: "a", TargetNodeID: "b"},
		{ID: "cd", SourceNodeID: "c", TargetNodeID: "d"},
	})
	require.NoError(t, err)

	s.ApplyMoves([]ObstacleMove{{NodeID: "a", Rect: core.Rect{X: 5, Y: 5, W: 96, H: 96}}})

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.True(t, s.conns["ab"].isNew, "connector on the moved node re-polls")
	assert.False(t, s.conns["cd"].isNew, "unrelated connector keeps its cache")
}

func TestPolyline_ReadIsSafeAnytime(t *testing.T) {
	s := NewSession(solver.DefaultOptions, nil)
	require.NoError(t, s.RegisterOrMove("a", core.Rect{X: 0, Y: 0, W: 96, H: 96}))
	require.NoError(t, s.RegisterOrMove("b", core.Rect{X: 300, Y: 0, W: 96, H: 96}))

	_, err := s.Polyline("ab")
	require.ErrorIs(t, err, ErrUnknownConnector)

	_, err = s.RoutePass(context.Background(), []ConnectorSpec{
		{ID: "ab", SourceNodeID: "a", TargetNodeID: "b"},
	})
	require.NoError(t, err)

	pl, err := s.Polyline("ab")
	require.NoError(t, err)
	assert.True(t, pl.Equal(core.Polyline{{X: 96, Y: 48}, {X: 300, Y: 48}}))
}

func TestClassify(t *testing.T) {
	s := NewSession(solver.DefaultOptions, nil)
	require.NoError(t, s.RegisterOrMove("block", core.Rect{X: 40, Y: 40, W: 20, H: 20}))

	status, _ := s.classify(core.Polyline{{X: 0, Y: 50}, {X: 100, Y: 50}}, nil)
	assert.Equal(t, core.StatusError, status, "path through the obstacle")

	status, msg := s.classify(core.Polyline{{X: 0, Y: 50}, {X: 100, Y: 50}}, map[string]bool{"block": true})
	assert.Equal(t, core.StatusOK, status, "excluded endpoint nodes do not count: %s", msg)

	status, _ = s.classify(core.Polyline{{X: 0, Y: 0}, {X: 100, Y: 0}}, nil)
	assert.Equal(t, core.StatusOK, status, "clear path")

	status, _ = s.classify(core.Polyline{{X: 0, Y: 0}}, nil)
	assert.Equal(t, core.StatusError, status, "single point is not renderable")
}

func TestFallbackPath(t *testing.T) {
	src := core.Point{X: 0, Y: 0}
	dst := core.Point{X: 100, Y: 60}

	h := fallbackPath(src, dst, core.East)
	require.Len(t, h, 4)
	assert.Equal(t, src, h[0])
	assert.Equal(t, dst, h[3])
	assert.Equal(t, core.Point{X: 50, Y: 0}, h[1], "horizontal preference turns at the X midpoint")

	v := fallbackPath(src, dst, core.South)
	assert.Equal(t, core.Point{X: 0, Y: 30}, v[1], "vertical preference turns at the Y midpoint")
}
