package routing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orthoroute/core"
)

func TestCoordinator_ReleasesWhenAllReported(t *testing.T) {
	c := NewCoordinator(time.Second)
	c.Begin(2)

	assert.False(t, c.Complete())
	c.Report("a", core.Polyline{{X: 0, Y: 0}, {X: 1, Y: 0}})
	assert.False(t, c.Complete())
	c.Report("b", core.Polyline{{X: 0, Y: 1}, {X: 1, Y: 1}})
	assert.True(t, c.Complete())

	routes, complete := c.Drain(context.Background())
	require.True(t, complete)
	require.Len(t, routes, 2)
	assert.True(t, routes["a"].Equal(core.Polyline{{X: 0, Y: 0}, {X: 1, Y: 0}}))
}

func TestCoordinator_DrainTimesOutOnMissingReports(t *testing.T) {
	c := NewCoordinator(20 * time.Millisecond)
	c.Begin(2)
	c.Report("a", core.Polyline{{X: 0, Y: 0}, {X: 1, Y: 0}})

	start := time.Now()
	routes, complete := c.Drain(context.Background())
	require.False(t, complete)
	require.Len(t, routes, 1, "partial results still release on timeout")
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestCoordinator_DuplicateReportKeepsLatest(t *testing.T) {
	c := NewCoordinator(time.Second)
	c.Begin(2)

	c.Report("a", core.Polyline{{X: 0, Y: 0}, {X: 1, Y: 0}})
	c.Report("a", core.Polyline{{X: 0, Y: 0}, {X: 2, Y: 0}})
	assert.False(t, c.Complete(), "duplicate must not count toward the barrier")

	c.Report("b", core.Polyline{{X: 5, Y: 5}, {X: 6, Y: 5}})
	routes, complete := c.Drain(context.Background())
	require.True(t, complete)
	assert.True(t, routes["a"].Equal(core.Polyline{{X: 0, Y: 0}, {X: 2, Y: 0}}))
}

func TestCoordinator_EmptyBatchCompletesImmediately(t *testing.T) {
	c := NewCoordinator(time.Second)
	c.Begin(0)

	routes, complete := c.Drain(context.Background())
	assert.True(t, complete)
	assert.Empty(t, routes)
}

func TestCoordinator_ReportOutsideBatchIsIgnored(t *testing.T) {
	c := NewCoordinator(time.Second)
	// No Begin: must not panic or retain anything.
	c.Report("stray", core.Polyline{{X: 0, Y: 0}, {X: 1, Y: 0}})
	assert.False(t, c.Complete())
}

func TestCoordinator_DrainHonorsContext(t *testing.T) {
	c := NewCoordinator(time.Minute)
	c.Begin(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, complete := c.Drain(ctx)
	assert.False(t, complete)
}
