package solver

import (
	"container/heap"
	"math"
	"sort"

	"orthoroute/core"
	"orthoroute/geometry"
)

const maxSearchNodes = 20000 // safety limit for the A* search

// routeGrid is the sparse orthogonal visibility grid for one solve: the
// candidate coordinates are the inflated obstacle edges plus the endpoint
// stub points, so routes hug obstacle clearance bands instead of exploring a
// dense pixel grid.
type routeGrid struct {
	xs       []float64
	ys       []float64
	inflated []core.Rect
	opts     Options
}

// newRouteGrid builds the grid for a set of obstacles. Extra points (endpoint
// stubs) are added as grid coordinates so they are always reachable.
func newRouteGrid(obstacles []core.Rect, opts Options, extra ...core.Point) *routeGrid {
	g := &routeGrid{opts: opts}

	for _, r := range obstacles {
		inf := r.Inflate(opts.BufferDistance)
		g.inflated = append(g.inflated, inf)
		g.xs = append(g.xs, inf.Left(), inf.Right())
		g.ys = append(g.ys, inf.Top(), inf.Bottom())
	}
	for _, p := range extra {
		g.xs = append(g.xs, p.X)
		g.ys = append(g.ys, p.Y)
	}

	g.xs = dedupSorted(g.xs)
	g.ys = dedupSorted(g.ys)
	return g
}

func dedupSorted(vals []float64) []float64 {
	sort.Float64s(vals)
	out := vals[:0]
	for _, v := range vals {
		if len(out) == 0 || v-out[len(out)-1] > 1e-7 {
			out = append(out, v)
		}
	}
	return out
}

// coordIndex finds the grid index of a coordinate previously added via extra.
func coordIndex(vals []float64, v float64) int {
	i := sort.SearchFloat64s(vals, v-1e-7)
	if i < len(vals) && math.Abs(vals[i]-v) < 1e-6 {
		return i
	}
	return -1
}

func (g *routeGrid) point(ix, iy int) core.Point {
	return core.Point{X: g.xs[ix], Y: g.ys[iy]}
}

// blocked reports whether a point lies strictly inside any inflated obstacle.
// Points on the clearance boundary are routable.
func (g *routeGrid) blocked(p core.Point) bool {
	for _, r := range g.inflated {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// searchNode is one A* state: a grid intersection plus the direction it was
// entered from, so turns can be penalized.
type searchNode struct {
	ix, iy int
	gCost  float64
	hCost  float64
	fCost  float64
	parent *searchNode
	dir    core.Direction
	index  int // heap index
}

type nodeQueue []*searchNode

func (nq nodeQueue) Len() int { return len(nq) }
func (nq nodeQueue) Less(i, j int) bool {
	if nq[i].fCost != nq[j].fCost {
		return nq[i].fCost < nq[j].fCost
	}
	if nq[i].hCost != nq[j].hCost {
		return nq[i].hCost < nq[j].hCost
	}
	// Deterministic position-based ordering on ties.
	if nq[i].ix != nq[j].ix {
		return nq[i].ix < nq[j].ix
	}
	return nq[i].iy < nq[j].iy
}
func (nq nodeQueue) Swap(i, j int) {
	nq[i], nq[j] = nq[j], nq[i]
	nq[i].index = i
	nq[j].index = j
}
func (nq *nodeQueue) Push(x interface{}) {
	n := len(*nq)
	node := x.(*searchNode)
	node.index = n
	*nq = append(*nq, node)
}
func (nq *nodeQueue) Pop() interface{} {
	old := *nq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*nq = old[0 : n-1]
	return node
}

type gridKey struct{ ix, iy int }

// findPath runs A* from start to goal over the grid. startDir is the
// direction the route enters the grid with (the pin's exit direction);
// goalApproach is the direction it should arrive with. A nil result means no
// route exists.
func (g *routeGrid) findPath(start core.Point, startDir core.Direction, goal core.Point, goalApproach core.Direction, others []core.Polyline) core.Polyline {
	six, siy := coordIndex(g.xs, start.X), coordIndex(g.ys, start.Y)
	gix, giy := coordIndex(g.xs, goal.X), coordIndex(g.ys, goal.Y)
	if six < 0 || siy < 0 || gix < 0 || giy < 0 {
		return nil
	}
	if g.blocked(start) || g.blocked(goal) {
		return nil
	}
	if six == gix && siy == giy {
		return core.Polyline{start}
	}

	startNode := &searchNode{
		ix: six, iy: siy,
		dir:   startDir,
		hCost: geometry.ManhattanDistance(start, goal),
	}
	startNode.fCost = startNode.hCost

	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, startNode)

	best := map[gridKey]float64{{six, siy}: 0}
	closed := map[gridKey]bool{}
	explored := 0

	for open.Len() > 0 {
		explored++
		if explored > maxSearchNodes {
			return nil
		}

		current := heap.Pop(open).(*searchNode)
		key := gridKey{current.ix, current.iy}
		if closed[key] {
			continue
		}
		closed[key] = true

		if current.ix == gix && current.iy == giy {
			return g.reconstruct(current)
		}

		for _, step := range []struct {
			dx, dy int
			dir    core.Direction
		}{
			{0, -1, core.North},
			{1, 0, core.East},
			{0, 1, core.South},
			{-1, 0, core.West},
		} {
			nix, niy := current.ix+step.dx, current.iy+step.dy
			if nix < 0 || nix >= len(g.xs) || niy < 0 || niy >= len(g.ys) {
				continue
			}

			from := g.point(current.ix, current.iy)
			to := g.point(nix, niy)
			mid := core.Point{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2}
			if g.blocked(to) || g.blocked(mid) {
				continue
			}

			cost := current.gCost + geometry.ManhattanDistance(from, to)
			if step.dir != current.dir {
				cost += g.opts.BendPenalty
			}
			cost += g.trafficCost(from, to, others)
			if nix == gix && niy == giy && step.dir != goalApproach {
				cost += g.opts.BendPenalty
			}

			nKey := gridKey{nix, niy}
			if prev, seen := best[nKey]; seen && cost >= prev {
				continue
			}
			best[nKey] = cost

			node := &searchNode{
				ix: nix, iy: niy,
				gCost:  cost,
				hCost:  geometry.ManhattanDistance(to, goal),
				parent: current,
				dir:    step.dir,
			}
			node.fCost = node.gCost + node.hCost
			heap.Push(open, node)
		}
	}
	return nil
}

// trafficCost charges for crossing or sharing corridors with already-routed
// connections.
func (g *routeGrid) trafficCost(from, to core.Point, others []core.Polyline) float64 {
	var cost float64
	for _, route := range others {
		for i := 0; i+1 < len(route); i++ {
			if geometry.SegmentsCross(from, to, route[i], route[i+1]) {
				cost += g.opts.effectiveCrossingPenalty()
			} else if _, ok := geometry.SegmentsOverlap(from, to, route[i], route[i+1]); ok {
				cost += g.opts.SharedPathPenalty
			}
		}
	}
	return cost
}

func (g *routeGrid) reconstruct(end *searchNode) core.Polyline {
	var reversed core.Polyline
	for n := end; n != nil; n = n.parent {
		reversed = append(reversed, g.point(n.ix, n.iy))
	}

	out := make(core.Polyline, len(reversed))
	for i := range reversed {
		out[i] = reversed[len(reversed)-1-i]
	}
	return geometry.Simplify(out)
}
