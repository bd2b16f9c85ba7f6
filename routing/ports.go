package routing

import (
	"fmt"
	"sort"

	"orthoroute/core"
	"orthoroute/solver"
)

// ConnectorSpec describes one connector to route: its endpoints are either
// node references (routed to a boundary pin) or raw canvas points.
type ConnectorSpec struct {
	ID string

	SourceNodeID string
	TargetNodeID string

	// Raw endpoints, used when the corresponding node id is empty.
	SourcePoint core.Point
	TargetPoint core.Point

	// Optional side overrides from the caller.
	PreferredSourceSide *core.Direction
	PreferredTargetSide *core.Direction
}

func (c ConnectorSpec) sourceIsNode() bool { return c.SourceNodeID != "" }
func (c ConnectorSpec) targetIsNode() bool { return c.TargetNodeID != "" }

// ResolveDirection picks the side of src facing dst. It is total: the result
// is always one of the four cardinals, never a wildcard. The axis with the
// greater center delta wins; exact diagonal ties fall to the horizontal axis,
// and a true center-point tie resolves rightward.
func ResolveDirection(src, dst core.Rect, preferred *core.Direction) core.Direction {
	if preferred != nil {
		return *preferred
	}

	sc, dc := src.Center(), dst.Center()
	dx := dc.X - sc.X
	dy := dc.Y - sc.Y

	switch {
	case abs(dx) >= abs(dy) && dx > 0:
		return core.East
	case abs(dx) >= abs(dy) && dx < 0:
		return core.West
	case dy > 0:
		return core.South
	case dy < 0:
		return core.North
	default:
		return core.East
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// portKey identifies a node side shared by multiple connectors.
type portKey struct {
	nodeID string
	side   core.Direction
}

// portGroups maps each node side to the connectors attached to it, ordered
// by connector id. Groups are recomputed every pass and never persisted;
// they exist only to derive symmetric spacing offsets.
type portGroups map[portKey][]string

// portPlan is the pass-scoped result of port assignment: the resolved side
// for each connector endpoint plus the frozen port groups.
type portPlan struct {
	srcSide map[string]core.Direction
	dstSide map[string]core.Direction
	groups  portGroups
}

// buildPortPlan runs the registration phase for a pass: every connector's
// preferred sides are resolved first, then port groups are frozen with a
// stable ordering. Because the pass receives the complete connector set, the
// barrier between registration and offset calculation is the function
// boundary itself — no quiescence delays.
func (s *Session) buildPortPlan(specs []ConnectorSpec) (*portPlan, map[string]error) {
	plan := &portPlan{
		srcSide: make(map[string]core.Direction, len(specs)),
		dstSide: make(map[string]core.Direction, len(specs)),
		groups:  make(portGroups),
	}
	failed := make(map[string]error)

	for _, spec := range specs {
		srcRect, dstRect, err := s.endpointRects(spec)
		if err != nil {
			failed[spec.ID] = err
			continue
		}

		srcSide := ResolveDirection(srcRect, dstRect, spec.PreferredSourceSide)
		dstSide := ResolveDirection(dstRect, srcRect, spec.PreferredTargetSide)
		plan.srcSide[spec.ID] = srcSide
		plan.dstSide[spec.ID] = dstSide

		if spec.sourceIsNode() {
			key := portKey{spec.SourceNodeID, srcSide}
			plan.groups[key] = append(plan.groups[key], spec.ID)
		}
		if spec.targetIsNode() {
			key := portKey{spec.TargetNodeID, dstSide}
			plan.groups[key] = append(plan.groups[key], spec.ID)
		}
	}

	// Freeze groups: stable ordering by connector id, not arrival order.
	for key := range plan.groups {
		sort.Strings(plan.groups[key])
	}
	return plan, failed
}

// endpointRects resolves the rectangles the direction heuristic works on.
// Raw-point endpoints use a zero-size rect at the point.
func (s *Session) endpointRects(spec ConnectorSpec) (core.Rect, core.Rect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolve := func(nodeID string, raw core.Point) (core.Rect, error) {
		if nodeID == "" {
			return core.Rect{X: raw.X, Y: raw.Y}, nil
		}
		rec, ok := s.obstacles[nodeID]
		if !ok {
			return core.Rect{}, fmt.Errorf("node %q: %w", nodeID, ErrUnknownNode)
		}
		return rec.rect, nil
	}

	srcRect, err := resolve(spec.SourceNodeID, spec.SourcePoint)
	if err != nil {
		return core.Rect{}, core.Rect{}, err
	}
	dstRect, err := resolve(spec.TargetNodeID, spec.TargetPoint)
	if err != nil {
		return core.Rect{}, core.Rect{}, err
	}
	return srcRect, dstRect, nil
}

// offsetFor computes the symmetric perpendicular offset for a connector in
// its port group: index i of n gets (i - (n-1)/2) × spacing. A connector
// missing from its group gets offset 0.
func (p *portPlan) offsetFor(key portKey, connectorID string, spacing float64) float64 {
	group := p.groups[key]
	for i, id := range group {
		if id == connectorID {
			return (float64(i) - float64(len(group)-1)/2) * spacing
		}
	}
	return 0
}

// pinKey identifies a cached attachment point: node, normalized offsets,
// sibling offset and the spacing it was computed under. Pins are created
// lazily on first use and reused for the life of the session.
type pinKey struct {
	nodeID  string
	relX    float64
	relY    float64
	sibling float64
	spacing float64
}

// pinFor returns the cached pin for a node side and sibling offset, creating
// it on first use. The pin direction is always the concrete side — never a
// wildcard — so the route is forced to exit away from the node body.
func (s *Session) pinFor(nodeID string, side core.Direction, offset float64) (*solver.Pin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.obstacles[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", nodeID, ErrUnknownNode)
	}

	relX, relY := pinOffsets(rec.rect, side, offset)
	key := pinKey{
		nodeID:  nodeID,
		relX:    relX,
		relY:    relY,
		sibling: offset,
		spacing: s.opts.IdealSpacing,
	}
	if pin, ok := s.pins[key]; ok {
		return pin, nil
	}

	pin, err := rec.shape.AddPin(relX, relY, side)
	if err != nil {
		return nil, fmt.Errorf("pin on node %q side %v: %w", nodeID, side, err)
	}
	s.pins[key] = pin
	return pin, nil
}

// pinOffsets converts a side plus a perpendicular canvas offset into the
// shape's normalized pin coordinates, clamped away from the corners.
func pinOffsets(r core.Rect, side core.Direction, offset float64) (relX, relY float64) {
	const cornerMargin = 0.05

	clamp := func(v float64) float64 {
		if v < cornerMargin {
			return cornerMargin
		}
		if v > 1-cornerMargin {
			return 1 - cornerMargin
		}
		return v
	}

	switch side {
	case core.East:
		return 1, clamp(0.5 + offset/r.H)
	case core.West:
		return 0, clamp(0.5 + offset/r.H)
	case core.North:
		return clamp(0.5 + offset/r.W), 0
	default: // South
		return clamp(0.5 + offset/r.W), 1
	}
}
