package routing

import (
	"orthoroute/core"
	"orthoroute/solver"
)

// connection is the session's record for one connector: the persistent
// solver connection handle, the cached polyline, and the endpoint signature
// used for diffing. Connection identity persists across endpoint updates —
// recreating a connection would cascade into a solver reset.
type connection struct {
	id   string
	conn *solver.Conn

	srcNodeID string
	dstNodeID string

	srcSig endpointSig
	dstSig endpointSig

	polyline core.Polyline
	// isNew marks connections created or invalidated since the last
	// extraction; only these poll the solver for a fresh route.
	isNew bool
}

// endpointSig captures what a connection endpoint was last set to, so a pass
// can tell whether the endpoints actually changed.
type endpointSig struct {
	pinID int
	point core.Point
	dir   core.Direction
}

func pinSig(p *solver.Pin) endpointSig {
	return endpointSig{pinID: p.ID(), dir: p.Direction()}
}

func pointSig(pt core.Point, dir core.Direction) endpointSig {
	return endpointSig{point: pt, dir: dir}
}

// upsert creates or updates the connection for a connector. New connectors
// get a connection with orthogonal routing fixed at creation; existing
// connectors only have their endpoints updated, and only when the endpoints
// actually changed. Moving obstacles alone never re-triggers an upsert —
// affected connectors are invalidated by per-connector diffing instead.
func (s *Session) upsert(spec ConnectorSpec, src, dst solver.ConnEnd, srcSig, dstSig endpointSig) *connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.conns[spec.ID]; ok {
		if c.srcSig != srcSig || c.dstSig != dstSig {
			c.conn.SetEndpoints(src, dst)
			c.srcSig = srcSig
			c.dstSig = dstSig
			c.isNew = true
		}
		c.srcNodeID = spec.SourceNodeID
		c.dstNodeID = spec.TargetNodeID
		return c
	}

	c := &connection{
		id:        spec.ID,
		conn:      s.solv.NewConn(src, dst),
		srcNodeID: spec.SourceNodeID,
		dstNodeID: spec.TargetNodeID,
		srcSig:    srcSig,
		dstSig:    dstSig,
		isNew:     true,
	}
	s.conns[spec.ID] = c
	return c
}

// InvalidateConnector marks a connector so its next extraction polls the
// solver instead of returning the cache. This is the per-connector diffing
// hook: callers invalidate exactly the connectors whose own obstacles or
// endpoints changed.
func (s *Session) InvalidateConnector(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conns[id]; ok {
		c.isNew = true
	}
}

// ConnectionCount returns the number of live connections.
func (s *Session) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
