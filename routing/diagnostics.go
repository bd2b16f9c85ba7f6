package routing

import (
	"orthoroute/core"
)

// PinInfo is the diagnostic view of one connection endpoint.
type PinInfo struct {
	PinID     int
	Direction core.Direction
	Position  core.Point
}

// Diagnostics is a per-connector snapshot used for verification and testing:
// which pins the connection terminates on, whether the cached polyline's
// first and last points match them, and whether the terminals sit on their
// node boundaries. It is not required for correctness.
type Diagnostics struct {
	ConnectorID string
	SessionID   string

	Source *PinInfo
	Target *PinInfo

	ExpectedFirst core.Point
	ExpectedLast  core.Point
	ActualFirst   core.Point
	ActualLast    core.Point

	EndpointsMatch   bool
	TerminalsOnNodes bool
}

// Diagnostics returns the snapshot for one connector.
func (s *Session) Diagnostics(connectorID string) (Diagnostics, error) {
	s.mu.Lock()
	c, ok := s.conns[connectorID]
	if !ok {
		s.mu.Unlock()
		return Diagnostics{}, ErrUnknownConnector
	}
	pl := c.polyline
	srcNode, dstNode := c.srcNodeID, c.dstNodeID
	srcSig, dstSig := c.srcSig, c.dstSig
	s.mu.Unlock()

	d := Diagnostics{
		ConnectorID: connectorID,
		SessionID:   s.id,
	}

	d.ExpectedFirst = s.expectedTerminal(srcSig)
	d.ExpectedLast = s.expectedTerminal(dstSig)
	if srcSig.pinID != 0 {
		d.Source = &PinInfo{PinID: srcSig.pinID, Direction: srcSig.dir, Position: d.ExpectedFirst}
	}
	if dstSig.pinID != 0 {
		d.Target = &PinInfo{PinID: dstSig.pinID, Direction: dstSig.dir, Position: d.ExpectedLast}
	}

	if len(pl) >= 2 {
		d.ActualFirst = pl[0]
		d.ActualLast = pl[len(pl)-1]
		d.EndpointsMatch = d.ActualFirst == d.ExpectedFirst && d.ActualLast == d.ExpectedLast
		d.TerminalsOnNodes = s.onNodeBoundary(srcNode, d.ActualFirst) &&
			s.onNodeBoundary(dstNode, d.ActualLast)
	}
	return d, nil
}

// expectedTerminal resolves where a connection endpoint should be: the pin's
// live position for node endpoints, the raw point otherwise.
func (s *Session) expectedTerminal(sig endpointSig) core.Point {
	if sig.pinID == 0 {
		return sig.point
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pin := range s.pins {
		if pin.ID() == sig.pinID {
			return pin.Position()
		}
	}
	return core.Point{}
}

// onNodeBoundary checks that a terminal point lies on (or within epsilon of)
// its node's boundary. Raw-point endpoints trivially pass.
func (s *Session) onNodeBoundary(nodeID string, p core.Point) bool {
	if nodeID == "" {
		return true
	}

	s.mu.Lock()
	rec, ok := s.obstacles[nodeID]
	s.mu.Unlock()
	if !ok {
		return false
	}

	const eps = 1e-6
	r := rec.rect
	onVertical := (abs(p.X-r.Left()) < eps || abs(p.X-r.Right()) < eps) &&
		p.Y >= r.Top()-eps && p.Y <= r.Bottom()+eps
	onHorizontal := (abs(p.Y-r.Top()) < eps || abs(p.Y-r.Bottom()) < eps) &&
		p.X >= r.Left()-eps && p.X <= r.Right()+eps
	return onVertical || onHorizontal
}
