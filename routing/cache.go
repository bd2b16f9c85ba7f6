package routing

import "orthoroute/core"

// extractPolyline returns the polyline for a connection: the cache when the
// connection is not new, a single solver poll otherwise. The asymmetry is
// deliberate — a global "poll everything" after any change would silently
// pick up every connector's latest path even when that connector's own
// geometry did not change, which is exactly the ballooning defect this
// engine exists to avoid.
func (s *Session) extractPolyline(c *connection) (core.Polyline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !c.isNew && c.polyline != nil {
		return c.polyline, true
	}

	c.polyline = c.conn.Route().Clone()
	c.isNew = false
	return c.polyline, false
}

// Polyline returns the cached polyline for a connector. Reads are safe at
// any time and never poll the solver.
func (s *Session) Polyline(connectorID string) (core.Polyline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conns[connectorID]
	if !ok {
		return nil, ErrUnknownConnector
	}
	return c.polyline, nil
}
