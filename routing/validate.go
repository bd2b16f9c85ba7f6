package routing

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"

	"orthoroute/core"
	"orthoroute/geometry"
)

// classify post-checks a resolved or fallback path against every registered
// obstacle except the connector's own endpoint nodes, and reports the first
// collision found. Candidate obstacles come from the R-tree index, so the
// check stays cheap on large diagrams.
func (s *Session) classify(pl core.Polyline, excludeNodes map[string]bool) (core.RouteStatus, string) {
	if len(pl) < 2 {
		return core.StatusError, "no renderable path"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i+1 < len(pl); i++ {
		if id, hit := s.segmentHitLocked(pl[i], pl[i+1], excludeNodes); hit {
			return core.StatusError, fmt.Sprintf("path crosses obstacle %q", id)
		}
	}
	return core.StatusOK, ""
}

// segmentHitLocked queries the index for obstacles near one segment and runs
// the precise intersection test on each candidate.
func (s *Session) segmentHitLocked(a, b core.Point, excludeNodes map[string]bool) (string, bool) {
	const pad = 1e-6 // segments have zero thickness; the query rect must not

	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	query, err := rtreego.NewRect(
		rtreego.Point{minX - pad, minY - pad},
		[]float64{maxX - minX + 2*pad, maxY - minY + 2*pad},
	)
	if err != nil {
		return "", false
	}

	for _, hit := range s.index.SearchIntersect(query) {
		entry, ok := hit.(*indexEntry)
		if !ok || excludeNodes[entry.id] {
			continue
		}
		rec, ok := s.obstacles[entry.id]
		if !ok {
			continue
		}
		if geometry.SegmentIntersectsRect(a, b, rec.rect) {
			return entry.id, true
		}
	}
	return "", false
}
