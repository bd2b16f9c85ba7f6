package routing

import (
	"fmt"
	"log/slog"

	"github.com/dhconnelly/rtreego"

	"orthoroute/core"
	"orthoroute/solver"
)

// obstacleRecord is the registry entry for one diagram node: the live
// rectangle, the long-lived solver shape handle, and the spatial index entry
// used by the collision validator.
type obstacleRecord struct {
	id    string
	rect  core.Rect
	shape *solver.Shape
	entry *indexEntry
}

// indexEntry adapts an obstacle rectangle to the R-tree's Spatial interface.
type indexEntry struct {
	id     string
	bounds *rtreego.Rect
}

func (e *indexEntry) Bounds() *rtreego.Rect { return e.bounds }

func rectBounds(r core.Rect) (*rtreego.Rect, error) {
	return rtreego.NewRect(rtreego.Point{r.X, r.Y}, []float64{r.W, r.H})
}

// RegisterOrMove creates an obstacle handle for id, or updates the existing
// shape's rectangle in place. It never triggers a re-solve on its own:
// obstacle updates are batched and only the connections referencing them are
// re-routed by per-connector diffing. A failed handle update keeps the stale
// handle and is skipped, because a handle/shape mismatch must never abort the
// whole session.
func (s *Session) RegisterOrMove(id string, r core.Rect) error {
	if s.Stale() {
		return fmt.Errorf("register obstacle %q: %w", id, ErrSessionStale)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerOrMoveLocked(id, r)
}

func (s *Session) registerOrMoveLocked(id string, r core.Rect) error {
	if rec, ok := s.obstacles[id]; ok {
		if rec.rect.Equal(r) {
			return nil
		}
		if err := rec.shape.MoveTo(r); err != nil {
			// Keep the stale handle; the move is skipped, not fatal.
			s.log.Warn("obstacle handle update failed, keeping stale shape",
				slog.String("session", s.id),
				slog.String("node", id),
				slog.Any("error", fmt.Errorf("%w: %v", ErrHandleMismatch, err)))
			return nil
		}
		s.index.Delete(rec.entry)
		rec.rect = r
		if bounds, err := rectBounds(r); err == nil {
			rec.entry = &indexEntry{id: id, bounds: bounds}
			s.index.Insert(rec.entry)
		}
		return nil
	}

	bounds, err := rectBounds(r)
	if err != nil {
		return fmt.Errorf("register obstacle %q: %w", id, err)
	}
	rec := &obstacleRecord{
		id:    id,
		rect:  r,
		shape: s.solv.AddShape(r),
		entry: &indexEntry{id: id, bounds: bounds},
	}
	s.obstacles[id] = rec
	s.index.Insert(rec.entry)
	return nil
}

// ObstacleRect returns the registered rectangle for a node.
func (s *Session) ObstacleRect(id string) (core.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.obstacles[id]
	if !ok {
		return core.Rect{}, false
	}
	return rec.rect, true
}

// ObstacleCount returns the number of registered obstacles.
func (s *Session) ObstacleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.obstacles)
}
