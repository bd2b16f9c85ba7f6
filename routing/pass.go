package routing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"orthoroute/core"
	"orthoroute/solver"
)

// preparedConnector is the pass-scoped state for one connector between port
// assignment and extraction. Pass-scoped values are discarded at the end of
// the pass; only the session-owned handles survive.
type preparedConnector struct {
	spec    ConnectorSpec
	conn    *connection
	srcPt   core.Point
	dstPt   core.Point
	srcDir  core.Direction
	exclude map[string]bool
}

// RoutePass runs one full routing cycle for a set of connectors: obstacle
// lookups and port assignment for everyone first, then connection upserts, a
// single solve transaction, extraction, validation, and an atomic release of
// all results through the batch coordinator.
//
// Only one pass may run at a time; a concurrent call fails with
// ErrPassInProgress. A pass superseded by Supersede while in flight discards
// its results and returns ErrPassSuperseded — stale results never overwrite
// newer ones. Per-connector failures are isolated: one connector's error
// never aborts routing for the rest.
func (s *Session) RoutePass(ctx context.Context, specs []ConnectorSpec) (map[string]core.RouteResult, error) {
	if s.Stale() {
		return nil, ErrSessionStale
	}
	if !s.passMu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer s.passMu.Unlock()

	gen := s.generation.Load()

	if err := s.solv.EnsureReady(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.log.Warn("solver unavailable, degrading all connectors",
			slog.String("session", s.id),
			slog.Any("error", err))
		return s.degradeAll(specs), nil
	}

	// Registration phase: resolve every connector's sides and freeze port
	// groups before any offset is computed. The pass has the complete
	// connector set, so this barrier is exact, not timing-based.
	plan, failed := s.buildPortPlan(specs)

	ordered := make([]ConnectorSpec, len(specs))
	copy(ordered, specs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	results := make(map[string]core.RouteResult, len(specs))
	prepared := make([]preparedConnector, 0, len(specs))

	for _, spec := range ordered {
		if err := failed[spec.ID]; err != nil {
			results[spec.ID] = core.RouteResult{
				Status:  core.StatusError,
				Message: err.Error(),
			}
			continue
		}
		p, err := s.prepareConnector(spec, plan)
		if err != nil {
			results[spec.ID] = core.RouteResult{
				Status:  core.StatusError,
				Message: err.Error(),
			}
			continue
		}
		prepared = append(prepared, p)
	}

	if err := s.solv.Process(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.log.Warn("solve transaction failed",
			slog.String("session", s.id),
			slog.Any("error", err))
		for _, p := range prepared {
			pl := fallbackPath(p.srcPt, p.dstPt, p.srcDir)
			results[p.spec.ID] = core.RouteResult{
				Polyline: pl,
				Status:   core.StatusError,
				Message:  fmt.Sprintf("%v: %v", ErrSolverUnavailable, err),
			}
		}
		return results, nil
	}

	// Extraction: cached polylines for untouched connectors, one solver
	// poll for new or invalidated ones, then buffer everything so the
	// whole batch applies at once.
	s.coord.Begin(len(prepared))

	var solved, cached, fallbacks int
	meta := make(map[string]core.RouteResult, len(prepared))

	for _, p := range prepared {
		pl, fromCache := s.extractPolyline(p.conn)
		if fromCache {
			cached++
		} else {
			solved++
		}

		status := core.StatusOK
		message := ""
		if len(pl) < 2 {
			pl = fallbackPath(p.srcPt, p.dstPt, p.srcDir)
			status = core.StatusDegraded
			message = ErrEmptyRoute.Error()
			fallbacks++
		}

		if collStatus, collMsg := s.classify(pl, p.exclude); collStatus != core.StatusOK {
			if status == core.StatusDegraded {
				message = fmt.Sprintf("%v: %s", ErrFallbackCollision, collMsg)
			} else {
				message = collMsg
			}
			status = core.StatusError
		}

		meta[p.spec.ID] = core.RouteResult{Status: status, Message: message}
		s.coord.Report(p.spec.ID, pl)
	}

	drained, complete := s.coord.Drain(ctx)
	if s.generation.Load() != gen {
		s.log.Debug("routing pass superseded, discarding results",
			slog.String("session", s.id))
		return nil, ErrPassSuperseded
	}
	if !complete {
		s.log.Warn("batch coordinator drained incomplete",
			slog.String("session", s.id),
			slog.Int("reported", len(drained)))
	}

	for id, pl := range drained {
		r := meta[id]
		r.Polyline = pl
		results[id] = r
	}

	s.mu.Lock()
	s.stats.Passes++
	s.stats.Solved += solved
	s.stats.Cached += cached
	s.stats.Fallbacks += fallbacks
	s.mu.Unlock()

	s.log.Debug("routing pass complete",
		slog.String("session", s.id),
		slog.Int("connectors", len(specs)),
		slog.Int("solved", solved),
		slog.Int("cached", cached),
		slog.Int("fallbacks", fallbacks))

	return results, nil
}

// prepareConnector turns a spec into solver endpoints: cached pins for node
// endpoints (with the port group's symmetric offset), raw points otherwise.
func (s *Session) prepareConnector(spec ConnectorSpec, plan *portPlan) (preparedConnector, error) {
	srcDir := plan.srcSide[spec.ID]
	dstDir := plan.dstSide[spec.ID]

	exclude := make(map[string]bool, 2)

	var srcEnd, dstEnd solver.ConnEnd
	var srcSig, dstSig endpointSig
	var srcPt, dstPt core.Point

	if spec.sourceIsNode() {
		offset := plan.offsetFor(portKey{spec.SourceNodeID, srcDir}, spec.ID, s.opts.IdealSpacing)
		pin, err := s.pinFor(spec.SourceNodeID, srcDir, offset)
		if err != nil {
			return preparedConnector{}, err
		}
		srcEnd = solver.PinEnd(pin)
		srcSig = pinSig(pin)
		srcPt = pin.Position()
		exclude[spec.SourceNodeID] = true
	} else {
		srcEnd = solver.PointEnd(spec.SourcePoint, srcDir)
		srcSig = pointSig(spec.SourcePoint, srcDir)
		srcPt = spec.SourcePoint
	}

	if spec.targetIsNode() {
		offset := plan.offsetFor(portKey{spec.TargetNodeID, dstDir}, spec.ID, s.opts.IdealSpacing)
		pin, err := s.pinFor(spec.TargetNodeID, dstDir, offset)
		if err != nil {
			return preparedConnector{}, err
		}
		dstEnd = solver.PinEnd(pin)
		dstSig = pinSig(pin)
		dstPt = pin.Position()
		exclude[spec.TargetNodeID] = true
	} else {
		dstEnd = solver.PointEnd(spec.TargetPoint, dstDir)
		dstSig = pointSig(spec.TargetPoint, dstDir)
		dstPt = spec.TargetPoint
	}

	conn := s.upsert(spec, srcEnd, dstEnd, srcSig, dstSig)
	return preparedConnector{
		spec:    spec,
		conn:    conn,
		srcPt:   srcPt,
		dstPt:   dstPt,
		srcDir:  srcDir,
		exclude: exclude,
	}, nil
}

// degradeAll is the solver-unavailable path: every connector receives the
// deterministic L-fallback between its best-known attachment points with an
// error status.
func (s *Session) degradeAll(specs []ConnectorSpec) map[string]core.RouteResult {
	results := make(map[string]core.RouteResult, len(specs))
	for _, spec := range specs {
		srcRect, dstRect, err := s.endpointRects(spec)
		if err != nil {
			results[spec.ID] = core.RouteResult{
				Status:  core.StatusError,
				Message: fmt.Sprintf("%v: %v", ErrSolverUnavailable, err),
			}
			continue
		}

		srcDir := ResolveDirection(srcRect, dstRect, spec.PreferredSourceSide)
		dstDir := ResolveDirection(dstRect, srcRect, spec.PreferredTargetSide)
		srcPt := sideCenter(srcRect, srcDir)
		dstPt := sideCenter(dstRect, dstDir)
		if !spec.sourceIsNode() {
			srcPt = spec.SourcePoint
		}
		if !spec.targetIsNode() {
			dstPt = spec.TargetPoint
		}

		results[spec.ID] = core.RouteResult{
			Polyline: fallbackPath(srcPt, dstPt, srcDir),
			Status:   core.StatusError,
			Message:  ErrSolverUnavailable.Error(),
		}
	}
	return results
}

// sideCenter returns the midpoint of a rectangle side.
func sideCenter(r core.Rect, side core.Direction) core.Point {
	switch side {
	case core.North:
		return core.Point{X: r.X + r.W/2, Y: r.Y}
	case core.South:
		return core.Point{X: r.X + r.W/2, Y: r.Bottom()}
	case core.East:
		return core.Point{X: r.Right(), Y: r.Y + r.H/2}
	default:
		return core.Point{X: r.X, Y: r.Y + r.H/2}
	}
}
