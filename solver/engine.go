// Package solver implements the geometric core of the routing engine: a
// transactional orthogonal router with long-lived shape, pin and connection
// handles. Shapes move in place, connections keep their identity across
// endpoint updates, and Process solves only the connections marked dirty.
package solver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"orthoroute/core"
	"orthoroute/geometry"
)

// Shape is a long-lived obstacle handle. The rectangle mutates in place on
// move; the handle itself survives for the life of the engine.
type Shape struct {
	eng  *Engine
	id   int
	rect core.Rect
	pins []*Pin
}

// ID returns the shape's numeric handle id.
func (s *Shape) ID() int { return s.id }

// Rect returns the shape's current rectangle.
func (s *Shape) Rect() core.Rect {
	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()
	return s.rect
}

// MoveTo updates the shape's rectangle in place and marks every connection
// attached to one of its pins dirty. It never rebuilds the engine's state.
func (s *Shape) MoveTo(r core.Rect) error {
	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()

	if s.eng.shapes[s.id] != s {
		return fmt.Errorf("shape %d: %w", s.id, ErrHandleDetached)
	}
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("shape %d: degenerate rect %+v", s.id, r)
	}

	s.rect = r
	for _, conn := range s.eng.conns {
		if conn.touchesShape(s) {
			conn.dirty = true
		}
	}
	return nil
}

// AddPin attaches a pin to the shape boundary at a normalized offset
// (relX, relY in [0,1]) with a mandatory cardinal direction.
func (s *Shape) AddPin(relX, relY float64, dir core.Direction) (*Pin, error) {
	if relX < 0 || relX > 1 || relY < 0 || relY > 1 {
		return nil, fmt.Errorf("pin offset (%v,%v) outside [0,1]", relX, relY)
	}
	if dir < core.North || dir > core.West {
		return nil, fmt.Errorf("pin direction %d is not a cardinal", dir)
	}

	s.eng.mu.Lock()
	defer s.eng.mu.Unlock()

	s.eng.nextPinID++
	pin := &Pin{shape: s, id: s.eng.nextPinID, relX: relX, relY: relY, dir: dir}
	s.pins = append(s.pins, pin)
	return pin, nil
}

// Pin is a fixed attachment point on a shape boundary. Its position derives
// from the live shape rectangle, so shape moves track automatically.
type Pin struct {
	shape *Shape
	id    int
	relX  float64
	relY  float64
	dir   core.Direction
}

// ID returns the pin's numeric id.
func (p *Pin) ID() int { return p.id }

// Direction returns the pin's exit direction.
func (p *Pin) Direction() core.Direction { return p.dir }

// position computes the pin's canvas point from the current shape rect.
// Caller holds the engine lock.
func (p *Pin) position() core.Point {
	r := p.shape.rect
	return core.Point{X: r.X + r.W*p.relX, Y: r.Y + r.H*p.relY}
}

// Position returns the pin's current canvas point.
func (p *Pin) Position() core.Point {
	p.shape.eng.mu.Lock()
	defer p.shape.eng.mu.Unlock()
	return p.position()
}

// ConnEnd is one endpoint of a connection: either a pin reference or a raw
// point with an explicit exit direction.
type ConnEnd struct {
	pin   *Pin
	point core.Point
	dir   core.Direction
}

// PinEnd builds a connection endpoint from a pin.
func PinEnd(p *Pin) ConnEnd {
	return ConnEnd{pin: p, dir: p.dir}
}

// PointEnd builds a connection endpoint from a raw canvas point.
func PointEnd(pt core.Point, dir core.Direction) ConnEnd {
	return ConnEnd{point: pt, dir: dir}
}

// resolve returns the endpoint's current position, direction, and owning
// shape (nil for raw points). Caller holds the engine lock.
func (e ConnEnd) resolve() (core.Point, core.Direction, *Shape) {
	if e.pin != nil {
		return e.pin.position(), e.pin.dir, e.pin.shape
	}
	return e.point, e.dir, nil
}

// Conn is a long-lived connection handle. Updating endpoints never recreates
// the connection; identity persists to avoid cascading engine resets.
type Conn struct {
	eng   *Engine
	id    int
	src   ConnEnd
	dst   ConnEnd
	route core.Polyline
	dirty bool
}

// ID returns the connection's numeric id.
func (c *Conn) ID() int { return c.id }

// SetEndpoints replaces both endpoints and marks the connection dirty.
func (c *Conn) SetEndpoints(src, dst ConnEnd) {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	c.src = src
	c.dst = dst
	c.dirty = true
}

// Route returns the connection's last solved polyline. Empty until the first
// Process call completes.
func (c *Conn) Route() core.Polyline {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	return c.route
}

// NeedsSolve reports whether the connection has pending endpoint or obstacle
// changes.
func (c *Conn) NeedsSolve() bool {
	c.eng.mu.Lock()
	defer c.eng.mu.Unlock()
	return c.dirty
}

func (c *Conn) touchesShape(s *Shape) bool {
	return (c.src.pin != nil && c.src.pin.shape == s) ||
		(c.dst.pin != nil && c.dst.pin.shape == s)
}

// Engine is the orthogonal routing solver. One engine exists per option
// version; its options are immutable after construction.
type Engine struct {
	opts Options
	log  *slog.Logger

	mu        sync.Mutex
	initOnce  sync.Once
	initErr   error
	shapes    map[int]*Shape
	conns     map[int]*Conn
	nextShape int
	nextPinID int
	nextConn  int
}

// NewEngine creates a solver engine with the given options. The engine is not
// ready until EnsureReady succeeds.
func NewEngine(opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		opts:   opts,
		log:    log,
		shapes: make(map[int]*Shape),
		conns:  make(map[int]*Conn),
	}
}

// Options returns the engine's immutable option set.
func (e *Engine) Options() Options { return e.opts }

// EnsureReady performs the engine's one-time initialization. The result is
// sticky: a failed initialization fails every subsequent call, and the whole
// session degrades to fallback routing.
func (e *Engine) EnsureReady(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.initOnce.Do(func() {
		if e.opts.BufferDistance < 0 || e.opts.IdealSpacing < 0 {
			e.initErr = fmt.Errorf("%w: negative distances in options", ErrNotInitialized)
			return
		}
		e.log.Debug("solver engine initialized",
			slog.Uint64("version", e.opts.Version()))
	})
	return e.initErr
}

// AddShape registers an obstacle rectangle and returns its long-lived handle.
func (e *Engine) AddShape(r core.Rect) *Shape {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextShape++
	s := &Shape{eng: e, id: e.nextShape, rect: r}
	e.shapes[s.id] = s
	return s
}

// NewConn creates a connection between two endpoints. The connection routes
// orthogonally; there is no free-form mode, because free routing ignores pin
// direction constraints.
func (e *Engine) NewConn(src, dst ConnEnd) *Conn {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextConn++
	c := &Conn{eng: e, id: e.nextConn, src: src, dst: dst, dirty: true}
	e.conns[c.id] = c
	return c
}

// Process runs a solve transaction: every dirty connection is re-routed in
// ascending connection-id order; clean connections keep their routes
// untouched. Already-solved routes act as crossing/shared-path cost sources
// for the connections solved after them.
func (e *Engine) Process(ctx context.Context) error {
	if err := e.EnsureReady(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]int, 0, len(e.conns))
	for id, c := range e.conns {
		if c.dirty {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := e.conns[id]
		c.route = e.solveLocked(c)
		c.dirty = false
	}
	return nil
}

// solveLocked routes a single connection. Returns nil when no route exists;
// the caller recovers with its fallback generator.
func (e *Engine) solveLocked(c *Conn) core.Polyline {
	srcPt, srcDir, _ := c.src.resolve()
	dstPt, dstDir, _ := c.dst.resolve()

	buf := e.opts.BufferDistance
	escSrc := core.Point{
		X: srcPt.X + srcDir.Vector().X*buf,
		Y: srcPt.Y + srcDir.Vector().Y*buf,
	}
	escDst := core.Point{
		X: dstPt.X + dstDir.Vector().X*buf,
		Y: dstPt.Y + dstDir.Vector().Y*buf,
	}

	obstacles := make([]core.Rect, 0, len(e.shapes))
	for _, s := range e.shapes {
		obstacles = append(obstacles, s.rect)
	}

	others := e.otherRoutesLocked(c)

	grid := newRouteGrid(obstacles, e.opts, escSrc, escDst)
	path := grid.findPath(escSrc, srcDir, escDst, dstDir.Opposite(), others)
	if path == nil {
		e.log.Debug("no grid route found",
			slog.Int("conn", c.id),
			slog.Int("shapes", len(e.shapes)))
		return nil
	}

	full := make(core.Polyline, 0, len(path)+2)
	full = append(full, srcPt)
	full = append(full, path...)
	full = append(full, dstPt)
	full = geometry.Simplify(full)

	if e.opts.IdealSpacing > 0 {
		full = separateSharedCorridors(full, others, obstacles, e.opts)
	}
	return full
}

// otherRoutesLocked snapshots the solved routes of every other connection.
func (e *Engine) otherRoutesLocked(self *Conn) []core.Polyline {
	out := make([]core.Polyline, 0, len(e.conns))
	ids := make([]int, 0, len(e.conns))
	for id := range e.conns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c := e.conns[id]
		if c == self || len(c.route) < 2 {
			continue
		}
		out = append(out, c.route)
	}
	return out
}
