package routing

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"

	"orthoroute/core"
	"orthoroute/solver"
)

// Solver is the engine surface a session routes through. *solver.Engine
// implements it; tests substitute an unavailable engine.
type Solver interface {
	EnsureReady(ctx context.Context) error
	AddShape(r core.Rect) *solver.Shape
	NewConn(src, dst solver.ConnEnd) *solver.Conn
	Process(ctx context.Context) error
	Options() solver.Options
}

// Manager hands out routing sessions keyed by option version. Requesting a
// version that already has a live session returns it; requesting a new
// version creates a fresh session and marks every older one stale.
type Manager struct {
	log      *slog.Logger
	mu       sync.Mutex
	sessions map[uint64]*Session
}

// NewManager creates a session manager.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		log:      log,
		sessions: make(map[uint64]*Session),
	}
}

// GetOrCreate returns the session for the given option set, creating it on
// first use. A version bump retires all sessions built under other versions.
func (m *Manager) GetOrCreate(opts solver.Options) *Session {
	version := opts.Version()

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[version]; ok {
		return s
	}

	for v, old := range m.sessions {
		old.markStale()
		delete(m.sessions, v)
		m.log.Debug("retired routing session",
			slog.String("session", old.id),
			slog.Uint64("version", v))
	}

	s := newSession(solver.NewEngine(opts, m.log), m.log)
	m.sessions[version] = s
	m.log.Debug("created routing session",
		slog.String("session", s.id),
		slog.Uint64("version", version))
	return s
}

// Session owns the solver engine for one configuration version and every
// long-lived handle built on it: obstacle shapes, pins, and connections. It
// is a single shared mutable structure scoped to one diagram view; only one
// routing pass may mutate it at a time, while polyline reads are safe at any
// time.
type Session struct {
	id      string
	version uint64
	opts    solver.Options
	solv    Solver
	log     *slog.Logger

	// passMu is the busy flag: TryLock rejects reentrant passes.
	passMu sync.Mutex
	// generation supersedes in-flight passes; stale results are discarded
	// before applying.
	generation atomic.Uint64
	stale      atomic.Bool

	mu        sync.Mutex
	obstacles map[string]*obstacleRecord
	pins      map[pinKey]*solver.Pin
	conns     map[string]*connection
	index     *rtreego.Rtree

	coord *Coordinator
	stats Stats
}

// NewSession builds a session directly on a fresh engine, bypassing the
// manager. Useful when exactly one configuration is ever used.
func NewSession(opts solver.Options, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return newSession(solver.NewEngine(opts, log), log)
}

func newSession(solv Solver, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	opts := solv.Options()
	return &Session{
		id:        uuid.NewString(),
		version:   opts.Version(),
		opts:      opts,
		solv:      solv,
		log:       log,
		obstacles: make(map[string]*obstacleRecord),
		pins:      make(map[pinKey]*solver.Pin),
		conns:     make(map[string]*connection),
		index:     rtreego.NewTree(2, 4, 16),
		coord:     NewCoordinator(defaultDrainTimeout),
	}
}

// ID returns the session's unique identifier, carried in logs and
// diagnostics.
func (s *Session) ID() string { return s.id }

// Version returns the configuration version the session was built under.
func (s *Session) Version() uint64 { return s.version }

// Stale reports whether the session has been superseded by a newer
// configuration version.
func (s *Session) Stale() bool { return s.stale.Load() }

func (s *Session) markStale() { s.stale.Store(true) }

// Supersede invalidates any in-flight routing pass: its buffered results are
// discarded before they apply. Called when a rapid gesture makes the pending
// pass obsolete.
func (s *Session) Supersede() {
	s.generation.Add(1)
}

// Stats is a snapshot of per-pass routing counters.
type Stats struct {
	Passes    int
	Solved    int
	Cached    int
	Fallbacks int
}

// Stats returns a snapshot of the session's routing counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
