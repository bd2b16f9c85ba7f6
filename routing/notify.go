package routing

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"orthoroute/core"
)

// ObstacleMove is one batched node move notification.
type ObstacleMove struct {
	NodeID string
	Rect   core.Rect
}

// MoveNotifier coalesces obstacle-moved notifications so the registry sees
// one delivery per user gesture instead of one per animation frame. Moves
// accumulate until the debounce interval passes without a new notification,
// then the whole batch is delivered in a single callback invocation.
type MoveNotifier struct {
	deliver   func([]ObstacleMove)
	debounced func(func())

	mu      sync.Mutex
	pending []ObstacleMove
}

// NewMoveNotifier creates a notifier that delivers coalesced batches to the
// given callback after wait of quiet time.
func NewMoveNotifier(wait time.Duration, deliver func([]ObstacleMove)) *MoveNotifier {
	return &MoveNotifier{
		deliver:   deliver,
		debounced: debounce.New(wait),
	}
}

// Notify queues moves for the next delivery. Later moves for the same node
// replace earlier ones within the batch.
func (n *MoveNotifier) Notify(moves ...ObstacleMove) {
	n.mu.Lock()
	for _, m := range moves {
		replaced := false
		for i := range n.pending {
			if n.pending[i].NodeID == m.NodeID {
				n.pending[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			n.pending = append(n.pending, m)
		}
	}
	n.mu.Unlock()

	n.debounced(n.flush)
}

// Flush delivers any pending moves immediately, bypassing the debounce
// window. Used on gesture end.
func (n *MoveNotifier) Flush() {
	n.flush()
}

func (n *MoveNotifier) flush() {
	n.mu.Lock()
	batch := n.pending
	n.pending = nil
	n.mu.Unlock()

	if len(batch) > 0 {
		n.deliver(batch)
	}
}

// ApplyMoves is the session's move delivery handler: each obstacle updates
// in place, and only the connectors attached to a moved node are
// invalidated. Unrelated connectors keep their cached polylines untouched.
func (s *Session) ApplyMoves(moves []ObstacleMove) {
	moved := make(map[string]bool, len(moves))
	for _, m := range moves {
		if err := s.RegisterOrMove(m.NodeID, m.Rect); err != nil {
			s.log.Warn("obstacle move skipped",
				slog.String("session", s.id),
				slog.String("node", m.NodeID),
				slog.Any("error", err))
			continue
		}
		moved[m.NodeID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		if moved[c.srcNodeID] || moved[c.dstNodeID] {
			c.isNew = true
		}
	}
}

// MoveHandler returns a debounced notifier wired to this session: callers
// feed it raw per-frame node moves and the session receives one coalesced
// batch per gesture.
func (s *Session) MoveHandler(wait time.Duration) *MoveNotifier {
	return NewMoveNotifier(wait, s.ApplyMoves)
}
