package routing

import "errors"

var (
	// ErrSolverUnavailable means the engine's one-time initialization
	// failed. Fatal for the session: every connector degrades to the
	// straight-line fallback with an error status.
	ErrSolverUnavailable = errors.New("solver unavailable")

	// ErrEmptyRoute means the solver produced no usable points for a
	// connection. Recovered locally via the fallback generator.
	ErrEmptyRoute = errors.New("solver produced an empty route")

	// ErrFallbackCollision means the fallback path crosses an obstacle.
	// Reported, not retried.
	ErrFallbackCollision = errors.New("fallback path collides with an obstacle")

	// ErrHandleMismatch means a stale obstacle, pin or connection handle
	// was used. Recovered by recreating the handle on the next pass.
	ErrHandleMismatch = errors.New("stale routing handle")

	// ErrSessionStale means the session was superseded by a newer
	// configuration version; creating handles under the old version is
	// forbidden.
	ErrSessionStale = errors.New("routing session is stale")

	// ErrPassInProgress means a routing pass is already mutating the
	// session. Passes are not reentrant.
	ErrPassInProgress = errors.New("routing pass already in progress")

	// ErrPassSuperseded means a newer pass started while this one was in
	// flight; the stale results were discarded before applying.
	ErrPassSuperseded = errors.New("routing pass superseded")

	// ErrUnknownNode means a connector references a node with no registered
	// obstacle.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownConnector means no connection exists for the connector id.
	ErrUnknownConnector = errors.New("unknown connector")
)
