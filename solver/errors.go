package solver

import "errors"

var (
	// ErrNotInitialized is returned when the engine's one-time
	// initialization failed. The failure is sticky for the engine's life.
	ErrNotInitialized = errors.New("solver engine not initialized")

	// ErrHandleDetached is returned when an operation uses a shape handle
	// the engine no longer owns.
	ErrHandleDetached = errors.New("handle no longer attached to engine")
)
