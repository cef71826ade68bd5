package engine

import "errors"

var (
	// ErrValidation marks bad caller input (empty title, recurring task
	// without an interval). The operation aborts before any state change.
	ErrValidation = errors.New("engine: validation failed")

	// ErrInvalidTransition marks a lifecycle action applied in the wrong
	// state, e.g. completing a task that is not Pending.
	ErrInvalidTransition = errors.New("engine: invalid status transition")
)

// Unknown task ids surface as storage.ErrNotFound from the repository;
// the engine propagates them unchanged.
