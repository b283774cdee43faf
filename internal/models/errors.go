package models

import "errors"

// Error taxonomy for the pipeline. Repositories and services wrap these so
// callers can branch with errors.Is without depending on SQL details.
var (
	// ErrValidation marks malformed input rejected before any state change.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a status-guarded write that matched zero rows. It is
	// benign: the losing side of a race treats it as a no-op.
	ErrConflict = errors.New("status precondition failed")
	// ErrNotFound marks operations referencing a nonexistent item.
	ErrNotFound = errors.New("not found")
	// ErrExternalDependency marks classifier dispatch/timeout failures. These
	// are recorded on the item, never surfaced to the capture caller.
	ErrExternalDependency = errors.New("external dependency failed")
	// ErrConfiguration marks missing required configuration. Secrets never
	// fall back to defaults.
	ErrConfiguration = errors.New("configuration error")
)
