package engine

import "errors"

var (
	// ErrDependencyNotFound marks a schedule whose recipe or basket no
	// longer exists; the run is recorded as failed and the trigger still
	// advances so the schedule does not retry every invocation.
	ErrDependencyNotFound = errors.New("dependency not found")

	// ErrClaimLost means another invocation claimed the schedule for this
	// due window first; a skip, not a failure.
	ErrClaimLost = errors.New("claim lost")

	// ErrWriteFailed marks a transient persistence failure during ticket
	// creation or run recording.
	ErrWriteFailed = errors.New("write failed")
)
