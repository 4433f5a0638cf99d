package roster

import "errors"

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when an operation references an unknown worker or
// job id. Call sites wrap it with the offending id.
var ErrNotFound = errors.New("not found")

// ErrCapacityExceeded is returned by crew assignment once a job's crew is at
// its target headcount.
var ErrCapacityExceeded = errors.New("crew capacity exceeded")

// ErrRoleMismatch is returned when a worker without the foreman flag is
// offered for a job's foreman slot.
var ErrRoleMismatch = errors.New("worker is not a foreman")

// ValidationError wraps a user-facing validation message for malformed or
// missing input to a create/update operation.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
