package services

import "errors"

// Sentinel errors for the billing core. Callers classify failures with
// errors.Is and map them to HTTP status codes.
var (
	// ErrNotFound means the referenced job, customer, service or part does
	// not exist or belongs to a different tenant.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input was malformed. The operation had no
	// side effect.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState means the operation is forbidden in the job's
	// current state, e.g. adding a line item to a completed job.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict means a concurrent write was detected.
	ErrConflict = errors.New("conflict")
)
