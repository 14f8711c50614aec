package engine

import "errors"

// Sentinel errors for the verification engine. Every error the engine returns
// wraps one of these, so handlers can map them to HTTP status codes without
// inspecting strings. An unknown code during verification is not an error at
// all; it is a successful verification with a negative result.
var (
	// ErrValidation marks malformed input, rejected before any store mutation.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing entity (unknown request or product ID).
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition marks an action on a bulk request that already
	// reached a terminal state. The store is left untouched.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrCodeConflict marks an exhausted collision retry budget during
	// minting. The whole batch is rolled back.
	ErrCodeConflict = errors.New("code conflict")

	// ErrForbidden marks a caller acting outside its granted scope.
	ErrForbidden = errors.New("forbidden")
)
