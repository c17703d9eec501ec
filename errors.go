package mesa

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates missing or contradictory arguments to a
	// reservation mutation.
	ErrValidation = errors.New("validation error")

	// ErrToolPayload indicates a malformed or unparseable tool result payload.
	ErrToolPayload = errors.New("malformed tool payload")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrSessionNotFound indicates no session exists for the given identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrReservationNotFound indicates the store has no record with the given ID.
	ErrReservationNotFound = errors.New("reservation not found")
)
