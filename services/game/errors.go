package game

import "errors"

// Failure taxonomy for the session manager. Controllers and socket handlers
// map these to HTTP status codes / error emits; nothing here escapes as a
// panic or a fatal.
var (
	// ErrValidation covers malformed rosters, bad team numbers and
	// out-of-bounds chat/score input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized means the caller does not occupy the roster slot
	// required for the attempted mutation.
	ErrUnauthorized = errors.New("caller is not authorized for this team")

	// ErrStoreUnavailable wraps transport/storage failures on any CRUD call.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSessionNotFound means no session row matches the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionFinished means the session is already completed; completed
	// sessions are immutable historical records.
	ErrSessionFinished = errors.New("session already completed")
)
