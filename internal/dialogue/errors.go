package dialogue

import "errors"

var (
	// ErrModelUnavailable means the language model call failed outright.
	ErrModelUnavailable = errors.New("dialogue: language model unavailable")

	// ErrModelTimeout means the language model call exceeded its deadline.
	ErrModelTimeout = errors.New("dialogue: language model call timed out")

	// ErrSessionNotFound means the session store has no record for the id.
	// Callers treat this as "create a fresh session", not as a failure.
	ErrSessionNotFound = errors.New("dialogue: session not found")
)
