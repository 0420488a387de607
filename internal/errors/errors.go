package errors

import (
	"errors"
)

// Sentinel errors for different categories
var (
	// ErrInvalidSchema - persisted bytes could not be parsed into a valid schema
	// (malformed JSON, missing or wrong-typed version). Recovered locally by the
	// persistence engine's backup fallback chain; never surfaces past Load.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrPersistence - disk write, copy, or rename failed during a save. Not
	// recoverable locally; propagated to the caller and broadcast to failure
	// listeners. The in-memory schema stays usable and dirty so the next
	// autosave tick retries.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound - resource not found. Record lookups on the store facade
	// report absence via an ok bool instead; this sentinel is for operations
	// that require the record to exist (e.g. ending a session).
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput - invalid input (empty capture text, rating out of range)
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionActive - a session for the project is still open
	ErrSessionActive = errors.New("session already active")
)
