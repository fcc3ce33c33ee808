package apperr

import "errors"

// Sentinel errors shared across services and handlers. Services wrap them with
// fmt.Errorf("...: %w", ...) so callers can match with errors.Is.
var (
	// ErrNotFound covers unknown batches and records, including batches that
	// belong to a different owner. Ownership misses are deliberately not
	// distinguishable from unknown ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks malformed caller payloads (negative amount, empty
	// content, unknown action).
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionFailed means the extraction engine was unreachable or
	// returned garbage. Retryable; no batch state is touched.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrInterpretationFailed means the instruction engine was unreachable or
	// returned garbage. Retryable; the open batch is left untouched.
	ErrInterpretationFailed = errors.New("interpretation failed")

	// ErrCommitFailed marks a persistence failure during the atomic commit.
	// The batch stays open with item statuses intact, so retrying is safe.
	ErrCommitFailed = errors.New("commit failed")
)
