// Package apperrors defines the error taxonomy shared by the ingestion
// pipeline and the query path. Callers classify failures with errors.Is.
package apperrors

import "errors"

var (
	// ErrInvalidInput marks a caller error. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDocumentUnavailable means the raw document bytes could not be
	// fetched. Retryable at the queue level.
	ErrDocumentUnavailable = errors.New("document unavailable")

	// ErrUnsupportedFormat means text extraction does not support the
	// submitted file type. Permanent, never retried.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmbeddingUnavailable is a transient embedding capability failure.
	ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")

	// ErrGenerationUnavailable is a transient generation capability failure.
	// Surfaced to query callers as retryable, never retried silently.
	ErrGenerationUnavailable = errors.New("generation capability unavailable")

	// ErrClassificationParse means the model violated the classification
	// schema (missing tool call, unknown label, malformed arguments).
	ErrClassificationParse = errors.New("classification output violates schema")

	// ErrPermanentFailure marks a task that exhausted its retries and was
	// routed to the dead-letter archive.
	ErrPermanentFailure = errors.New("permanent ingestion failure")
)

// Retryable reports whether the failure is transient and worth redelivery.
func Retryable(err error) bool {
	return errors.Is(err, ErrDocumentUnavailable) ||
		errors.Is(err, ErrEmbeddingUnavailable) ||
		errors.Is(err, ErrGenerationUnavailable)
}

// Permanent reports whether retrying can never succeed.
func Permanent(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrPermanentFailure)
}
