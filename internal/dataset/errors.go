package dataset

import "errors"

// Sentinel errors for load failures. Callers classify with errors.Is;
// wrapped errors carry the underlying detail.
var (
	// ErrSourceUnavailable means the source file could not be opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedRow means the source violated the delimited-text format,
	// for example an unterminated quoted field. The whole load is aborted;
	// rows are never silently skipped.
	ErrMalformedRow = errors.New("malformed row")

	// ErrNotReady means no dataset has been published yet. This is a
	// transient condition, not a load failure.
	ErrNotReady = errors.New("dataset not ready")
)
