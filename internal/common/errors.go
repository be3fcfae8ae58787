// Package common provides shared utilities for Equitas
package common

import "errors"

// Pipeline error taxonomy. Lower-level components never raise for
// degenerate-but-well-formed input; only these exceptional conditions
// propagate, wrapped with context via fmt.Errorf and %w.
var (
	// ErrDataUnavailable indicates an upstream statement or market source
	// returned nothing usable. Fatal for the current ticker's run.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrCapabilityFailure indicates the forecast/narrative capability
	// timed out, errored, or returned unparseable output. Non-fatal;
	// absorbed by the deterministic fallback for the affected year.
	ErrCapabilityFailure = errors.New("capability failure")

	// ErrPersistence indicates the store could not be written. Fatal to
	// the current step; previously persisted data is unaffected.
	ErrPersistence = errors.New("persistence failure")
)
