// Package errors provides common domain error types for the conversa analytics engine.
//
// This package defines sentinel errors for the engine's failure taxonomy so that
// callers can use consistent errors.Is() checks across all packages. Per-transcript
// and per-message failures are captured in result objects rather than returned;
// only ErrAggregationInconsistency ever aborts a call.
//
// Usage:
//
//	import cverrors "github.com/thevectorguy/conversa-ai/pkg/errors"
//
//	// Return a domain error
//	return nil, cverrors.ErrValidation
//
//	// Check for domain errors
//	if cverrors.IsExternalService(err) {
//	    // fall back to degraded scoring
//	}
package errors

import "errors"

// Domain errors - sentinel errors for the engine failure taxonomy.
var (
	// ErrValidation indicates malformed input shape. Recoverable: the entry is
	// excluded from processing and reported in the result's error list.
	ErrValidation = errors.New("validation error")

	// ErrScoringDegraded indicates a sentiment verdict was computed from only
	// one signal because the model signal was unavailable. Recoverable.
	ErrScoringDegraded = errors.New("scoring degraded")

	// ErrExternalService indicates a timeout or failure from a model
	// collaborator. Recoverable via per-component fallback.
	ErrExternalService = errors.New("external service error")

	// ErrAggregationInconsistency indicates an internal invariant violation,
	// e.g. row counts not summing. Fatal: it signals a programming defect and
	// aborts the current call.
	ErrAggregationInconsistency = errors.New("aggregation inconsistency")

	// ErrEmptyContent indicates content is empty or missing.
	ErrEmptyContent = errors.New("empty content")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")
)

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsScoringDegraded reports whether any error in err's chain is ErrScoringDegraded.
func IsScoringDegraded(err error) bool {
	return errors.Is(err, ErrScoringDegraded)
}

// IsExternalService reports whether any error in err's chain is ErrExternalService.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService)
}

// IsAggregationInconsistency reports whether any error in err's chain is ErrAggregationInconsistency.
func IsAggregationInconsistency(err error) bool {
	return errors.Is(err, ErrAggregationInconsistency)
}

// IsEmptyContent reports whether any error in err's chain is ErrEmptyContent.
func IsEmptyContent(err error) bool {
	return errors.Is(err, ErrEmptyContent)
}

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
