// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// InvalidReferenceError reports a reference that is malformed, unrecognised,
// empty, or too large to process. Never retried.
type InvalidReferenceError struct {
	Message string
}

func (e *InvalidReferenceError) Error() string { return e.Message }

// InvalidReferencef formats an InvalidReferenceError.
func InvalidReferencef(format string, args ...any) error {
	return &InvalidReferenceError{Message: fmt.Sprintf(format, args...)}
}

// EmptyPassageError reports retrieved text below the minimum-length floor.
// Raised before any generation call so no tokens are wasted on it.
type EmptyPassageError struct {
	Message string
}

func (e *EmptyPassageError) Error() string { return e.Message }

// EmptyPassagef formats an EmptyPassageError.
func EmptyPassagef(format string, args ...any) error {
	return &EmptyPassageError{Message: fmt.Sprintf(format, args...)}
}

// CitationOutOfRangeError reports a cited verse outside the valid source
// range, or a synthesis outline section without grounding.
type CitationOutOfRangeError struct {
	Message string
}

func (e *CitationOutOfRangeError) Error() string { return e.Message }

// CitationOutOfRangef formats a CitationOutOfRangeError.
func CitationOutOfRangef(format string, args ...any) error {
	return &CitationOutOfRangeError{Message: fmt.Sprintf(format, args...)}
}

// AnalysisFailedError reports structured output that could not be made valid
// after the full repair protocol, or a book pipeline that exceeded its
// segment failure threshold. RawResponse preserves the final model output
// for diagnostics when one exists.
type AnalysisFailedError struct {
	Message     string
	RawResponse string
}

func (e *AnalysisFailedError) Error() string { return e.Message }

// AnalysisFailedf formats an AnalysisFailedError with no raw response.
func AnalysisFailedf(format string, args ...any) error {
	return &AnalysisFailedError{Message: fmt.Sprintf(format, args...)}
}
