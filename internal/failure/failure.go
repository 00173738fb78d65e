// Package failure classifies pipeline errors for logging and run history.
package failure

import (
	"context"
	"errors"
)

// Classifier allows errors to declare their classification.
type Classifier interface {
	// ErrorKind returns a short snake_case classification such as "parse"
	// or "invalid_factor".
	ErrorKind() string
}

// Status values recorded for finished runs.
const (
	StatusSucceeded = "succeeded"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// Kind returns the classification of err, "canceled" for context
// cancellation, or "internal" when nothing in the chain classifies itself.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var classifier Classifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "internal"
}

// Status maps a run error to the status persisted in run history.
//
// Errors caused by the input document ("parse", "unsupported_version",
// "malformed", "invalid_factor") are StatusRejected: rerunning will not help
// until the input changes. Everything else is StatusFailed.
func Status(err error) string {
	if err == nil {
		return StatusSucceeded
	}
	switch Kind(err) {
	case "parse", "unsupported_version", "malformed", "invalid_factor":
		return StatusRejected
	case "canceled":
		return StatusCanceled
	default:
		return StatusFailed
	}
}
