package project

import (
	"fmt"

	"tscproj/internal/tree"
)

// ParseError reports text that is not well-formed JSON.
type ParseError struct {
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse project at byte %d: %v", e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrorKind implements failure.Classifier.
func (e *ParseError) ErrorKind() string { return "parse" }

// UnsupportedVersionError reports a schema version outside the known range or
// one that cannot be determined.
type UnsupportedVersionError struct {
	Declared string
	Reason   string
}

func (e *UnsupportedVersionError) Error() string {
	if e.Declared == "" {
		return "unsupported project version: " + e.Reason
	}
	return fmt.Sprintf("unsupported project version %q: %s", e.Declared, e.Reason)
}

// ErrorKind implements failure.Classifier.
func (e *UnsupportedVersionError) ErrorKind() string { return "unsupported_version" }

// MalformedDocumentError reports a required subtree that is missing or has the
// wrong shape.
type MalformedDocumentError struct {
	Path   tree.Path
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed project: %s: %s", e.Path, e.Reason)
}

// ErrorKind implements failure.Classifier.
func (e *MalformedDocumentError) ErrorKind() string { return "malformed" }

// Warning is a non-fatal diagnostic attached to a successful result.
type Warning struct {
	Path    tree.Path
	Message string
}

func (w Warning) String() string {
	return w.Path.String() + ": " + w.Message
}
