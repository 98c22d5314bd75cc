package scraper

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoEssentialData means extraction finished but price, address and images
// all came back empty.
var ErrNoEssentialData = errors.New("no essential data")

// ValidationError rejects a URL before any network call is made.
type ValidationError struct {
	URL    string
	Source SourceKind
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("invalid %s url %q: %s", e.Source, e.URL, e.Reason)
	}
	return fmt.Sprintf("invalid url %q: %s", e.URL, e.Reason)
}

// UnsupportedSourceError means no classifier pattern matched.
type UnsupportedSourceError struct {
	URL      string
	Patterns []string
}

func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("unsupported source url %q (tested: %s)", e.URL, strings.Join(e.Patterns, ", "))
}

// Unwrap lets callers treat an unsupported source as a validation failure.
func (e *UnsupportedSourceError) Unwrap() error {
	return &ValidationError{URL: e.URL, Reason: "unsupported source"}
}

// ExtractionError is a terminal extraction failure: the service reported a
// failure, retries or polls ran out, or nothing usable came back.
type ExtractionError struct {
	URL    string
	JobID  string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("extraction failed for %s", e.URL)
	if e.JobID != "" {
		msg += fmt.Sprintf(" (job %s)", e.JobID)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil && (e.Reason == "" || e.Err.Error() != e.Reason) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
