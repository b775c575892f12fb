package document

import (
	"fmt"
	"strings"
)

// Diagram source must be delimited by these markers for the rendering engine
// to accept it as a complete diagram.
const (
	StartMarker = "@startuml"
	EndMarker   = "@enduml"
)

// DefaultMaxChars is the default content length ceiling
// (300 lines x 80 chars per line).
const DefaultMaxChars = 24000

// ValidationCode identifies which validation rule rejected the content.
type ValidationCode string

// Validation failure codes, one per rule, in check order.
const (
	EmptyContent       ValidationCode = "EMPTY_CONTENT"
	MissingStartMarker ValidationCode = "MISSING_START_MARKER"
	MissingEndMarker   ValidationCode = "MISSING_END_MARKER"
	ContentTooLarge    ValidationCode = "CONTENT_TOO_LARGE"
)

// ValidationError reports a content validation failure.
// Actual and Max are populated only for ContentTooLarge.
type ValidationError struct {
	Code   ValidationCode
	Actual int
	Max    int
}

// Error implements the error interface with a fixed message per code.
func (e *ValidationError) Error() string {
	switch e.Code {
	case EmptyContent:
		return "diagram source is empty"
	case MissingStartMarker:
		return fmt.Sprintf("diagram source is missing the %s marker", StartMarker)
	case MissingEndMarker:
		return fmt.Sprintf("diagram source is missing the %s marker", EndMarker)
	case ContentTooLarge:
		return fmt.Sprintf("diagram source too large: %d characters (limit: %d)", e.Actual, e.Max)
	default:
		return "invalid diagram source"
	}
}

// Validate checks diagram source content before any network call.
//
// Checks run in order and short-circuit on the first failure:
//  1. non-empty after trimming whitespace
//  2. contains the start marker
//  3. contains the end marker
//  4. length within maxChars (DefaultMaxChars if maxChars <= 0)
//
// Validate is pure and deterministic. It runs identically on the editing
// client (fast feedback, no round trip) and on the server (defense in depth
// against clients that skip it).
func Validate(content string, maxChars int) error {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	if strings.TrimSpace(content) == "" {
		return &ValidationError{Code: EmptyContent}
	}
	if !strings.Contains(content, StartMarker) {
		return &ValidationError{Code: MissingStartMarker}
	}
	if !strings.Contains(content, EndMarker) {
		return &ValidationError{Code: MissingEndMarker}
	}
	if len(content) > maxChars {
		return &ValidationError{Code: ContentTooLarge, Actual: len(content), Max: maxChars}
	}
	return nil
}
