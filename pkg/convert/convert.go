// Package convert implements the server-side conversion broker.
//
// The broker orchestrates: validate, bound concurrency toward the rendering
// engine, call the engine adapter with a hard timeout, classify the outcome
// into a stable taxonomy, and respond. It is stateless across requests
// beyond the concurrency permit pool; ordering of concurrent requests is the
// editing client's responsibility (see the scheduler package).
package convert

import (
	"github.com/matzehuels/plantview/pkg/engine"
)

// Outcome classifies the result of a conversion into a stable taxonomy.
// The set is closed; the classifier handles every source condition
// exhaustively.
type Outcome string

const (
	// Success is a valid diagram rendered to image bytes.
	Success Outcome = "Success"

	// SyntaxError is an engine-detected diagram problem, rendered as an
	// error image. Not a hard failure: the payload carries the image.
	SyntaxError Outcome = "SyntaxError"

	// ValidationError is a client-fixable input problem that never reached
	// the engine.
	ValidationError Outcome = "ValidationError"

	// SystemError is an engine or infrastructure failure, including broker
	// overload; not user-actionable beyond retrying later.
	SystemError Outcome = "SystemError"

	// NetworkError means the engine could not be reached even after retry.
	NetworkError Outcome = "NetworkError"

	// Timeout means the engine did not respond within the request ceiling.
	Timeout Outcome = "Timeout"
)

// Request is a single conversion request.
// Version is minted by the editing client's scheduler and echoed back
// untouched; the broker never interprets it.
type Request struct {
	Content string        `json:"content"`
	Format  engine.Format `json:"format"`
	Version uint64        `json:"version,omitempty"`
}

// Result is the classified outcome of a conversion.
// Payload is present only on Success or SyntaxError (rendered error image).
type Result struct {
	Version uint64  `json:"version,omitempty"`
	Outcome Outcome `json:"outcome"`
	Payload []byte  `json:"-"`
	MIME    string  `json:"mime_type,omitempty"`
	Message string  `json:"message,omitempty"`
}

// HasPayload reports whether the result carries displayable image bytes.
func (r Result) HasPayload() bool {
	return len(r.Payload) > 0 && (r.Outcome == Success || r.Outcome == SyntaxError)
}
