package convert

import (
	"context"
	"errors"

	"github.com/matzehuels/plantview/pkg/document"
	"github.com/matzehuels/plantview/pkg/engine"
)

// Fixed user-facing message templates, one per outcome. Raw transport or
// engine diagnostics never leave the broker.
const (
	msgSyntaxError = "The diagram has a syntax problem; see the rendered error image."
	msgSystemError = "A system error occurred. Check the rendering engine and try again later."
	msgOverloaded  = "The rendering engine is busy. Try again in a moment."
	msgNetwork     = "A network error occurred. Check the connection and retry."
	msgTimeout     = "The rendering engine did not respond in time. Retry later."
)

// Message returns the fixed user-facing template for an outcome.
// ValidationError messages come from the validator itself (its messages are
// fixed per rule and safe to surface).
func Message(o Outcome) string {
	switch o {
	case SyntaxError:
		return msgSyntaxError
	case NetworkError:
		return msgNetwork
	case Timeout:
		return msgTimeout
	default:
		return msgSystemError
	}
}

// classifyValidation builds the result for a validator rejection.
func classifyValidation(verr *document.ValidationError) Result {
	return Result{Outcome: ValidationError, Message: verr.Error()}
}

// classifyRender maps an engine round-trip outcome to the taxonomy:
//
//	validator rejection                      -> ValidationError (handled earlier)
//	2xx with error-rendered image            -> SyntaxError
//	non-2xx, or reset after retry            -> SystemError
//	connection not established, after retry  -> NetworkError
//	no response within the timeout           -> Timeout
func classifyRender(out *engine.Output, err error) Result {
	if err == nil {
		if out.SyntaxError {
			return Result{Outcome: SyntaxError, Payload: out.Data, MIME: out.MIME, Message: msgSyntaxError}
		}
		return Result{Outcome: Success, Payload: out.Data, MIME: out.MIME}
	}

	switch {
	case engine.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded):
		return Result{Outcome: Timeout, Message: msgTimeout}
	case engine.IsConnectError(err):
		return Result{Outcome: NetworkError, Message: msgNetwork}
	default:
		// Non-2xx status, connection reset mid-flight, malformed response.
		return Result{Outcome: SystemError, Message: msgSystemError}
	}
}
