package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// ConnectError indicates the connection to the engine could not be
// established at all. This is the only failure class the broker retries,
// since nothing was sent and the engine never saw the request.
type ConnectError struct{ Err error }

func (e *ConnectError) Error() string { return fmt.Sprintf("engine unreachable: %v", e.Err) }
func (e *ConnectError) Unwrap() error { return e.Err }

// StatusError indicates the engine replied with a non-2xx status.
type StatusError struct{ Status int }

func (e *StatusError) Error() string { return fmt.Sprintf("engine returned status %d", e.Status) }

// IsConnectError reports whether err is a connection-establishment failure.
func IsConnectError(err error) bool {
	var ce *ConnectError
	return errors.As(err, &ce)
}

// IsTimeout reports whether err is a deadline/timeout failure.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}

// classifyTransport converts an http.Client transport error into the
// adapter's typed errors. Dial failures become ConnectError; deadline
// failures pass through so the caller sees them as timeouts; everything
// else (connection reset mid-flight, protocol errors) passes through as-is.
func classifyTransport(err error) error {
	if IsTimeout(err) {
		return err
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &ConnectError{Err: err}
	}
	return err
}
