// Package glideerr defines the engine's error taxonomy (spec.md §7): kinds,
// not a class hierarchy. Every kind implements GlideError so callers can
// dispatch with errors.As regardless of which layer raised it.
package glideerr

import "fmt"

// GlideError is implemented by every error kind this engine raises.
type GlideError interface {
	error
	glideError()
}

// ClosingError means the session is terminal: raised synchronously on any
// call after close, raised asynchronously on every live awaiter during
// close, and raised when the runtime emits a closing_error response or the
// stream read returns EOF.
type ClosingError struct {
	Message string
}

func (e *ClosingError) Error() string { return fmt.Sprintf("glide: closing: %s", e.Message) }
func (*ClosingError) glideError()      {}

// ConnectionError is a request-level disconnection, retriable at the
// caller's discretion.
type ConnectionError struct {
	Message string
}

func (e *ConnectionError) Error() string { return fmt.Sprintf("glide: connection: %s", e.Message) }
func (*ConnectionError) glideError()      {}

// TimeoutError is a request-level timeout from the Runtime Core.
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("glide: timeout: %s", e.Message) }
func (*TimeoutError) glideError()      {}

// ExecAbortError means a transaction aborted server-side (watched key
// modified, etc.).
type ExecAbortError struct {
	Message string
}

func (e *ExecAbortError) Error() string { return fmt.Sprintf("glide: exec abort: %s", e.Message) }
func (*ExecAbortError) glideError()      {}

// RequestError is any other per-request failure reported by the
// server/runtime (the Unspecified wire kind).
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return fmt.Sprintf("glide: request: %s", e.Message) }
func (*RequestError) glideError()      {}

// ConfigurationError is a synchronous misuse of the API that never crosses
// the IPC boundary (e.g. requesting a pubsub message when no subscriptions
// are configured, or when a callback is installed).
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return fmt.Sprintf("glide: configuration: %s", e.Message) }
func (*ConfigurationError) glideError()      {}
