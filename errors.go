package glide

import "github.com/valkey-io/valkey-glide-go/internal/glideerr"

// GlideError is implemented by every error kind this package raises.
// Callers dispatch on the concrete kind with errors.As, per spec.md §7's
// "taxonomy of kinds, not types".
type GlideError = glideerr.GlideError

// ClosingError means the client is terminal: returned synchronously by any
// call after Close, and delivered to every in-flight request when the
// session closes (EOF, a closing_error response, or an explicit Close).
type ClosingError = glideerr.ClosingError

// ConnectionError is a request-level disconnection, retriable at the
// caller's discretion.
type ConnectionError = glideerr.ConnectionError

// TimeoutError is a request-level timeout reported by the runtime.
type TimeoutError = glideerr.TimeoutError

// ExecAbortError means a transaction aborted server-side (a watched key
// changed, etc).
type ExecAbortError = glideerr.ExecAbortError

// RequestError is any other per-request failure reported by the server.
type RequestError = glideerr.RequestError

// ConfigurationError is a synchronous misuse of the API that never reaches
// the wire: invalid ClientConfiguration, requesting a pubsub message with
// no subscriptions configured, or when a callback is installed.
type ConfigurationError = glideerr.ConfigurationError
