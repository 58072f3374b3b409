package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation
// and querying across the engine's components (C1-C5).
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Session / transport
	// ========================================================================
	KeySocketPath = "socket_path" // UDS path the session is bound to
	KeyChunkBytes = "chunk_bytes" // bytes read in one reader-loop iteration

	// ========================================================================
	// Multiplexer / callback slots
	// ========================================================================
	KeyCallbackSlot = "callback_slot" // callback slot id
	KeyRequestType  = "request_type"  // command request type name, or "Batch"
	KeyIsPush       = "is_push"       // whether a response is a push notification
	KeyArgBytes     = "arg_bytes"     // sum of argument byte-lengths for a request
	KeyPointerArgs  = "pointer_args"  // whether arguments were sent as a leaked pointer
	KeyFreeListLen  = "free_list_len" // length of the recycled-slot free list

	// ========================================================================
	// Batches
	// ========================================================================
	KeyBatchSize    = "batch_size"
	KeyIsAtomic     = "is_atomic"
	KeyRaiseOnError = "raise_on_error"

	// ========================================================================
	// Push channel / pub-sub
	// ========================================================================
	KeyPushKind    = "push_kind"
	KeyChannel     = "channel"
	KeyPattern     = "pattern"
	KeyQueueDepth  = "queue_depth"
	KeyAwaiterKind = "awaiter_kind"

	// ========================================================================
	// Cluster scan
	// ========================================================================
	KeyCursor = "cursor"

	// ========================================================================
	// Errors
	// ========================================================================
	KeyErrorKind  = "error_kind"
	KeyMessage    = "message"
	KeyError      = "error"       // error message
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
)

// SocketPath returns a slog.Attr for the session's UDS path
func SocketPath(path string) slog.Attr {
	return slog.String(KeySocketPath, path)
}

// CallbackSlot returns a slog.Attr for a callback slot id
func CallbackSlot(id uint32) slog.Attr {
	return slog.Uint64(KeyCallbackSlot, uint64(id))
}

// RequestType returns a slog.Attr for a command request type name
func RequestType(name string) slog.Attr {
	return slog.String(KeyRequestType, name)
}

// IsPush returns a slog.Attr indicating whether a response is a push notification
func IsPush(isPush bool) slog.Attr {
	return slog.Bool(KeyIsPush, isPush)
}

// ArgBytes returns a slog.Attr for the total argument byte-length of a request
func ArgBytes(n int) slog.Attr {
	return slog.Int(KeyArgBytes, n)
}

// PointerArgs returns a slog.Attr indicating pointer-variant argument transfer
func PointerArgs(pointer bool) slog.Attr {
	return slog.Bool(KeyPointerArgs, pointer)
}

// FreeListLen returns a slog.Attr for the recycled-slot free list length
func FreeListLen(n int) slog.Attr {
	return slog.Int(KeyFreeListLen, n)
}

// BatchSize returns a slog.Attr for the number of commands in a batch
func BatchSize(n int) slog.Attr {
	return slog.Int(KeyBatchSize, n)
}

// PushKind returns a slog.Attr for the decoded push-notification kind
func PushKind(kind string) slog.Attr {
	return slog.String(KeyPushKind, kind)
}

// Channel returns a slog.Attr for a pub/sub channel name
func Channel(channel string) slog.Attr {
	return slog.String(KeyChannel, channel)
}

// Pattern returns a slog.Attr for a pub/sub subscription pattern
func Pattern(pattern string) slog.Attr {
	return slog.String(KeyPattern, pattern)
}

// QueueDepth returns a slog.Attr for a queue's current length
func QueueDepth(n int) slog.Attr {
	return slog.Int(KeyQueueDepth, n)
}

// Cursor returns a slog.Attr for a cluster scan cursor value
func Cursor(cursor string) slog.Attr {
	return slog.String(KeyCursor, cursor)
}

// ErrorKind returns a slog.Attr naming an error taxonomy kind
func ErrorKind(kind string) slog.Attr {
	return slog.String(KeyErrorKind, kind)
}

// Err returns a slog.Attr for an error, or a zero-value attr if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
