package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for engine operations.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Session / transport attributes
	// ========================================================================
	AttrSocketPath = "glide.socket_path" // UDS path the session is bound to
	AttrClientName = "glide.client_name"
	AttrChunkBytes = "glide.chunk_bytes" // bytes read in one reader-loop iteration

	// ========================================================================
	// Multiplexer attributes
	// ========================================================================
	AttrCallbackSlot = "glide.callback_slot" // callback slot id, the engine's analogue of an RPC xid
	AttrRequestType  = "glide.request_type"  // command request type, or "Batch"
	AttrArgBytes     = "glide.arg_bytes"     // sum of argument byte-lengths
	AttrPointerArgs  = "glide.pointer_args"  // whether arguments were sent by leaked pointer
	AttrFreeListLen  = "glide.free_list_len"
	AttrIsPush       = "glide.is_push"    // whether a response is a push notification
	AttrErrorKind    = "glide.error_kind" // taxonomy kind of a resolved error, if any

	// ========================================================================
	// Batch attributes
	// ========================================================================
	AttrBatchSize    = "glide.batch_size"
	AttrIsAtomic     = "glide.is_atomic"
	AttrRaiseOnError = "glide.raise_on_error"

	// ========================================================================
	// Push channel / pub-sub attributes
	// ========================================================================
	AttrPushKind    = "glide.push_kind"
	AttrChannel     = "glide.channel"
	AttrPattern     = "glide.pattern"
	AttrQueueDepth  = "glide.queue_depth"
	AttrAwaiterKind = "glide.awaiter_kind"

	// ========================================================================
	// Cluster scan attributes
	// ========================================================================
	AttrCursor = "glide.cursor"
)

// Span name for batch requests. Per the multiplexer's tracing contract,
// a batch request always uses this literal span name regardless of the
// individual commands it carries.
const SpanBatch = "Batch"

// SocketPath returns an attribute for the session's UDS path.
func SocketPath(path string) attribute.KeyValue {
	return attribute.String(AttrSocketPath, path)
}

// ClientName returns an attribute for the client's configured name.
func ClientName(name string) attribute.KeyValue {
	return attribute.String(AttrClientName, name)
}

// ChunkBytes returns an attribute for a reader-loop chunk size.
func ChunkBytes(n int) attribute.KeyValue {
	return attribute.Int(AttrChunkBytes, n)
}

// CallbackSlot returns an attribute for a callback slot id.
func CallbackSlot(id uint32) attribute.KeyValue {
	return attribute.Int64(AttrCallbackSlot, int64(id))
}

// RequestType returns an attribute for a command request type name.
func RequestType(name string) attribute.KeyValue {
	return attribute.String(AttrRequestType, name)
}

// ArgBytes returns an attribute for the total argument byte-length of a request.
func ArgBytes(n int) attribute.KeyValue {
	return attribute.Int(AttrArgBytes, n)
}

// PointerArgs returns an attribute indicating pointer-variant argument transfer.
func PointerArgs(pointer bool) attribute.KeyValue {
	return attribute.Bool(AttrPointerArgs, pointer)
}

// FreeListLen returns an attribute for the recycled-slot free list length.
func FreeListLen(n int) attribute.KeyValue {
	return attribute.Int(AttrFreeListLen, n)
}

// IsPush returns an attribute indicating whether a response is a push notification.
func IsPush(isPush bool) attribute.KeyValue {
	return attribute.Bool(AttrIsPush, isPush)
}

// ErrorKind returns an attribute naming the error taxonomy kind.
func ErrorKind(kind string) attribute.KeyValue {
	return attribute.String(AttrErrorKind, kind)
}

// BatchSize returns an attribute for the number of commands in a batch.
func BatchSize(n int) attribute.KeyValue {
	return attribute.Int(AttrBatchSize, n)
}

// RaiseOnError returns an attribute for a batch's raise-on-error setting.
func RaiseOnError(raise bool) attribute.KeyValue {
	return attribute.Bool(AttrRaiseOnError, raise)
}

// PushKind returns an attribute for the decoded push-notification kind.
func PushKind(kind string) attribute.KeyValue {
	return attribute.String(AttrPushKind, kind)
}

// Channel returns an attribute for a pub/sub channel name.
func Channel(channel string) attribute.KeyValue {
	return attribute.String(AttrChannel, channel)
}

// Pattern returns an attribute for a pub/sub subscription pattern.
func Pattern(pattern string) attribute.KeyValue {
	return attribute.String(AttrPattern, pattern)
}

// QueueDepth returns an attribute for a queue's current length.
func QueueDepth(n int) attribute.KeyValue {
	return attribute.Int(AttrQueueDepth, n)
}

// Cursor returns an attribute for a cluster scan cursor value.
func Cursor(cursor string) attribute.KeyValue {
	return attribute.String(AttrCursor, cursor)
}

// StartRequestSpan starts a span for a single command request, named after
// its request type (e.g. "Get", "Set"). The slot is attached so the span can
// be correlated back to the multiplexer's callback table.
func StartRequestSpan(ctx context.Context, requestType string, slot uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		RequestType(requestType),
		CallbackSlot(slot),
	}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, requestType, trace.WithAttributes(allAttrs...))
}

// StartBatchSpan starts a span for a batch request. Per the batch tracing
// contract this always uses the fixed span name SpanBatch.
func StartBatchSpan(ctx context.Context, slot uint32, size int, atomic bool, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		CallbackSlot(slot),
		BatchSize(size),
		attribute.Bool(AttrIsAtomic, atomic),
	}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, SpanBatch, trace.WithAttributes(allAttrs...))
}

// StartPushSpan starts a span for delivering a decoded push notification.
func StartPushSpan(ctx context.Context, kind string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{PushKind(kind)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "push."+kind, trace.WithAttributes(allAttrs...))
}
