package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	TraceID      string    // OpenTelemetry trace ID
	SpanID       string    // OpenTelemetry span ID
	RequestType  string    // command request type (GET, SET, Batch, ...)
	SocketPath   string    // UDS path for the owning session
	CallbackSlot uint32    // callback slot id the entry pertains to
	StartTime    time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a session bound to socketPath
func NewLogContext(socketPath string) *LogContext {
	return &LogContext{
		SocketPath: socketPath,
		StartTime:  time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:      lc.TraceID,
		SpanID:       lc.SpanID,
		RequestType:  lc.RequestType,
		SocketPath:   lc.SocketPath,
		CallbackSlot: lc.CallbackSlot,
		StartTime:    lc.StartTime,
	}
}

// WithRequestType returns a copy with the request type set
func (lc *LogContext) WithRequestType(requestType string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.RequestType = requestType
	}
	return clone
}

// WithCallbackSlot returns a copy with the callback slot set
func (lc *LogContext) WithCallbackSlot(slot uint32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.CallbackSlot = slot
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
