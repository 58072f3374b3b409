package runtime

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"

	"github.com/valkey-io/valkey-glide-go/internal/telemetry"
)

// CreateOtelSpan starts a span named after name and returns an opaque
// handle C4 can attach to a dispatched message's root_span_ptr. A no-op
// (handle 0) is returned when telemetry is disabled. The sampling decision
// is made by the caller: the multiplexer calls this only when its Sampler
// says yes.
func CreateOtelSpan(ctx context.Context, name string) uint64 {
	if !telemetry.IsEnabled() {
		return 0
	}

	_, span := telemetry.StartSpan(ctx, name)
	return spans.put(span)
}

// DropOtelSpan ends the span behind handle and releases it. A zero handle
// is a no-op.
func DropOtelSpan(handle uint64) {
	if handle == 0 {
		return
	}
	if span, ok := spans.take(handle); ok {
		span.End()
	}
}

// InitOpenTelemetry wires the runtime's tracing hooks to a live OTLP
// exporter. Returns a shutdown function to flush and close it.
func InitOpenTelemetry(ctx context.Context, cfg telemetry.Config) (func(context.Context) error, error) {
	shutdown, err := telemetry.Init(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("runtime: init opentelemetry: %w", err)
	}
	return shutdown, nil
}

type spanRegistry struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[uint64]trace.Span
}

var spans = &spanRegistry{entries: make(map[uint64]trace.Span)}

func (r *spanRegistry) put(span trace.Span) uint64 {
	id := atomic.AddUint64(&r.nextID, 1)
	r.mu.Lock()
	r.entries[id] = span
	r.mu.Unlock()
	return id
}

func (r *spanRegistry) take(id uint64) (trace.Span, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	return span, ok
}
