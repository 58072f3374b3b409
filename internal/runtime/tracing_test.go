package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestCreateOtelSpan_NoOpWhenDisabled(t *testing.T) {
	handle := CreateOtelSpan(context.Background(), "Get")
	assert.Zero(t, handle)
}

func TestDropOtelSpan_ZeroHandleIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		DropOtelSpan(0)
	})
}

func TestSpanRegistry_TakeUnknownHandleReturnsFalse(t *testing.T) {
	reg := &spanRegistry{entries: make(map[uint64]trace.Span)}
	_, ok := reg.take(999)
	assert.False(t, ok)
}
