package runtime

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Core is the FFI surface the binding consumes from the Runtime Core: the
// RESP protocol engine and TCP transport this package hands UDS traffic to.
// The Runtime Core itself is out of scope (spec.md §1) — Core exists so
// the multiplexer can be built and tested against a real pointer-ownership
// contract without depending on that external engine.
type Core interface {
	// LeakByteVec transfers ownership of args to the runtime, returning an
	// opaque pointer the runtime is responsible for freeing.
	LeakByteVec(args [][]byte) (uint64, error)
	// ValueFromPointer decodes a RESP-derived value handle into a native
	// representation (bytes / number / list / map), consuming the handle.
	ValueFromPointer(ptr uint64) (any, error)
}

// pointerCore is the default Core: an in-process stand-in for the pointer
// bookkeeping a real FFI bridge would do in native memory.
type pointerCore struct {
	mu      sync.Mutex
	nextPtr uint64
	values  map[uint64]any
}

// DefaultCore returns the process's Core instance, valid for the lifetime
// of the program.
func DefaultCore() Core {
	return defaultCore
}

var defaultCore = &pointerCore{values: make(map[uint64]any)}

func (c *pointerCore) LeakByteVec(args [][]byte) (uint64, error) {
	owned := make([][]byte, len(args))
	for i, a := range args {
		owned[i] = append([]byte(nil), a...)
	}

	ptr := atomic.AddUint64(&c.nextPtr, 1)
	c.mu.Lock()
	c.values[ptr] = owned
	c.mu.Unlock()
	return ptr, nil
}

// PutValue registers a decoded value under a freshly minted pointer. The
// Runtime Core calls the equivalent of this on the far side of the FFI
// boundary when it produces a resp_pointer response; tests use it to
// simulate that without a live Valkey server.
func (c *pointerCore) PutValue(v any) uint64 {
	ptr := atomic.AddUint64(&c.nextPtr, 1)
	c.mu.Lock()
	c.values[ptr] = v
	c.mu.Unlock()
	return ptr
}

func (c *pointerCore) ValueFromPointer(ptr uint64) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.values[ptr]
	if !ok {
		return nil, fmt.Errorf("runtime: value_from_pointer: unknown pointer %d", ptr)
	}
	delete(c.values, ptr)
	return v, nil
}
