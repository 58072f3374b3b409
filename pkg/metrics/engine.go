package metrics

import "time"

// EngineMetrics is the nil-safe statistics sink backing GetStatistics.
// A nil EngineMetrics is valid everywhere: every helper in this file treats
// it as zero overhead, matching the pattern used throughout this package.
type EngineMetrics interface {
	// SetSlotTableOccupancy records the number of callback slots currently
	// in use out of capacity.
	SetSlotTableOccupancy(inUse, capacity int)
	// SetFreeListLength records the length of the slot free list.
	SetFreeListLength(length int)
	// SetPushQueueDepth records the depth of the pull-mode push queue.
	SetPushQueueDepth(depth int)
	// ObserveResponse records one completed response of the given kind
	// (see ResponseKind* constants) and the round-trip latency that
	// produced it.
	ObserveResponse(kind string, duration time.Duration)
	// ObserveRequestBytes records the inline-or-pointer argument payload
	// size of a dispatched request.
	ObserveRequestBytes(bytes int64)
}

// Response kinds recorded by ObserveResponse, mirroring the error taxonomy
// and the success/push outcomes a callback slot can resolve with.
const (
	ResponseKindOK            = "ok"
	ResponseKindPush          = "push"
	ResponseKindClosing       = "closing"
	ResponseKindConnection    = "connection"
	ResponseKindTimeout       = "timeout"
	ResponseKindExecAbort     = "exec_abort"
	ResponseKindRequest       = "request"
	ResponseKindConfiguration = "configuration"
)

// NewEngineMetrics creates a new Prometheus-backed EngineMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called). When nil
// is returned, callers should pass nil to the multiplexer and push channel,
// which results in zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	engineMetrics := metrics.NewEngineMetrics()
//	mx := mux.New(core, constants, sampler, engineMetrics)
//
//	// Without metrics (zero overhead)
//	mx := mux.New(core, constants, sampler, nil)
func NewEngineMetrics() EngineMetrics {
	if !IsEnabled() {
		return nil
	}

	// Import prometheus package to access implementation
	// This breaks the import cycle by using interface return type
	return newPrometheusEngineMetrics()
}

// newPrometheusEngineMetrics is implemented in pkg/metrics/prometheus/engine.go
// This indirection avoids import cycles while keeping the API clean
var newPrometheusEngineMetrics func() EngineMetrics

// RegisterEngineMetricsConstructor registers the Prometheus engine metrics
// constructor. Called by pkg/metrics/prometheus/engine.go during package
// initialization.
func RegisterEngineMetricsConstructor(constructor func() EngineMetrics) {
	newPrometheusEngineMetrics = constructor
}

// SetSlotTableOccupancy records callback slot-table occupancy.
//
// Example usage:
//
//	metrics.SetSlotTableOccupancy(engineMetrics, inUse, capacity)
func SetSlotTableOccupancy(m EngineMetrics, inUse, capacity int) {
	if m != nil {
		m.SetSlotTableOccupancy(inUse, capacity)
	}
}

// SetFreeListLength records the slot free-list length.
func SetFreeListLength(m EngineMetrics, length int) {
	if m != nil {
		m.SetFreeListLength(length)
	}
}

// SetPushQueueDepth records pull-mode push queue depth.
func SetPushQueueDepth(m EngineMetrics, depth int) {
	if m != nil {
		m.SetPushQueueDepth(depth)
	}
}

// ObserveResponse records a completed response and its latency.
//
// Example usage:
//
//	start := time.Now()
//	_, err := mx.SendSingleCommand(ctx, "Get", reqType, nil, args)
//	if err == nil {
//		metrics.ObserveResponse(engineMetrics, metrics.ResponseKindOK, time.Since(start))
//	}
func ObserveResponse(m EngineMetrics, kind string, duration time.Duration) {
	if m != nil {
		m.ObserveResponse(kind, duration)
	}
}

// ObserveRequestBytes records a dispatched request's argument payload size.
func ObserveRequestBytes(m EngineMetrics, bytes int64) {
	if m != nil {
		m.ObserveRequestBytes(bytes)
	}
}
