package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/valkey-io/valkey-glide-go/pkg/metrics"
)

func init() {
	metrics.RegisterEngineMetricsConstructor(newEngineMetrics)
}

// engineMetrics is the Prometheus implementation of metrics.EngineMetrics.
type engineMetrics struct {
	slotsInUse      prometheus.Gauge
	slotsCapacity   prometheus.Gauge
	freeListLength  prometheus.Gauge
	pushQueueDepth  prometheus.Gauge
	responses       *prometheus.CounterVec
	responseLatency *prometheus.HistogramVec
	requestBytes    prometheus.Histogram
}

// newEngineMetrics creates a new Prometheus-backed EngineMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func newEngineMetrics() metrics.EngineMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &engineMetrics{
		slotsInUse: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "glide_callback_slots_in_use",
				Help: "Number of callback slots currently awaiting a response",
			},
		),
		slotsCapacity: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "glide_callback_slots_capacity",
				Help: "Current size of the callback slot table",
			},
		),
		freeListLength: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "glide_callback_slots_free",
				Help: "Length of the callback slot free list",
			},
		),
		pushQueueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "glide_push_queue_depth",
				Help: "Depth of the pull-mode push message queue",
			},
		),
		responses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "glide_responses_total",
				Help: "Total number of responses dispatched to callback slots, by kind",
			},
			[]string{"kind"},
		),
		responseLatency: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "glide_response_latency_milliseconds",
				Help: "Round-trip latency from request dispatch to response resolution",
				Buckets: []float64{
					0.1,
					0.5,
					1,
					5,
					10,
					50,
					100,
					500,
					1000,
				},
			},
			[]string{"kind"},
		),
		requestBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "glide_request_argument_bytes",
				Help: "Distribution of request argument payload sizes",
				Buckets: []float64{
					64,
					256,
					1024,
					1024 * 50,
					1024 * 200,
					1024 * 1024,
				},
			},
		),
	}
}

func (m *engineMetrics) SetSlotTableOccupancy(inUse, capacity int) {
	if m == nil {
		return
	}
	m.slotsInUse.Set(float64(inUse))
	m.slotsCapacity.Set(float64(capacity))
}

func (m *engineMetrics) SetFreeListLength(length int) {
	if m == nil {
		return
	}
	m.freeListLength.Set(float64(length))
}

func (m *engineMetrics) SetPushQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.pushQueueDepth.Set(float64(depth))
}

func (m *engineMetrics) ObserveResponse(kind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(kind).Inc()
	m.responseLatency.WithLabelValues(kind).Observe(duration.Seconds() * 1000)
}

func (m *engineMetrics) ObserveRequestBytes(bytes int64) {
	if m == nil {
		return
	}
	m.requestBytes.Observe(float64(bytes))
}
