package metrics

import "github.com/prometheus/client_golang/prometheus"

// registry is the process-global Prometheus registry backing get_statistics().
// It is nil until InitRegistry is called, matching the nil-safe metrics
// pattern used throughout this package: callers that never call InitRegistry
// pay no metrics overhead.
var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the Prometheus registry used by the engine metrics
// constructors in this package. It must be called before the first
// NewEngineMetrics call for metrics to be collected; otherwise every
// constructor in this package returns nil.
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the process-global registry. Callers must only
// invoke this after IsEnabled reports true.
func GetRegistry() *prometheus.Registry {
	return registry
}
