package runtime

import (
	"fmt"

	"github.com/valkey-io/valkey-glide-go/pkg/metrics"
)

// GetStatistics returns the statistics map named in spec.md §6: a flat
// snapshot of every sample currently held by the metrics registry (slot
// table occupancy, push-queue depth, per-response-kind counters), keyed by
// metric name plus its label set. Returns an empty map when metrics are
// disabled.
func GetStatistics() (map[string]float64, error) {
	out := make(map[string]float64)
	if !metrics.IsEnabled() {
		return out, nil
	}

	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return nil, fmt.Errorf("runtime: get_statistics: %w", err)
	}

	for _, family := range families {
		for _, sample := range family.GetMetric() {
			key := family.GetName()
			for _, label := range sample.GetLabel() {
				key += fmt.Sprintf("{%s=%q}", label.GetName(), label.GetValue())
			}

			switch {
			case sample.GetGauge() != nil:
				out[key] = sample.GetGauge().GetValue()
			case sample.GetCounter() != nil:
				out[key] = sample.GetCounter().GetValue()
			case sample.GetHistogram() != nil:
				out[key+"_count"] = float64(sample.GetHistogram().GetSampleCount())
				out[key+"_sum"] = sample.GetHistogram().GetSampleSum()
			}
		}
	}

	return out, nil
}
