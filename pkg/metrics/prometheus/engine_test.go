package prometheus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkey-io/valkey-glide-go/pkg/metrics"
	_ "github.com/valkey-io/valkey-glide-go/pkg/metrics/prometheus"
)

func TestNewEngineMetrics_RegistersAgainstLiveRegistry(t *testing.T) {
	metrics.InitRegistry()

	m := metrics.NewEngineMetrics()
	require.NotNil(t, m)

	assert.NotPanics(t, func() {
		m.SetSlotTableOccupancy(3, 16)
		m.SetFreeListLength(13)
		m.SetPushQueueDepth(2)
		m.ObserveResponse(metrics.ResponseKindOK, 2*time.Millisecond)
		m.ObserveRequestBytes(512)
	})
}
