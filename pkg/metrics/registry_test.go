package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitRegistry_EnablesMetrics(t *testing.T) {
	enabled = false
	registry = nil

	reg := InitRegistry()

	assert.True(t, IsEnabled())
	assert.Same(t, reg, GetRegistry())

	enabled = false
	registry = nil
}
