package glide

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClusterScanCursor_GetCursorReturnsID(t *testing.T) {
	c := newClusterScanCursor("42")
	assert.Equal(t, "42", c.GetCursor())
}

func TestClusterScanCursor_ReleaseIsIdempotent(t *testing.T) {
	c := newClusterScanCursor(StartCursor)
	assert.NotPanics(t, func() {
		c.Release()
		c.Release()
		c.Release()
	})
}

func TestClusterScanCursor_StartCursorIsZero(t *testing.T) {
	assert.Equal(t, "0", StartCursor)
}
