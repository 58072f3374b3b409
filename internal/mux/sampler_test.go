package mux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRateSampler_TrivialRatesReturnSingletons(t *testing.T) {
	assert.Same(t, AlwaysSample, NewRateSampler(1))
	assert.Same(t, AlwaysSample, NewRateSampler(2))
	assert.Same(t, NeverSample, NewRateSampler(0))
	assert.Same(t, NeverSample, NewRateSampler(-1))
}

func TestNewRateSampler_MidRangeSamplesProbabilistically(t *testing.T) {
	s := NewRateSampler(0.5)
	_, ok := s.(*RateSampler)
	assert.True(t, ok)

	hits, misses := 0, 0
	for i := 0; i < 200; i++ {
		if s.Sample() {
			hits++
		} else {
			misses++
		}
	}
	assert.Positive(t, hits)
	assert.Positive(t, misses)
}
