package mux

import "math/rand"

// Sampler decides whether a given request gets an OTEL span attached.
type Sampler interface {
	Sample() bool
}

// alwaysSample and neverSample cover the two trivial rates without going
// through the RNG.
type alwaysSample struct{}

func (alwaysSample) Sample() bool { return true }

type neverSample struct{}

func (neverSample) Sample() bool { return false }

// AlwaysSample traces every request. NeverSample traces none.
var (
	AlwaysSample Sampler = alwaysSample{}
	NeverSample  Sampler = neverSample{}
)

// RateSampler samples at a fixed rate in [0, 1], sourced from
// pkg/config's TelemetryConfig.SampleRate.
type RateSampler struct {
	Rate float64
}

// NewRateSampler returns AlwaysSample/NeverSample for the trivial
// endpoints and a RateSampler otherwise.
func NewRateSampler(rate float64) Sampler {
	switch {
	case rate <= 0:
		return NeverSample
	case rate >= 1:
		return AlwaysSample
	default:
		return &RateSampler{Rate: rate}
	}
}

func (s *RateSampler) Sample() bool {
	return rand.Float64() < s.Rate
}
