package metrics

import "github.com/san-kum/particlesim/internal/sim"

// Stability reports the fraction of frames in which another sampler's reading
// stayed at or below threshold.
type Stability struct {
	name       string
	source     sim.Sampler
	threshold  float64
	violations int
	samples    int
}

func NewStability(source sim.Sampler, threshold float64) *Stability {
	return &Stability{
		name:      source.Name() + "_stability",
		source:    source,
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

// Observe reads the source's current sample; the source must be observed first.
func (s *Stability) Observe(frame int, t float64) {
	s.samples++
	if s.source.Sample() > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
