package sim

import "time"

// Metric accumulates a scalar over a run. Observe is called after every frame.
type Metric interface {
	Name() string
	Observe(frame int, t float64)
	Value() float64
	Reset()
}

// Sampler is a Metric that also exposes its per-frame reading, recorded into
// Result.Series.
type Sampler interface {
	Metric
	Sample() float64
}

type Observer interface {
	OnFrame(frame int, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		ValidateState: true,
	}
}

type Result struct {
	Frames  int
	Times   []float64
	Series  map[string][]float64
	Metrics map[string]float64
	Wall    time.Duration
}
