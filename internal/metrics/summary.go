package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a recorded metric series.
type Summary struct {
	Samples int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// Summarize computes descriptive statistics of series. An empty series yields
// the zero Summary.
func Summarize(series []float64) Summary {
	if len(series) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(series, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Summary{
		Samples: len(series),
		Mean:    mean,
		StdDev:  std,
		Min:     floats.Min(series),
		Max:     floats.Max(series),
	}
}
