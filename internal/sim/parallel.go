package sim

import (
	"context"

	"github.com/san-kum/particlesim/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Factory builds an independent space and its metrics for one ensemble member.
type Factory func(seed int64) (dynamo.Stepper, []Metric, error)

// Ensemble runs independently seeded spaces concurrently. Each space is owned
// by exactly one goroutine.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart int64
}

func NewEnsemble(factory Factory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			space, metrics, err := e.factory(e.seedStart + int64(idx))
			if err != nil {
				return err
			}

			s := New(space)
			for _, m := range metrics {
				s.AddMetric(m)
			}

			res, err := s.Run(ctx, cfg)
			results[idx] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
