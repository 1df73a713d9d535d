package optim

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/san-kum/particlesim/internal/sim"
)

// Trial runs one simulation with the given parameter values.
type Trial func(ctx context.Context, params map[string]float64) (*sim.Result, error)

// Point is one evaluated grid cell. Failed trials score +Inf.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch evaluates every combination of parameter values and keeps the
// one that minimises a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid cells.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every cell in row-major order. It returns the best point and
// every evaluated point. Cancellation stops the search between trials.
func (g *GridSearch) Search(ctx context.Context, trial Trial, metricName string) (Point, []Point, error) {
	points := make([]Point, 0, g.Size())
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), trial, metricName, &points); err != nil {
		return Point{}, points, err
	}

	best := Point{Value: math.Inf(1)}
	for _, p := range points {
		if p.Err == nil && p.Value < best.Value {
			best = p
		}
	}
	if best.Params == nil {
		return best, points, fmt.Errorf("grid search: no trial produced %s", metricName)
	}
	return best, points, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	trial Trial,
	metricName string,
	points *[]Point,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		p := Point{Params: current, Value: math.Inf(1)}
		result, err := trial(ctx, current)
		switch {
		case err != nil:
			log.Printf("grid search: %v: %v", current, err)
			p.Err = err
		default:
			val, ok := result.Metrics[metricName]
			if !ok {
				p.Err = fmt.Errorf("metric %s not recorded", metricName)
			} else if !math.IsNaN(val) {
				p.Value = val
			}
		}
		*points = append(*points, p)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, trial, metricName, points); err != nil {
			return err
		}
	}
	return nil
}

// FormatParams renders params in sorted key order.
func FormatParams(params map[string]float64) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%g", k, params[k])
	}
	return s
}
