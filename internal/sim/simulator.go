package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/particlesim/internal/dynamo"
)

// timesPrealloc bounds the initial capacity of Result.Times.
const timesPrealloc = 1 << 16

// Simulator drives a Stepper frame by frame. Cancellation is checked between
// frames only; a frame always runs to completion.
type Simulator struct {
	space     dynamo.Stepper
	metrics   []Metric
	observers []Observer
}

func New(space dynamo.Stepper) *Simulator {
	return &Simulator{
		space:     space,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances Duration/Dt frames. On failure the partial result is returned
// alongside the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	frames, err := dynamo.FrameCount(cfg.Duration, cfg.Dt)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Times:   make([]float64, 0, min(frames, timesPrealloc)),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Now()
	defer func() { result.Wall = time.Since(start) }()

	t := 0.0
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		if err := s.advance(i, t, cfg); err != nil {
			s.collect(result)
			return result, err
		}
		t += cfg.Dt
		result.Frames++
		result.Times = append(result.Times, t)

		for _, m := range s.metrics {
			m.Observe(i, t)
			if sm, ok := m.(Sampler); ok {
				result.Series[m.Name()] = append(result.Series[m.Name()], sm.Sample())
			}
		}
		for _, obs := range s.observers {
			obs.OnFrame(i, t)
		}
	}

	s.collect(result)
	return result, nil
}

// RunWithCallback advances frames until Duration elapses or callback returns
// false. Metrics and observers are not fed.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(frame int, t float64) bool) error {
	frames, err := dynamo.FrameCount(cfg.Duration, cfg.Dt)
	if err != nil {
		return err
	}

	t := 0.0
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.advance(i, t, cfg); err != nil {
			return err
		}
		t += cfg.Dt

		if !callback(i, t) {
			return nil
		}
	}

	return nil
}

func (s *Simulator) advance(frame int, t float64, cfg Config) error {
	if err := s.space.Step(cfg.Dt); err != nil {
		return fmt.Errorf("frame %d: %w", frame, err)
	}
	if cfg.ValidateState {
		if v, ok := s.space.(dynamo.Validator); ok && !v.Valid() {
			return &dynamo.SimulationError{Tick: frame, Substep: -1, Time: t + cfg.Dt, Wrapped: dynamo.ErrUnstable}
		}
	}
	return nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
