package dynamo

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestSimulationErrorUnwrap(t *testing.T) {
	var err error = &SimulationError{Tick: 3, Substep: 17, Time: 0.04, Wrapped: ErrDegenerate}
	wrapped := fmt.Errorf("frame 3: %w", err)

	if !errors.Is(wrapped, ErrDegenerate) {
		t.Error("errors.Is did not reach the wrapped sentinel")
	}
	var simErr *SimulationError
	if !errors.As(wrapped, &simErr) {
		t.Fatal("errors.As did not find *SimulationError")
	}
	if simErr.Tick != 3 || simErr.Substep != 17 {
		t.Errorf("got tick=%d substep=%d", simErr.Tick, simErr.Substep)
	}
}

func TestSimulationErrorMessage(t *testing.T) {
	tests := []struct {
		err  *SimulationError
		want string
	}{
		{&SimulationError{Tick: 2, Substep: 5, Time: 0.5, Wrapped: ErrDegenerate}, "tick 2 substep 5"},
		{&SimulationError{Tick: 9, Substep: -1, Time: 1, Wrapped: ErrUnstable}, "tick 9 (t=1.0000)"},
	}
	for _, tt := range tests {
		msg := tt.err.Error()
		if !strings.Contains(msg, tt.want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, tt.want)
		}
		if !strings.Contains(msg, tt.err.Wrapped.Error()) {
			t.Errorf("Error() = %q lacks the cause", msg)
		}
	}
}

func TestValidTimestep(t *testing.T) {
	tests := []struct {
		dt float64
		ok bool
	}{
		{0.01, true},
		{1e-9, true},
		{0, false},
		{-0.01, false},
		{math.NaN(), false},
		{math.Inf(1), false},
	}
	for _, tt := range tests {
		err := ValidTimestep(tt.dt)
		if tt.ok && err != nil {
			t.Errorf("ValidTimestep(%g) = %v, want nil", tt.dt, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidTimestep) {
			t.Errorf("ValidTimestep(%g) = %v, want ErrInvalidTimestep", tt.dt, err)
		}
	}
}

func TestFrameCount(t *testing.T) {
	n, err := FrameCount(1, 0.01)
	if err != nil || n != 100 {
		t.Errorf("FrameCount(1, 0.01) = %d, %v; want 100", n, err)
	}

	bad := []float64{0, -1, math.NaN(), math.Inf(1), 1e30}
	for _, d := range bad {
		if _, err := FrameCount(d, 0.01); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("FrameCount(%g) = %v, want ErrInvalidConfig", d, err)
		}
	}
	if _, err := FrameCount(1, math.NaN()); !errors.Is(err, ErrInvalidTimestep) {
		t.Errorf("NaN dt: err = %v, want ErrInvalidTimestep", err)
	}
}

func TestSolverConfigValidate(t *testing.T) {
	if err := DefaultSolverConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := []SolverConfig{
		{Substeps: 0},
		{Substeps: -4},
		{Substeps: 10, GravityY: math.NaN()},
		{Substeps: 10, GravityX: math.Inf(-1)},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%+v: err = %v, want ErrInvalidConfig", c, err)
		}
	}
}

func TestFieldConfigValidate(t *testing.T) {
	if err := DefaultFieldConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	bad := []FieldConfig{
		{MinDistance: 0},
		{MinDistance: -1},
		{MinDistance: math.NaN()},
		{MinDistance: 1e-3, Damping: -0.5},
		{MinDistance: 1e-3, Damping: math.Inf(1)},
	}
	for _, c := range bad {
		if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%+v: err = %v, want ErrInvalidConfig", c, err)
		}
	}
}

func TestStepFunc(t *testing.T) {
	var got float64
	var s Stepper = StepFunc(func(dt float64) error {
		got = dt
		return nil
	})
	if err := s.Step(0.25); err != nil {
		t.Fatal(err)
	}
	if got != 0.25 {
		t.Errorf("dt = %g, want 0.25", got)
	}
}
