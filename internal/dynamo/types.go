package dynamo

import (
	"fmt"
	"math"
)

// Physical defaults. Lengths are in scene units, time in seconds.
const (
	// DefaultSubsteps is the substep count per frame for the pendulum chain.
	DefaultSubsteps = 1000

	// DefaultGravity is the vertical gravitational acceleration in units/s².
	DefaultGravity float64 = -5000

	// DefaultForceConstant is the repulsion strength k in units·distance²/s²,
	// so that a pair at distance d repels with k/d².
	DefaultForceConstant float64 = 0.05

	// DefaultMinDistance is the floor applied to pair separation before the
	// inverse-square law, in units.
	DefaultMinDistance float64 = 1e-3

	// MaxFrames caps the frame count of a single run.
	MaxFrames = 100_000_000
)

// Stepper advances a simulation by one rendered frame.
type Stepper interface {
	Step(dt float64) error
}

// StepFunc adapts a function to Stepper.
type StepFunc func(dt float64) error

func (f StepFunc) Step(dt float64) error { return f(dt) }

// SolverConfig tunes the constraint solver. Each substep runs exactly one
// relaxation sweep.
type SolverConfig struct {
	Substeps int
	// GravityX and GravityY are accelerations in units/s².
	GravityX float64
	GravityY float64
}

func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Substeps: DefaultSubsteps,
		GravityY: DefaultGravity,
	}
}

func (c SolverConfig) Validate() error {
	if c.Substeps < 1 {
		return fmt.Errorf("%w: substeps must be >= 1, got %d", ErrInvalidConfig, c.Substeps)
	}
	if !finite(c.GravityX) || !finite(c.GravityY) {
		return fmt.Errorf("%w: gravity must be finite", ErrInvalidConfig)
	}
	return nil
}

// FieldConfig tunes the sphere force-field solver.
type FieldConfig struct {
	// MinDistance clamps pair separation from below, in units.
	MinDistance float64
	// Damping is a velocity decay rate in 1/s. Zero leaves the dynamics undamped.
	Damping float64
	// Seed feeds the random placement of new electrons.
	Seed int64
}

func DefaultFieldConfig() FieldConfig {
	return FieldConfig{
		MinDistance: DefaultMinDistance,
	}
}

func (c FieldConfig) Validate() error {
	if !(c.MinDistance > 0) || !finite(c.MinDistance) {
		return fmt.Errorf("%w: min distance must be positive, got %g", ErrInvalidConfig, c.MinDistance)
	}
	if c.Damping < 0 || !finite(c.Damping) {
		return fmt.Errorf("%w: damping must be non-negative, got %g", ErrInvalidConfig, c.Damping)
	}
	return nil
}

// ValidTimestep reports ErrInvalidTimestep for dt <= 0 or non-finite dt.
func ValidTimestep(dt float64) error {
	if !(dt > 0) || !finite(dt) {
		return fmt.Errorf("%w: got %g", ErrInvalidTimestep, dt)
	}
	return nil
}

// FrameCount is the number of frames needed to cover duration at dt, rounded
// to the nearest frame.
func FrameCount(duration, dt float64) (int, error) {
	if err := ValidTimestep(dt); err != nil {
		return 0, err
	}
	if !(duration > 0) || !finite(duration) {
		return 0, fmt.Errorf("%w: duration must be positive and finite, got %g", ErrInvalidConfig, duration)
	}
	n := math.Round(duration / dt)
	if n > MaxFrames {
		return 0, fmt.Errorf("%w: %g frames exceeds the limit of %d", ErrInvalidConfig, n, MaxFrames)
	}
	return int(n), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validator is implemented by spaces that can report whether their state is
// still finite.
type Validator interface {
	Valid() bool
}
