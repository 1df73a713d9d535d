package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a solver configuration outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid solver configuration")

	// ErrInvalidTimestep indicates a non-positive or non-finite frame delta.
	ErrInvalidTimestep = errors.New("dynamo: timestep must be positive and finite")

	// ErrInvalidHandle indicates a handle that does not name a live particle.
	ErrInvalidHandle = errors.New("dynamo: invalid particle handle")

	// ErrInvalidParticle indicates a particle with negative or non-finite data.
	ErrInvalidParticle = errors.New("dynamo: invalid particle data")

	// ErrInvalidRestLength indicates a constraint rest length that is not positive.
	ErrInvalidRestLength = errors.New("dynamo: rest length must be positive and finite")

	// ErrPinnedPair indicates a constraint whose endpoints both have infinite mass.
	ErrPinnedPair = errors.New("dynamo: constraint endpoints are both pinned")

	// ErrDegenerate indicates a geometric configuration with no defined direction.
	ErrDegenerate = errors.New("dynamo: degenerate geometry (coincident points)")

	// ErrUnstable indicates the simulation diverged.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")
)

// SimulationError wraps an error raised while a tick was in flight.
// Substep is -1 when the failure is not tied to a particular substep.
type SimulationError struct {
	Tick    int
	Substep int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Substep < 0 {
		return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
	}
	return fmt.Sprintf("tick %d substep %d (t=%.4f): %v", e.Tick, e.Substep, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
