// Package particle owns the point masses of a constraint simulation.
//
// Particles live in a contiguous arena and are addressed by stable integer
// handles, so constraints can reference the same instances the solver
// mutates without holding pointers.
package particle

import (
	"fmt"
	"math"

	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/vecmath"
)

// Handle identifies a particle within its Store.
type Handle int

type Particle struct {
	Position vecmath.Vec2
	Velocity vecmath.Vec2
	// Predicted is scratch space for the current substep.
	Predicted vecmath.Vec2
	// InvMass of 0 pins the particle in place.
	InvMass         float64
	RespondsToForce bool
}

// Pinned reports whether the particle has infinite mass.
func (p *Particle) Pinned() bool {
	return p.InvMass == 0
}

// Store is append-only; handles stay valid for the life of the store.
type Store struct {
	particles []Particle
}

func NewStore(capacity int) *Store {
	return &Store{particles: make([]Particle, 0, capacity)}
}

// Add appends a particle and returns its handle. Pinned particles start at rest
// regardless of the supplied velocity.
func (s *Store) Add(position, velocity vecmath.Vec2, invMass float64, respondsToForce bool) (Handle, error) {
	if !position.IsFinite() || !velocity.IsFinite() {
		return -1, fmt.Errorf("%w: non-finite position or velocity", dynamo.ErrInvalidParticle)
	}
	if invMass < 0 || math.IsNaN(invMass) || math.IsInf(invMass, 0) {
		return -1, fmt.Errorf("%w: inverse mass %g", dynamo.ErrInvalidParticle, invMass)
	}
	if invMass == 0 {
		velocity = vecmath.Vec2{}
	}

	s.particles = append(s.particles, Particle{
		Position:        position,
		Velocity:        velocity,
		Predicted:       position,
		InvMass:         invMass,
		RespondsToForce: respondsToForce,
	})
	return Handle(len(s.particles) - 1), nil
}

func (s *Store) Len() int { return len(s.particles) }

func (s *Store) Valid(h Handle) bool {
	return h >= 0 && int(h) < len(s.particles)
}

// At returns the particle for h, or nil if h is not valid. The pointer is
// invalidated by the next Add.
func (s *Store) At(h Handle) *Particle {
	if !s.Valid(h) {
		return nil
	}
	return &s.particles[h]
}

func (s *Store) Position(h Handle) (vecmath.Vec2, error) {
	if !s.Valid(h) {
		return vecmath.Vec2{}, fmt.Errorf("%w: %d", dynamo.ErrInvalidHandle, h)
	}
	return s.particles[h].Position, nil
}

// Each visits particles in insertion order.
func (s *Store) Each(fn func(Handle, *Particle)) {
	for i := range s.particles {
		fn(Handle(i), &s.particles[i])
	}
}

// Positions returns a copy of every authoritative position in insertion order.
func (s *Store) Positions() []vecmath.Vec2 {
	out := make([]vecmath.Vec2, len(s.particles))
	for i := range s.particles {
		out[i] = s.particles[i].Position
	}
	return out
}
