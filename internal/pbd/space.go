// Package pbd implements the position-based dynamics solver: a particle store
// and a set of distance constraints advanced by fixed substeps of
// predict, relax, reconcile.
package pbd

import (
	"fmt"

	"github.com/san-kum/particlesim/internal/constraint"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/vecmath"
)

// Space is a self-contained constraint simulation. It is not safe for
// concurrent use and Step must not be reentered.
type Space struct {
	cfg         dynamo.SolverConfig
	gravity     vecmath.Vec2
	particles   *particle.Store
	constraints *constraint.Set

	ticks   int
	elapsed float64
}

func NewSpace(cfg dynamo.SolverConfig) (*Space, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Space{
		cfg:         cfg,
		gravity:     vecmath.V2(cfg.GravityX, cfg.GravityY),
		particles:   particle.NewStore(0),
		constraints: constraint.NewSet(0),
	}, nil
}

func (s *Space) AddParticle(position, velocity vecmath.Vec2, invMass float64, respondsToForce bool) (particle.Handle, error) {
	return s.particles.Add(position, velocity, invMass, respondsToForce)
}

func (s *Space) AddConstraint(a, b particle.Handle, restLength float64) error {
	return s.constraints.Add(s.particles, a, b, restLength)
}

// Step advances one frame of length dt using the configured substep count.
// A failure aborts the rest of the tick; work already applied is not rolled back.
func (s *Space) Step(dt float64) error {
	if err := dynamo.ValidTimestep(dt); err != nil {
		return err
	}

	n := s.cfg.Substeps
	dtSub := dt / float64(n)
	for i := 0; i < n; i++ {
		if err := s.substep(dtSub); err != nil {
			return &dynamo.SimulationError{
				Tick:    s.ticks,
				Substep: i,
				Time:    s.elapsed + float64(i)*dtSub,
				Wrapped: err,
			}
		}
	}

	s.ticks++
	s.elapsed += dt
	return nil
}

func (s *Space) substep(dtSub float64) error {
	s.predict(dtSub)
	if err := s.constraints.Relax(s.particles); err != nil {
		return err
	}
	s.reconcile(dtSub)
	return nil
}

func (s *Space) predict(dtSub float64) {
	s.particles.Each(func(_ particle.Handle, p *particle.Particle) {
		if p.Pinned() {
			p.Predicted = p.Position
			return
		}
		if p.RespondsToForce {
			p.Velocity = p.Velocity.Add(s.gravity.Scale(dtSub))
		}
		p.Predicted = p.Position.Add(p.Velocity.Scale(dtSub))
	})
}

func (s *Space) reconcile(dtSub float64) {
	inv := 1 / dtSub
	s.particles.Each(func(_ particle.Handle, p *particle.Particle) {
		if p.Pinned() {
			return
		}
		p.Velocity = p.Predicted.Sub(p.Position).Scale(inv)
		p.Position = p.Predicted
	})
}

// Position returns the authoritative position of h.
func (s *Space) Position(h particle.Handle) (vecmath.Vec2, error) {
	return s.particles.Position(h)
}

// Positions returns a copy of all positions in insertion order.
func (s *Space) Positions() []vecmath.Vec2 {
	return s.particles.Positions()
}

func (s *Space) Particles() *particle.Store   { return s.particles }
func (s *Space) Constraints() *constraint.Set { return s.constraints }
func (s *Space) Config() dynamo.SolverConfig  { return s.cfg }
func (s *Space) Len() int                     { return s.particles.Len() }
func (s *Space) Ticks() int                   { return s.ticks }
func (s *Space) Elapsed() float64             { return s.elapsed }

// String summarizes the space for logs.
func (s *Space) String() string {
	return fmt.Sprintf("pbd.Space{particles: %d, constraints: %d, substeps: %d, t=%.4f}",
		s.particles.Len(), s.constraints.Len(), s.cfg.Substeps, s.elapsed)
}

// Valid reports whether every position and velocity is finite.
func (s *Space) Valid() bool {
	ok := true
	s.particles.Each(func(_ particle.Handle, p *particle.Particle) {
		if !p.Position.IsFinite() || !p.Velocity.IsFinite() {
			ok = false
		}
	})
	return ok
}
