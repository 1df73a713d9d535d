// Package constraint implements distance constraints between particles and the
// single Gauss-Seidel relaxation sweep the PBD solver runs once per substep.
package constraint

import (
	"fmt"
	"math"

	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/particle"
)

// Distance keeps two particles RestLength apart. It refers to particles by
// handle; the store owns them.
type Distance struct {
	A, B       particle.Handle
	RestLength float64
}

// Length returns the current separation of the authoritative positions.
func (d Distance) Length(store *particle.Store) float64 {
	return store.At(d.A).Position.Dist(store.At(d.B).Position)
}

// Error returns |Length - RestLength|.
func (d Distance) Error(store *particle.Store) float64 {
	return math.Abs(d.Length(store) - d.RestLength)
}

// project moves the predicted positions of both endpoints toward RestLength.
// Each endpoint takes a share of the correction proportional to its inverse
// mass; pinned endpoints are never written.
func (d Distance) project(store *particle.Store) error {
	a, b := store.At(d.A), store.At(d.B)

	wSum := a.InvMass + b.InvMass
	if wSum == 0 {
		return dynamo.ErrPinnedPair
	}

	diff := b.Predicted.Sub(a.Predicted)
	n, err := diff.Normalize()
	if err != nil {
		return fmt.Errorf("%w: constraint %d-%d", dynamo.ErrDegenerate, d.A, d.B)
	}
	delta := diff.Len() - d.RestLength

	if !a.Pinned() {
		a.Predicted = a.Predicted.Add(n.Scale(delta * a.InvMass / wSum))
	}
	if !b.Pinned() {
		b.Predicted = b.Predicted.Sub(n.Scale(delta * b.InvMass / wSum))
	}
	return nil
}

// Set holds distance constraints in declaration order. It is immutable apart
// from Add.
type Set struct {
	constraints []Distance
}

func NewSet(capacity int) *Set {
	return &Set{constraints: make([]Distance, 0, capacity)}
}

// Add validates and appends a constraint between a and b. At least one endpoint
// must have finite mass.
func (s *Set) Add(store *particle.Store, a, b particle.Handle, restLength float64) error {
	if !store.Valid(a) || !store.Valid(b) {
		return fmt.Errorf("%w: constraint %d-%d", dynamo.ErrInvalidHandle, a, b)
	}
	if a == b {
		return fmt.Errorf("%w: constraint endpoints are the same particle %d", dynamo.ErrInvalidHandle, a)
	}
	if !(restLength > 0) || math.IsInf(restLength, 0) {
		return fmt.Errorf("%w: got %g", dynamo.ErrInvalidRestLength, restLength)
	}
	if store.At(a).Pinned() && store.At(b).Pinned() {
		return fmt.Errorf("%w: %d-%d", dynamo.ErrPinnedPair, a, b)
	}

	s.constraints = append(s.constraints, Distance{A: a, B: b, RestLength: restLength})
	return nil
}

// Relax runs one sweep over every constraint in declaration order. Corrections
// made by earlier constraints are visible to later ones. The first failure stops
// the sweep.
func (s *Set) Relax(store *particle.Store) error {
	for i := range s.constraints {
		if err := s.constraints[i].project(store); err != nil {
			return err
		}
	}
	return nil
}

func (s *Set) Len() int { return len(s.constraints) }

func (s *Set) At(i int) Distance { return s.constraints[i] }

func (s *Set) Each(fn func(int, Distance)) {
	for i, c := range s.constraints {
		fn(i, c)
	}
}

// MaxError returns the largest |length - rest| over all constraints.
func (s *Set) MaxError(store *particle.Store) float64 {
	worst := 0.0
	for _, c := range s.constraints {
		worst = math.Max(worst, c.Error(store))
	}
	return worst
}
