// Package vecmath provides the 2D vector algebra used by the constraint solver.
package vecmath

import (
	"errors"
	"math"
)

// ErrZeroLength is returned when normalizing a vector with no direction.
var ErrZeroLength = errors.New("vecmath: cannot normalize zero-length vector")

// Vec2 is an immutable 2D vector. Every method returns a new value.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Add returns a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Mul returns the component-wise product.
func (a Vec2) Mul(b Vec2) Vec2 {
	return Vec2{a.X * b.X, a.Y * b.Y}
}

// Div returns the component-wise quotient. Zero components of b follow IEEE
// division.
func (a Vec2) Div(b Vec2) Vec2 {
	return Vec2{a.X / b.X, a.Y / b.Y}
}

// Scale returns a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Dot returns a · b.
func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross returns the z component of the 3D cross product (a.X, a.Y, 0) × (b.X, b.Y, 0).
// Cross(a, b) == -Cross(b, a).
func (a Vec2) Cross(b Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

func (a Vec2) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y)
}

func (a Vec2) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y
}

// Normalize returns the unit vector in the direction of a.
func (a Vec2) Normalize() (Vec2, error) {
	l := a.Len()
	if l == 0 {
		return Vec2{}, ErrZeroLength
	}
	return Vec2{a.X / l, a.Y / l}, nil
}

func (a Vec2) Dist(b Vec2) float64 {
	return a.Sub(b).Len()
}

func (a Vec2) DistSq(b Vec2) float64 {
	return a.Sub(b).LenSq()
}

// IsFinite reports whether both components are neither NaN nor Inf.
func (a Vec2) IsFinite() bool {
	return !math.IsNaN(a.X) && !math.IsInf(a.X, 0) && !math.IsNaN(a.Y) && !math.IsInf(a.Y, 0)
}
