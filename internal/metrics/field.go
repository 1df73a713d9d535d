package metrics

import (
	"math"

	"github.com/san-kum/particlesim/internal/sphere"
)

// SphereDrift is the largest ||p| - 1| over all electrons.
type SphereDrift struct {
	name    string
	space   *sphere.Space
	current float64
	worst   float64
}

func NewSphereDrift(space *sphere.Space) *SphereDrift {
	return &SphereDrift{name: "sphere_drift", space: space}
}

func (s *SphereDrift) Name() string { return s.name }

func (s *SphereDrift) Observe(frame int, t float64) {
	s.current = 0
	for _, p := range s.space.Positions() {
		s.current = math.Max(s.current, math.Abs(p.Len()-1))
	}
	s.worst = math.Max(s.worst, s.current)
}

func (s *SphereDrift) Sample() float64 { return s.current }
func (s *SphereDrift) Value() float64  { return s.worst }

func (s *SphereDrift) Reset() {
	s.current = 0
	s.worst = 0
}

// FieldEnergy is the total (potential + kinetic) energy of the electrons.
// Value is the last observed energy.
type FieldEnergy struct {
	name     string
	space    *sphere.Space
	strength float64
	current  float64
}

func NewFieldEnergy(space *sphere.Space, strength float64) *FieldEnergy {
	return &FieldEnergy{name: "field_energy", space: space, strength: strength}
}

func (f *FieldEnergy) Name() string { return f.name }

func (f *FieldEnergy) Observe(frame int, t float64) {
	f.current = f.space.PotentialEnergy(f.strength) + f.space.KineticEnergy()
}

func (f *FieldEnergy) Sample() float64 { return f.current }
func (f *FieldEnergy) Value() float64  { return f.current }
func (f *FieldEnergy) Reset()          { f.current = 0 }
