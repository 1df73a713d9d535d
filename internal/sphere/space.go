// Package sphere implements the force-field particle solver: electrons confined
// to the unit sphere, repelling each other with an inverse-square force that is
// projected onto the local tangent plane before integration.
package sphere

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
)

// Handle identifies an electron by insertion index.
type Handle int

type Electron struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

// Space holds the electrons of one sphere. It is not safe for concurrent use.
type Space struct {
	cfg       dynamo.FieldConfig
	electrons []Electron
	forces    []mgl64.Vec3
	rng       *rand.Rand

	ticks   int
	elapsed float64
}

func NewSpace(cfg dynamo.FieldConfig) (*Space, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Space{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// AddElectron places a new electron at a uniformly random point on the sphere,
// at rest.
func (s *Space) AddElectron() Handle {
	// Archimedes: z uniform on [-1, 1] gives uniform area density.
	z := 2*s.rng.Float64() - 1
	phi := 2 * math.Pi * s.rng.Float64()
	r := math.Sqrt(1 - z*z)
	pos := mgl64.Vec3{r * math.Cos(phi), r * math.Sin(phi), z}.Normalize()

	s.electrons = append(s.electrons, Electron{Position: pos})
	return Handle(len(s.electrons) - 1)
}

// AddElectronAt places a new electron at rest at pos projected onto the sphere.
func (s *Space) AddElectronAt(pos mgl64.Vec3) (Handle, error) {
	l := pos.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return -1, fmt.Errorf("%w: cannot project %v onto the sphere", dynamo.ErrDegenerate, pos)
	}
	s.electrons = append(s.electrons, Electron{Position: pos.Mul(1 / l)})
	return Handle(len(s.electrons) - 1), nil
}

// RemoveElectron drops the most recently added electron. It reports false when
// the space is already empty.
func (s *Space) RemoveElectron() bool {
	if len(s.electrons) == 0 {
		return false
	}
	s.electrons = s.electrons[:len(s.electrons)-1]
	return true
}

// Step advances one frame: every electron's velocity takes the tangential sum of
// the pairwise repulsion from all others, then every position moves and is
// projected back onto the sphere.
func (s *Space) Step(dt, strength float64) error {
	if err := dynamo.ValidTimestep(dt); err != nil {
		return err
	}
	if strength < 0 || math.IsNaN(strength) || math.IsInf(strength, 0) {
		return fmt.Errorf("%w: force strength must be non-negative, got %g", dynamo.ErrInvalidConfig, strength)
	}

	s.separateCoincident()

	n := len(s.electrons)
	if cap(s.forces) < n {
		s.forces = make([]mgl64.Vec3, n)
	}
	s.forces = s.forces[:n]

	for i := 0; i < n; i++ {
		pi := s.electrons[i].Position
		var sum mgl64.Vec3
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			f, ok := PairForce(pi, s.electrons[j].Position, strength, s.cfg.MinDistance)
			if !ok {
				continue
			}
			sum = sum.Add(Tangential(f, pi))
		}
		s.forces[i] = sum
	}

	decay := 1.0
	if s.cfg.Damping > 0 {
		decay = math.Max(0, 1-s.cfg.Damping*dt)
	}
	for i := range s.electrons {
		e := &s.electrons[i]
		e.Velocity = e.Velocity.Add(s.forces[i].Mul(dt))
		if decay != 1 {
			e.Velocity = e.Velocity.Mul(decay)
		}
	}

	for i := range s.electrons {
		e := &s.electrons[i]
		next := e.Position.Add(e.Velocity.Mul(dt))
		l := next.Len()
		if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return &dynamo.SimulationError{
				Tick:    s.ticks,
				Substep: -1,
				Time:    s.elapsed,
				Wrapped: fmt.Errorf("%w: electron %d left the sphere", dynamo.ErrDegenerate, i),
			}
		}
		e.Position = next.Mul(1 / l)
	}

	s.ticks++
	s.elapsed += dt
	return nil
}

// goldenAngle spreads successive separation offsets around the normal.
const goldenAngle = 2.399963229728653

// separateCoincident moves every electron that sits exactly on an earlier one
// by MinDistance along the tangent plane, so that the pair has a direction
// to repel along. The offset direction depends only on the electron index.
func (s *Space) separateCoincident() {
	for j := 1; j < len(s.electrons); j++ {
		pj := s.electrons[j].Position
		for i := 0; i < j; i++ {
			if s.electrons[i].Position != pj {
				continue
			}
			u, v := tangentBasis(pj)
			a := goldenAngle * float64(j)
			off := u.Mul(math.Cos(a)).Add(v.Mul(math.Sin(a))).Mul(s.cfg.MinDistance)
			s.electrons[j].Position = pj.Add(off).Normalize()
			break
		}
	}
}

// tangentBasis returns two orthonormal vectors perpendicular to the unit
// vector n.
func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	axis := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	u := n.Cross(axis).Normalize()
	return u, n.Cross(u)
}

// PairForce returns the raw repulsion on an electron at pi from one at pj:
// strength/d² along pi-pj, with d floored at minDistance. Coincident points
// have no direction and report false.
func PairForce(pi, pj mgl64.Vec3, strength, minDistance float64) (mgl64.Vec3, bool) {
	d := pi.Sub(pj)
	dist := d.Len()
	if dist == 0 {
		return mgl64.Vec3{}, false
	}
	r := math.Max(dist, minDistance)
	return d.Mul(strength / (r * r) / dist), true
}

// Tangential removes the component of f along the unit normal n.
func Tangential(f, n mgl64.Vec3) mgl64.Vec3 {
	return f.Sub(n.Mul(f.Dot(n)))
}

// PotentialEnergy returns the sum over pairs of strength/d with the same
// distance floor as the force.
func (s *Space) PotentialEnergy(strength float64) float64 {
	e := 0.0
	for i := range s.electrons {
		for j := i + 1; j < len(s.electrons); j++ {
			d := s.electrons[i].Position.Sub(s.electrons[j].Position).Len()
			e += strength / math.Max(d, s.cfg.MinDistance)
		}
	}
	return e
}

// KineticEnergy treats every electron as unit mass.
func (s *Space) KineticEnergy() float64 {
	e := 0.0
	for _, el := range s.electrons {
		e += 0.5 * el.Velocity.Dot(el.Velocity)
	}
	return e
}

func (s *Space) Position(h Handle) (mgl64.Vec3, error) {
	if h < 0 || int(h) >= len(s.electrons) {
		return mgl64.Vec3{}, fmt.Errorf("%w: %d", dynamo.ErrInvalidHandle, h)
	}
	return s.electrons[h].Position, nil
}

// Positions returns a copy of all positions in insertion order.
func (s *Space) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(s.electrons))
	for i, e := range s.electrons {
		out[i] = e.Position
	}
	return out
}

// Electrons returns a copy of the full electron state.
func (s *Space) Electrons() []Electron {
	out := make([]Electron, len(s.electrons))
	copy(out, s.electrons)
	return out
}

func (s *Space) Len() int                   { return len(s.electrons) }
func (s *Space) Ticks() int                 { return s.ticks }
func (s *Space) Elapsed() float64           { return s.elapsed }
func (s *Space) Config() dynamo.FieldConfig { return s.cfg }

// Stepper binds a fixed force strength so the space can be driven as a
// dynamo.Stepper. The result also implements dynamo.Validator.
func (s *Space) Stepper(strength float64) dynamo.Stepper {
	return boundStepper{space: s, strength: strength}
}

type boundStepper struct {
	space    *Space
	strength float64
}

func (b boundStepper) Step(dt float64) error { return b.space.Step(dt, b.strength) }
func (b boundStepper) Valid() bool           { return b.space.Valid() }

// Valid reports whether every position and velocity is finite.
func (s *Space) Valid() bool {
	for _, e := range s.electrons {
		for k := 0; k < 3; k++ {
			if math.IsNaN(e.Position[k]) || math.IsInf(e.Position[k], 0) ||
				math.IsNaN(e.Velocity[k]) || math.IsInf(e.Velocity[k], 0) {
				return false
			}
		}
	}
	return true
}
