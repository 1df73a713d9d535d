package metrics

import (
	"math"

	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/pbd"
	"github.com/san-kum/particlesim/internal/vecmath"
)

// LinkStrain tracks |length - rest| over every distance constraint. Sample is
// the worst link this frame, Value the worst link seen during the run.
type LinkStrain struct {
	name    string
	space   *pbd.Space
	current float64
	worst   float64
}

func NewLinkStrain(space *pbd.Space) *LinkStrain {
	return &LinkStrain{name: "link_strain", space: space}
}

func (l *LinkStrain) Name() string { return l.name }

func (l *LinkStrain) Observe(frame int, t float64) {
	l.current = l.space.Constraints().MaxError(l.space.Particles())
	l.worst = math.Max(l.worst, l.current)
}

func (l *LinkStrain) Sample() float64 { return l.current }
func (l *LinkStrain) Value() float64  { return l.worst }

func (l *LinkStrain) Reset() {
	l.current = 0
	l.worst = 0
}

// AnchorDrift records how far pinned particles have moved from where they were
// when the metric was reset. Any non-zero value is a solver bug.
type AnchorDrift struct {
	name    string
	space   *pbd.Space
	origin  map[particle.Handle]vecmath.Vec2
	current float64
	worst   float64
}

func NewAnchorDrift(space *pbd.Space) *AnchorDrift {
	a := &AnchorDrift{name: "anchor_drift", space: space}
	a.Reset()
	return a
}

func (a *AnchorDrift) Name() string { return a.name }

func (a *AnchorDrift) Observe(frame int, t float64) {
	a.current = 0
	for h, p0 := range a.origin {
		pos, err := a.space.Position(h)
		if err != nil {
			continue
		}
		a.current = math.Max(a.current, pos.Dist(p0))
	}
	a.worst = math.Max(a.worst, a.current)
}

func (a *AnchorDrift) Sample() float64 { return a.current }
func (a *AnchorDrift) Value() float64  { return a.worst }

func (a *AnchorDrift) Reset() {
	a.origin = make(map[particle.Handle]vecmath.Vec2)
	a.space.Particles().Each(func(h particle.Handle, p *particle.Particle) {
		if p.Pinned() {
			a.origin[h] = p.Position
		}
	})
	a.current = 0
	a.worst = 0
}
