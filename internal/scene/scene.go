// Package scene builds ready-to-run simulation spaces from configuration.
package scene

import (
	"fmt"
	"sort"

	"github.com/san-kum/particlesim/internal/config"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/metrics"
	"github.com/san-kum/particlesim/internal/particle"
	"github.com/san-kum/particlesim/internal/pbd"
	"github.com/san-kum/particlesim/internal/sim"
	"github.com/san-kum/particlesim/internal/sphere"
	"github.com/san-kum/particlesim/internal/vecmath"
)

// Scene is one built space plus what a runner or renderer needs to drive it.
// Exactly one of Chain and Sphere is set.
type Scene struct {
	Name     string
	Stepper  dynamo.Stepper
	Metrics  []sim.Metric
	Chain    *pbd.Space
	Handles  []particle.Handle
	Sphere   *sphere.Space
	Strength float64
}

type Builder func(cfg *config.Config) (*Scene, error)

// BuildChain pins an anchor and hangs Links free masses from it, laid out
// horizontally to the right of the anchor.
func BuildChain(cfg *config.Config) (*Scene, error) {
	space, err := pbd.NewSpace(cfg.SolverConfig())
	if err != nil {
		return nil, fmt.Errorf("chain: %w", err)
	}

	c := cfg.Chain
	origin := vecmath.V2(c.AnchorX, c.AnchorY)
	anchor, err := space.AddParticle(origin, vecmath.Vec2{}, 0, false)
	if err != nil {
		return nil, fmt.Errorf("chain anchor: %w", err)
	}

	handles := []particle.Handle{anchor}
	for i := 1; i <= c.Links; i++ {
		pos := origin.Add(vecmath.V2(float64(i)*c.LinkLength, 0))
		h, err := space.AddParticle(pos, vecmath.Vec2{}, 1/c.Mass, true)
		if err != nil {
			return nil, fmt.Errorf("chain link %d: %w", i, err)
		}
		if err := space.AddConstraint(handles[i-1], h, c.LinkLength); err != nil {
			return nil, fmt.Errorf("chain link %d: %w", i, err)
		}
		handles = append(handles, h)
	}

	strain := metrics.NewLinkStrain(space)
	return &Scene{
		Name:    "chain",
		Stepper: space,
		Chain:   space,
		Handles: handles,
		Metrics: []sim.Metric{
			strain,
			metrics.NewAnchorDrift(space),
			metrics.NewStability(strain, 0.5),
		},
	}, nil
}

// BuildElectrons scatters Count electrons uniformly over the sphere using the
// configured seed.
func BuildElectrons(cfg *config.Config) (*Scene, error) {
	space, err := sphere.NewSpace(cfg.FieldConfig())
	if err != nil {
		return nil, fmt.Errorf("electrons: %w", err)
	}
	for i := 0; i < cfg.Electrons.Count; i++ {
		space.AddElectron()
	}

	k := cfg.Field.ForceConstant
	return &Scene{
		Name:     "electrons",
		Stepper:  space.Stepper(k),
		Sphere:   space,
		Strength: k,
		Metrics: []sim.Metric{
			metrics.NewSphereDrift(space),
			metrics.NewFieldEnergy(space, k),
		},
	}, nil
}

type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	r.Register("chain", BuildChain)
	r.Register("pendulum", BuildChain)
	r.Register("electrons", BuildElectrons)
	return r
}

func (r *Registry) Register(name string, b Builder) {
	r.builders[name] = b
}

func (r *Registry) Build(name string, cfg *config.Config) (*Scene, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return b(cfg)
}

// List returns scene names in sorted order.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
