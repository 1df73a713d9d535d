package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/particlesim/internal/dynamo"
)

// params maps tunable parameter names onto config fields. Integer fields are
// rounded.
var params = map[string]func(c *Config, v float64){
	"dt":             func(c *Config, v float64) { c.Dt = v },
	"duration":       func(c *Config, v float64) { c.Duration = v },
	"seed":           func(c *Config, v float64) { c.Seed = int64(math.Round(v)) },
	"substeps":       func(c *Config, v float64) { c.Solver.Substeps = int(math.Round(v)) },
	"gravity":        func(c *Config, v float64) { c.Solver.Gravity = v },
	"gravity_x":      func(c *Config, v float64) { c.Solver.GravityX = v },
	"force_constant": func(c *Config, v float64) { c.Field.ForceConstant = v },
	"min_distance":   func(c *Config, v float64) { c.Field.MinDistance = v },
	"damping":        func(c *Config, v float64) { c.Field.Damping = v },
	"links":          func(c *Config, v float64) { c.Chain.Links = int(math.Round(v)) },
	"link_length":    func(c *Config, v float64) { c.Chain.LinkLength = v },
	"mass":           func(c *Config, v float64) { c.Chain.Mass = v },
	"electrons":      func(c *Config, v float64) { c.Electrons.Count = int(math.Round(v)) },
}

// Set assigns a numeric parameter by name. The result is not validated.
func (c *Config) Set(name string, v float64) error {
	set, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidConfig, name)
	}
	set(c, v)
	return nil
}

// ParamNames lists the names accepted by Set.
func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
