package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/particlesim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
	DefaultLinks      = 5
	DefaultLinkLength = 50.0
	DefaultMass       = 1.0
	DefaultElectrons  = 12
)

type Config struct {
	Scene         string          `yaml:"scene"`
	Dt            float64         `yaml:"dt"`
	Duration      float64         `yaml:"duration"`
	Seed          int64           `yaml:"seed"`
	ValidateState bool            `yaml:"validate_state"`
	Solver        SolverConfig    `yaml:"solver"`
	Field         FieldConfig     `yaml:"field"`
	Chain         ChainConfig     `yaml:"chain"`
	Electrons     ElectronsConfig `yaml:"electrons"`
}

type SolverConfig struct {
	Substeps int     `yaml:"substeps"`
	GravityX float64 `yaml:"gravity_x"`
	Gravity  float64 `yaml:"gravity"`
}

type FieldConfig struct {
	ForceConstant float64 `yaml:"force_constant"`
	MinDistance   float64 `yaml:"min_distance"`
	Damping       float64 `yaml:"damping"`
}

type ChainConfig struct {
	Links      int     `yaml:"links"`
	LinkLength float64 `yaml:"link_length"`
	Mass       float64 `yaml:"mass"`
	AnchorX    float64 `yaml:"anchor_x"`
	AnchorY    float64 `yaml:"anchor_y"`
}

type ElectronsConfig struct {
	Count int `yaml:"count"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:         "chain",
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		ValidateState: true,
		Solver: SolverConfig{
			Substeps: dynamo.DefaultSubsteps,
			Gravity:  dynamo.DefaultGravity,
		},
		Field: FieldConfig{
			ForceConstant: dynamo.DefaultForceConstant,
			MinDistance:   dynamo.DefaultMinDistance,
		},
		Chain: ChainConfig{
			Links:      DefaultLinks,
			LinkLength: DefaultLinkLength,
			Mass:       DefaultMass,
		},
		Electrons: ElectronsConfig{
			Count: DefaultElectrons,
		},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive and finite, got %g", dynamo.ErrInvalidConfig, c.Dt)
	}
	if _, err := dynamo.FrameCount(c.Duration, c.Dt); err != nil {
		return err
	}
	if err := c.SolverConfig().Validate(); err != nil {
		return err
	}
	if err := c.FieldConfig().Validate(); err != nil {
		return err
	}
	if c.Field.ForceConstant < 0 {
		return fmt.Errorf("%w: force constant must be non-negative", dynamo.ErrInvalidConfig)
	}
	if c.Chain.Links < 1 || c.Chain.LinkLength <= 0 || c.Chain.Mass <= 0 {
		return fmt.Errorf("%w: chain needs links >= 1, positive link length and mass", dynamo.ErrInvalidConfig)
	}
	if c.Electrons.Count < 0 {
		return fmt.Errorf("%w: electron count must be non-negative", dynamo.ErrInvalidConfig)
	}
	return nil
}

func (c *Config) SolverConfig() dynamo.SolverConfig {
	return dynamo.SolverConfig{
		Substeps: c.Solver.Substeps,
		GravityX: c.Solver.GravityX,
		GravityY: c.Solver.Gravity,
	}
}

func (c *Config) FieldConfig() dynamo.FieldConfig {
	return dynamo.FieldConfig{
		MinDistance: c.Field.MinDistance,
		Damping:     c.Field.Damping,
		Seed:        c.Seed,
	}
}
