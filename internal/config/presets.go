package config

// Presets are complete configurations keyed by scene, then preset name.
var Presets = map[string]map[string]*Config{
	"chain": {
		"pendulum": chainPreset(5, 50, 1000, -5000, 10),
		"long":     chainPreset(20, 12, 1000, -5000, 10),
		"short":    chainPreset(1, 100, 200, -2000, 10),
		"heavy": func() *Config {
			c := chainPreset(5, 50, 2000, -5000, 10)
			c.Chain.Mass = 10
			return c
		}(),
	},
	"electrons": {
		"few":   electronPreset(4, 1.0, 2.0),
		"dozen": electronPreset(12, 0.05, 0.5),
		"many":  electronPreset(64, 0.01, 0.5),
		"free":  electronPreset(12, 0.05, 0),
	},
}

func chainPreset(links int, linkLength float64, substeps int, gravity, duration float64) *Config {
	c := DefaultConfig()
	c.Scene = "chain"
	c.Duration = duration
	c.Chain.Links = links
	c.Chain.LinkLength = linkLength
	c.Solver.Substeps = substeps
	c.Solver.Gravity = gravity
	return c
}

func electronPreset(count int, k, damping float64) *Config {
	c := DefaultConfig()
	c.Scene = "electrons"
	c.Duration = 30
	c.Electrons.Count = count
	c.Field.ForceConstant = k
	c.Field.Damping = damping
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	return names
}
