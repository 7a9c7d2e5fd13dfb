package config

import "slices"

func preset(scene string, mod func(c *Config)) *Config {
	c := DefaultConfig()
	c.Scene = scene
	mod(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"gas": {
		"sparse": preset("gas", func(c *Config) {
			c.Bodies, c.WorldSize = 100, 60
		}),
		"dense": preset("gas", func(c *Config) {
			c.Bodies, c.WorldSize = 1000, 30
		}),
		"fast": preset("gas", func(c *Config) {
			c.Bodies, c.MaxSpeed = 300, 40
		}),
		"tight": preset("gas", func(c *Config) {
			c.Bodies = 300
			c.Tree.Margin, c.Tree.DisplacementMultiplier = 0, 0
		}),
	},
	"rain": {
		"drizzle": preset("rain", func(c *Config) {
			c.Bodies, c.Steps = 100, 2000
		}),
		"storm": preset("rain", func(c *Config) {
			c.Bodies, c.Restitution, c.Steps = 800, 0.3, 2000
		}),
	},
	"grid": {
		"lattice": preset("grid", func(c *Config) {
			c.Bodies, c.Movers, c.WorldSize = 1000, 10, 60
		}),
		"still": preset("grid", func(c *Config) {
			c.Bodies, c.Movers = 512, 0
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, name string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[name]
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
	slices.Sort(names)
	return names
}
