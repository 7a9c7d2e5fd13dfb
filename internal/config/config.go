package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/broadphase/internal/broadphase"
	"github.com/san-kum/broadphase/internal/scenes"
	"github.com/san-kum/broadphase/internal/sim"
	"github.com/san-kum/broadphase/internal/tree"
	"gopkg.in/yaml.v3"
)

const (
	DefaultScene       = "gas"
	DefaultIntegrator  = "verlet"
	DefaultDt          = 0.01
	DefaultSteps       = 1000
	DefaultRestitution = 1.0
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Scene      string  `yaml:"scene"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Steps      int     `yaml:"steps"`
	Seed       int64   `yaml:"seed"`

	scenes.Params `yaml:",inline"`
	Restitution   float64 `yaml:"restitution"`

	Tree     tree.Options `yaml:"tree"`
	MaxPairs int          `yaml:"max_pairs"`

	ValidateState bool `yaml:"validate_state"`
}

func DefaultConfig() *Config {
	return &Config{
		Scene:         DefaultScene,
		Integrator:    DefaultIntegrator,
		Dt:            DefaultDt,
		Steps:         DefaultSteps,
		Params:        scenes.DefaultParams(),
		Restitution:   DefaultRestitution,
		Tree:          tree.DefaultOptions(),
		ValidateState: true,
	}
}

// Load reads a yaml file over the defaults, so a file only needs the keys
// it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
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
	switch {
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalid, c.Dt)
	case c.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	case c.Restitution < 0 || c.Restitution > 1:
		return fmt.Errorf("%w: restitution must be in [0, 1], got %f", ErrInvalid, c.Restitution)
	case c.Tree.Margin < 0:
		return fmt.Errorf("%w: tree margin must be non-negative, got %f", ErrInvalid, c.Tree.Margin)
	case c.Tree.DisplacementMultiplier < 0:
		return fmt.Errorf("%w: displacement multiplier must be non-negative, got %f", ErrInvalid, c.Tree.DisplacementMultiplier)
	case c.Tree.MaxNodes < 0 || c.MaxPairs < 0:
		return fmt.Errorf("%w: limits must be non-negative", ErrInvalid)
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:          c.Dt,
		Steps:       c.Steps,
		Seed:        c.Seed,
		Restitution: c.Restitution,
		Broad: broadphase.Options{
			Tree:     c.Tree,
			MaxPairs: c.MaxPairs,
		},
		ValidateState: c.ValidateState,
	}
}

// SetTreeParam sets a float tree option by its yaml name.
func (c *Config) SetTreeParam(name string, v float64) error {
	switch name {
	case "margin":
		c.Tree.Margin = v
	case "displacement_multiplier":
		c.Tree.DisplacementMultiplier = v
	default:
		return fmt.Errorf("%w: unknown tree parameter %q", ErrInvalid, name)
	}
	return nil
}
