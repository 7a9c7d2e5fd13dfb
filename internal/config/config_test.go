package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scene != "gas" {
		t.Errorf("expected scene gas, got %s", cfg.Scene)
	}
	if cfg.Tree.Margin != 0.1 || cfg.Tree.DisplacementMultiplier != 1.7 {
		t.Errorf("unexpected tree defaults %+v", cfg.Tree)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := "scene: rain\nbodies: 50\ntree:\n  margin: 0.25\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Scene != "rain" || cfg.Bodies != 50 || cfg.Tree.Margin != 0.25 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Tree.DisplacementMultiplier != 1.7 || cfg.Dt != DefaultDt {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	want := GetPreset("rain", "storm")
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"zero steps", func(c *Config) { c.Steps = 0 }},
		{"restitution", func(c *Config) { c.Restitution = 2 }},
		{"negative margin", func(c *Config) { c.Tree.Margin = -1 }},
		{"negative multiplier", func(c *Config) { c.Tree.DisplacementMultiplier = -1 }},
		{"negative max pairs", func(c *Config) { c.MaxPairs = -1 }},
		{"no bodies", func(c *Config) { c.Bodies = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestSimConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPairs = 64
	sc := cfg.SimConfig()
	if sc.Dt != cfg.Dt || sc.Steps != cfg.Steps || sc.Broad.MaxPairs != 64 || sc.Broad.Tree != cfg.Tree {
		t.Errorf("sim config does not mirror file config: %+v", sc)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gas", "dense")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Bodies != 1000 {
		t.Errorf("expected 1000 bodies, got %d", cfg.Bodies)
	}

	cfg.Bodies = 1
	if GetPreset("gas", "dense").Bodies != 1000 {
		t.Error("GetPreset handed out the shared preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("gas", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "sparse") != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestListPresets(t *testing.T) {
	if diff := cmp.Diff([]string{"dense", "fast", "sparse", "tight"}, ListPresets("gas")); diff != "" {
		t.Errorf("gas presets (-want +got):\n%s", diff)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent scene")
	}
}

func TestPresetsValidate(t *testing.T) {
	for scene, presets := range Presets {
		for name, cfg := range presets {
			if cfg.Scene != scene {
				t.Errorf("%s/%s: scene field is %s", scene, name, cfg.Scene)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", scene, name, err)
			}
		}
	}
}

func TestSetTreeParam(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetTreeParam("margin", 0.5); err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetTreeParam("displacement_multiplier", 3); err != nil {
		t.Fatal(err)
	}
	if cfg.Tree.Margin != 0.5 || cfg.Tree.DisplacementMultiplier != 3 {
		t.Errorf("tree params not applied: %+v", cfg.Tree)
	}
	if err := cfg.SetTreeParam("max_nodes", 1); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}
