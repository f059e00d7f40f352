package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/sphindex/internal/dynamo"
	"github.com/san-kum/sphindex/internal/physics"
	"github.com/san-kum/sphindex/internal/spatial/grid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Index != "quadtree" {
		t.Errorf("expected index quadtree, got %s", cfg.Index)
	}
	if cfg.Physics.Step != physics.Step {
		t.Errorf("expected step %v, got %v", physics.Step, cfg.Physics.Step)
	}
	if cfg.Gravity() != physics.DefaultGravity {
		t.Errorf("expected gravity %v, got %v", physics.DefaultGravity, cfg.Gravity())
	}
	if cfg.Params() != physics.DefaultParams() {
		t.Errorf("expected default params, got %+v", cfg.Params())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no index", func(c *Config) { c.Index = "" }, "index"},
		{"zero width", func(c *Config) { c.Width = 0 }, "width"},
		{"negative height", func(c *Config) { c.Height = -1 }, "height"},
		{"negative particles", func(c *Config) { c.Particles = -5 }, "particles"},
		{"zero frames", func(c *Config) { c.Frames = 0 }, "frames"},
		{"zero substeps", func(c *Config) { c.SubSteps = 0 }, "sub_steps"},
		{"zero step", func(c *Config) { c.Physics.Step = 0 }, "physics.step"},
		{"zero radius", func(c *Config) { c.Physics.Radius = 0 }, "physics.radius"},
		{"negative workers", func(c *Config) { c.Workers = -2 }, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 0
	cfg.Frames = 0
	err := cfg.Validate()
	if !strings.Contains(err.Error(), "width") || !strings.Contains(err.Error(), "frames") {
		t.Errorf("expected both fields reported, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := DefaultConfig()
	cfg.Index = "hilbert"
	cfg.Particles = 42
	cfg.Pointer = PointerConfig{Enabled: true, X: 3, Y: 4, Pressed: true}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
	if p := got.PointerPos(); p == nil || *p != dynamo.V(3, 4) {
		t.Errorf("pointer: got %v", p)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("index: grid\nphysics:\n  friction: 0.2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Index != "grid" || cfg.Physics.Friction != 0.2 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Width != DefaultWidth || cfg.Physics.Pressure != physics.Pressure {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("width: [1, 2"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("whirlpool")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.PointerPos() == nil || !cfg.Pointer.Pressed {
		t.Error("whirlpool should hold a pressed pointer")
	}

	cfg.Particles = 1
	if Presets["whirlpool"].Particles == 1 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d names, got %d", len(Presets), len(names))
	}
	for i, name := range names {
		if i > 0 && names[i-1] > name {
			t.Errorf("presets not sorted: %v", names)
		}
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestGridPresetsStayExact(t *testing.T) {
	for name, p := range Presets {
		if p.Index == "grid" && p.Physics.Radius > grid.CellSize {
			t.Errorf("preset %s uses the grid with radius %g > cell size %g", name, p.Physics.Radius, grid.CellSize)
		}
	}
	if GetPreset("grid").Index != "grid" {
		t.Error("grid preset should select the grid index")
	}
}
