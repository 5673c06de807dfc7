package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/clothsim/internal/cloth"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Run.Integrator != "symplectic" {
		t.Errorf("expected integrator symplectic, got %s", cfg.Run.Integrator)
	}
	if cfg.Run.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.Params() != cloth.DefaultParams() {
		t.Errorf("default config params %+v differ from cloth defaults", cfg.Params())
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloth.yaml")
	data := []byte("grid:\n  rows: 20\nphysics:\n  wind_direction: [1, 0, 0]\nrun:\n  integrator: rk4\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grid.Rows != 20 || cfg.Grid.Cols != DefaultCols {
		t.Errorf("grid = %dx%d, want 20x%d", cfg.Grid.Rows, cfg.Grid.Cols, DefaultCols)
	}
	if cfg.Physics.WindDirection != [3]float64{1, 0, 0} {
		t.Errorf("wind direction = %v", cfg.Physics.WindDirection)
	}
	if cfg.Physics.Stiffness != DefaultStiffness {
		t.Errorf("stiffness = %f, want default", cfg.Physics.Stiffness)
	}
	if cfg.Run.Integrator != "rk4" {
		t.Errorf("integrator = %s", cfg.Run.Integrator)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloth.yaml")
	cfg := GetPreset("gust")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded %+v, saved %+v", loaded, cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("grid: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"small grid", func(c *Config) { c.Grid.Rows = 2 }, cloth.ErrGridTooSmall},
		{"zero mass", func(c *Config) { c.Physics.PointMass = 0 }, cloth.ErrInvalidParams},
		{"zero dt", func(c *Config) { c.Run.Dt = 0 }, ErrInvalidConfig},
		{"zero duration", func(c *Config) { c.Run.Duration = 0 }, ErrInvalidConfig},
		{"record every", func(c *Config) { c.Run.RecordEvery = 0 }, ErrInvalidConfig},
		{"integrator", func(c *Config) { c.Run.Integrator = "rk45" }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSetParams(t *testing.T) {
	p := cloth.DefaultParams()
	p.Rows = 9
	p.Wind = 1.5

	cfg := DefaultConfig()
	cfg.SetParams(p)
	if cfg.Params() != p {
		t.Errorf("round trip through config changed params: %+v", cfg.Params())
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("large")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Grid.Rows != 32 {
		t.Errorf("expected 32 rows, got %d", cfg.Grid.Rows)
	}

	cfg.Grid.Rows = 3
	if GetPreset("large").Grid.Rows != 32 {
		t.Error("mutating a returned preset changed the registry")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	names := ListPresets()
	if len(names) != 5 {
		t.Errorf("expected 5 presets, got %v", names)
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}
