package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
)

const (
	DefaultRows        = 14
	DefaultCols        = 14
	DefaultGravity     = 4.0
	DefaultStiffness   = 8.0
	DefaultInitLength  = 0.2
	DefaultPointMass   = 0.01
	DefaultDamping     = 0.05
	DefaultWind        = 0.02
	DefaultDt          = 0.01
	DefaultDuration    = 10.0
	DefaultRecordEvery = 1
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Grid    GridConfig    `yaml:"grid" json:"grid"`
	Physics PhysicsConfig `yaml:"physics" json:"physics"`
	Run     RunConfig     `yaml:"run" json:"run"`
}

type GridConfig struct {
	Rows       int        `yaml:"rows" json:"rows"`
	Cols       int        `yaml:"cols" json:"cols"`
	TopLeft    [3]float64 `yaml:"top_left" json:"top_left"`
	InitLength float64    `yaml:"init_length" json:"init_length"`
}

type PhysicsConfig struct {
	Gravity       float64    `yaml:"gravity" json:"gravity"`
	Stiffness     float64    `yaml:"stiffness" json:"stiffness"`
	PointMass     float64    `yaml:"point_mass" json:"point_mass"`
	Damping       float64    `yaml:"damping" json:"damping"`
	Wind          float64    `yaml:"wind" json:"wind"`
	WindDirection [3]float64 `yaml:"wind_direction" json:"wind_direction"`
}

type RunConfig struct {
	Integrator    string  `yaml:"integrator" json:"integrator"`
	Dt            float64 `yaml:"dt" json:"dt"`
	Duration      float64 `yaml:"duration" json:"duration"`
	RecordEvery   int     `yaml:"record_every" json:"record_every"`
	ValidateState bool    `yaml:"validate_state" json:"validate_state"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			Rows:       DefaultRows,
			Cols:       DefaultCols,
			InitLength: DefaultInitLength,
		},
		Physics: PhysicsConfig{
			Gravity:       DefaultGravity,
			Stiffness:     DefaultStiffness,
			PointMass:     DefaultPointMass,
			Damping:       DefaultDamping,
			Wind:          DefaultWind,
			WindDirection: [3]float64{0, 0, -1},
		},
		Run: RunConfig{
			Integrator:    integrators.Default,
			Dt:            DefaultDt,
			Duration:      DefaultDuration,
			RecordEvery:   DefaultRecordEvery,
			ValidateState: true,
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Params converts the grid and physics sections into cloth parameters.
func (c *Config) Params() cloth.Params {
	return cloth.Params{
		Rows:          c.Grid.Rows,
		Cols:          c.Grid.Cols,
		TopLeft:       mgl64.Vec3(c.Grid.TopLeft),
		Gravity:       c.Physics.Gravity,
		Stiffness:     c.Physics.Stiffness,
		InitLength:    c.Grid.InitLength,
		PointMass:     c.Physics.PointMass,
		Damping:       c.Physics.Damping,
		Wind:          c.Physics.Wind,
		WindDirection: mgl64.Vec3(c.Physics.WindDirection),
	}
}

// SetParams copies p back into the grid and physics sections.
func (c *Config) SetParams(p cloth.Params) {
	c.Grid.Rows, c.Grid.Cols = p.Rows, p.Cols
	c.Grid.TopLeft = [3]float64(p.TopLeft)
	c.Grid.InitLength = p.InitLength
	c.Physics.Gravity = p.Gravity
	c.Physics.Stiffness = p.Stiffness
	c.Physics.PointMass = p.PointMass
	c.Physics.Damping = p.Damping
	c.Physics.Wind = p.Wind
	c.Physics.WindDirection = [3]float64(p.WindDirection)
}

// Dynamo returns the run-loop settings.
func (c *Config) Dynamo() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Run.Dt,
		Duration:      c.Run.Duration,
		RecordEvery:   c.Run.RecordEvery,
		ValidateState: c.Run.ValidateState,
	}
}

func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if !(c.Run.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Run.Dt)
	}
	if !(c.Run.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Run.Duration)
	}
	if c.Run.RecordEvery < 1 {
		return fmt.Errorf("%w: record_every must be at least 1, got %d", ErrInvalidConfig, c.Run.RecordEvery)
	}
	if _, err := integrators.Get(c.Run.Integrator); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
