package experiment

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// Scenario is a scripted sequence of cloth runs loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset and overrides scalar parameters and run
// settings. Zero values leave the preset's setting alone.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Params     map[string]float64 `yaml:"params"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &scenario, nil
}

// Config resolves the step into a full configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}

	params := cfg.Params()
	for k, v := range s.Params {
		var err error
		if params, err = params.With(k, v); err != nil {
			return nil, err
		}
	}
	cfg.SetParams(params)

	if s.Integrator != "" {
		cfg.Run.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Run.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Run.Dt = s.Dt
	}
	return cfg, nil
}

// RunScenario executes the steps in order, reporting progress to out.
func RunScenario(ctx context.Context, scenario *Scenario, out io.Writer) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Fprintf(out, "Running step %d/%d: %s\n", i+1, len(scenario.Steps), step.Preset)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := New(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, result)
	}

	return results, nil
}
