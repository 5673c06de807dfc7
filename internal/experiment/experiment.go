package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/metrics"
)

// Experiment is one configured cloth run: the simulation, the run loop
// driving it and the metrics it collects.
type Experiment struct {
	cfg       config.Config
	cloth     *cloth.Simulation
	simulator *dynamo.Simulator
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	integ, err := integrators.Get(cfg.Run.Integrator)
	if err != nil {
		return nil, err
	}

	sim, err := cloth.New(cfg.Params(), cloth.WithIntegrator(integ))
	if err != nil {
		return nil, err
	}

	simulator := dynamo.New(sim)
	for _, m := range DefaultMetrics(sim) {
		simulator.AddMetric(m)
	}

	return &Experiment{
		cfg:       *cfg,
		cloth:     sim,
		simulator: simulator,
	}, nil
}

func (e *Experiment) Config() *config.Config       { return &e.cfg }
func (e *Experiment) Cloth() *cloth.Simulation     { return e.cloth }
func (e *Experiment) Simulator() *dynamo.Simulator { return e.simulator }

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	result, err := e.simulator.Run(ctx, e.cfg.Dynamo())
	if err != nil {
		return result, fmt.Errorf("run %dx%d cloth: %w", e.cfg.Grid.Rows, e.cfg.Grid.Cols, err)
	}
	return result, nil
}

// stabilityBound is the coordinate magnitude past which a state counts as
// blown up.
const stabilityBound = 1e3

// DefaultMetrics is the metric set every experiment records.
func DefaultMetrics(sim *cloth.Simulation) []dynamo.Metric {
	pinned := sim.Topology().Pinned()
	return []dynamo.Metric{
		metrics.NewEnergy(sim),
		metrics.NewEnergyDrift(sim),
		metrics.NewStability(stabilityBound),
		metrics.NewPinDrift(pinned[:]...),
		metrics.NewMaxSag(),
		metrics.NewMeanSpeed(),
	}
}
