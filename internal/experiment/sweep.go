package experiment

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
)

var ErrInvalidSweep = errors.New("experiment: invalid sweep")

// Sweep varies one scalar cloth parameter over [Min, Max] in Steps evenly
// spaced values, one independent simulation per value.
type Sweep struct {
	Base    *config.Config
	Param   string
	Min     float64
	Max     float64
	Steps   int
	Workers int
}

type SweepResult struct {
	ParamValue  float64
	Metrics     map[string]float64
	EnergyDrift float64
	FinalState  dynamo.State
	Errors      []error
}

// Values lists the parameter values the sweep visits.
func (s *Sweep) Values() []float64 {
	if s.Steps == 1 {
		return []float64{s.Min}
	}
	values := make([]float64, s.Steps)
	step := (s.Max - s.Min) / float64(s.Steps-1)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	return values
}

// RunSweep runs the sweep concurrently. Results keep the order of Values.
// A simulation that goes unstable is reported in its result; only setup
// errors and cancellation abort the sweep.
func RunSweep(ctx context.Context, sweep *Sweep) ([]SweepResult, error) {
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidSweep, sweep.Steps)
	}
	if _, err := sweep.Base.Params().With(sweep.Param, sweep.Min); err != nil {
		return nil, err
	}

	workers := sweep.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	values := sweep.Values()
	results := make([]SweepResult, len(values))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range values {
		g.Go(func() error {
			cfg := *sweep.Base
			params, _ := cfg.Params().With(sweep.Param, v)
			cfg.SetParams(params)

			exp, err := New(&cfg)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
			}
			result, err := exp.Run(gctx)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.Param, v, err)
			}

			results[i] = SweepResult{
				ParamValue:  v,
				Metrics:     result.Metrics,
				EnergyDrift: result.EnergyDrift,
				FinalState:  result.States[len(result.States)-1],
				Errors:      result.Errors,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
