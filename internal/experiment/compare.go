package experiment

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/clothsim/internal/config"
)

// Comparison is the outcome of running the same cloth under one integrator.
type Comparison struct {
	Integrator  string
	EnergyDrift float64
	Metrics     map[string]float64
	Elapsed     time.Duration
	Errors      []error
}

// Compare runs base once per named integrator, concurrently, and returns the
// outcomes in the order given.
func Compare(ctx context.Context, base *config.Config, names []string) ([]Comparison, error) {
	out := make([]Comparison, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			cfg := *base
			cfg.Run.Integrator = name

			exp, err := New(&cfg)
			if err != nil {
				return fmt.Errorf("integrator %s: %w", name, err)
			}

			start := time.Now()
			result, err := exp.Run(gctx)
			if err != nil {
				return err
			}

			out[i] = Comparison{
				Integrator:  name,
				EnergyDrift: result.EnergyDrift,
				Metrics:     result.Metrics,
				Elapsed:     time.Since(start),
				Errors:      result.Errors,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
