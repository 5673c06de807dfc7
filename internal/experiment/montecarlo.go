package experiment

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/clothsim/internal/config"
)

// MonteCarloConfig jitters every scalar cloth parameter by up to
// ±Perturbation (relative) per trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
	Workers      int
}

type MonteCarloResult struct {
	TrialID int
	Params  map[string]float64
	Stable  bool
}

// RunMonteCarlo draws all trial parameters up front from one seeded source,
// so results do not depend on scheduling.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 || cfg.Perturbation < 0 || cfg.Perturbation >= 1 {
		return nil, fmt.Errorf("%w: need trials >= 1 and perturbation in [0, 1)", ErrInvalidSweep)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	base := cfg.Base.Params()
	names := make([]string, 0)
	for name := range base.GetParams() {
		names = append(names, name)
	}
	sort.Strings(names)

	trials := make([]*config.Config, cfg.NumTrials)
	for trial := range trials {
		p := base
		for _, name := range names {
			jitter := 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
			p, _ = p.With(name, base.GetParams()[name]*jitter)
		}
		c := *cfg.Base
		c.SetParams(p)
		trials[trial] = &c
	}

	results := make([]MonteCarloResult, cfg.NumTrials)
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i, c := range trials {
		g.Go(func() error {
			exp, err := New(c)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			result, err := exp.Run(gctx)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}

			results[i] = MonteCarloResult{
				TrialID: i,
				Params:  c.Params().GetParams(),
				Stable:  len(result.Errors) == 0 && result.Metrics["stability"] == 1,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
