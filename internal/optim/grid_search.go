// Package optim searches cloth parameter grids for the setting that
// minimizes a run metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/experiment"
)

var ErrNoCandidate = errors.New("optim: no stable candidate")

// GridSearch runs every combination of the listed parameter values.
type GridSearch struct {
	Base    *config.Config
	Names   []string
	Ranges  [][]float64
	Metric  string
	Workers int
}

// Candidate is one evaluated point of the grid.
type Candidate struct {
	Params map[string]float64
	Value  float64
	Stable bool
}

// Points enumerates the cartesian product of the ranges, first name slowest.
func (g *GridSearch) Points() []map[string]float64 {
	points := []map[string]float64{{}}
	for i, name := range g.Names {
		next := make([]map[string]float64, 0, len(points)*len(g.Ranges[i]))
		for _, p := range points {
			for _, v := range g.Ranges[i] {
				q := make(map[string]float64, len(p)+1)
				for k, pv := range p {
					q[k] = pv
				}
				q[name] = v
				next = append(next, q)
			}
		}
		points = next
	}
	return points
}

// Search evaluates every point and returns the stable candidate with the
// lowest metric, plus all candidates in Points order. Runs that hit a step
// error or leave the stability bound never win.
func (g *GridSearch) Search(ctx context.Context) (Candidate, []Candidate, error) {
	if len(g.Names) == 0 || len(g.Names) != len(g.Ranges) {
		return Candidate{}, nil, fmt.Errorf("optim: need one range per parameter, got %d names and %d ranges", len(g.Names), len(g.Ranges))
	}

	points := g.Points()
	candidates := make([]Candidate, len(points))

	workers := g.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, point := range points {
		eg.Go(func() error {
			c, err := g.evaluate(egctx, point)
			if err != nil {
				return err
			}
			candidates[i] = c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Candidate{}, nil, err
	}

	best := Candidate{Value: math.Inf(1)}
	found := false
	for _, c := range candidates {
		if c.Stable && c.Value < best.Value {
			best, found = c, true
		}
	}
	if !found {
		return Candidate{}, candidates, ErrNoCandidate
	}
	return best, candidates, nil
}

func (g *GridSearch) evaluate(ctx context.Context, point map[string]float64) (Candidate, error) {
	cfg := *g.Base
	params := cfg.Params()
	for name, v := range point {
		var err error
		if params, err = params.With(name, v); err != nil {
			return Candidate{}, err
		}
	}
	cfg.SetParams(params)

	c := Candidate{Params: point, Value: math.Inf(1)}
	exp, err := experiment.New(&cfg)
	if err != nil {
		// an invalid combination, such as a zero mass, is skipped
		return c, nil
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return c, err
	}

	value, ok := result.Metrics[g.Metric]
	if !ok {
		return c, fmt.Errorf("optim: unknown metric %q", g.Metric)
	}
	c.Value = value
	c.Stable = len(result.Errors) == 0 && result.Metrics["stability"] == 1
	return c, nil
}
