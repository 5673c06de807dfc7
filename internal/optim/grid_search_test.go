package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/clothsim/internal/config"
)

func smallBase() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.Rows, cfg.Grid.Cols = 4, 4
	cfg.Run.Duration = 0.5
	return cfg
}

func TestPoints(t *testing.T) {
	g := &GridSearch{
		Names:  []string{"stiffness", "damping"},
		Ranges: [][]float64{{1, 2}, {0.1, 0.2, 0.3}},
	}
	points := g.Points()
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	if points[0]["stiffness"] != 1 || points[0]["damping"] != 0.1 {
		t.Errorf("first point = %v", points[0])
	}
	if points[5]["stiffness"] != 2 || points[5]["damping"] != 0.3 {
		t.Errorf("last point = %v", points[5])
	}
}

func TestSearch_StifferSagsLess(t *testing.T) {
	g := &GridSearch{
		Base:   smallBase(),
		Names:  []string{"stiffness"},
		Ranges: [][]float64{{2, 4, 8}},
		Metric: "max_sag",
	}

	best, all, err := g.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(all))
	}
	if best.Params["stiffness"] != 8 {
		t.Errorf("stiffest cloth should sag least, got %v (all: %+v)", best.Params, all)
	}
}

func TestSearch_SkipsInvalid(t *testing.T) {
	g := &GridSearch{
		Base:   smallBase(),
		Names:  []string{"point_mass"},
		Ranges: [][]float64{{0, 0.01}},
		Metric: "energy_drift",
	}

	best, all, err := g.Search(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if all[0].Stable {
		t.Error("a zero-mass cloth cannot be a candidate")
	}
	if best.Params["point_mass"] != 0.01 {
		t.Errorf("unexpected best %v", best.Params)
	}
}

func TestSearch_Errors(t *testing.T) {
	g := &GridSearch{Base: smallBase(), Names: []string{"stiffness"}}
	if _, _, err := g.Search(context.Background()); err == nil {
		t.Error("expected an error for missing ranges")
	}

	g = &GridSearch{Base: smallBase(), Names: []string{"bogus"}, Ranges: [][]float64{{1}}, Metric: "max_sag"}
	if _, _, err := g.Search(context.Background()); err == nil {
		t.Error("expected an error for an unknown parameter")
	}

	g = &GridSearch{Base: smallBase(), Names: []string{"stiffness"}, Ranges: [][]float64{{1}}, Metric: "nope"}
	if _, _, err := g.Search(context.Background()); err == nil {
		t.Error("expected an error for an unknown metric")
	}

	g = &GridSearch{Base: smallBase(), Names: []string{"point_mass"}, Ranges: [][]float64{{0}}, Metric: "max_sag"}
	if _, _, err := g.Search(context.Background()); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}
