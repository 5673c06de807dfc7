package experiment

import (
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/clothsim/internal/cloth"
)

var ErrInvalidBench = errors.New("experiment: invalid benchmark")

type BenchResult struct {
	Rows, Cols int
	Steps      int
	Elapsed    time.Duration
}

func (b BenchResult) StepsPerSecond() float64 {
	if b.Elapsed <= 0 {
		return 0
	}
	return float64(b.Steps) / b.Elapsed.Seconds()
}

// ParticleStepsPerSecond is throughput normalized by grid size.
func (b BenchResult) ParticleStepsPerSecond() float64 {
	return b.StepsPerSecond() * float64(b.Rows*b.Cols)
}

// Bench times a fixed number of steps of a fresh cloth built from params.
func Bench(params cloth.Params, dt float64, steps int, opts ...cloth.Option) (BenchResult, error) {
	if steps < 1 {
		return BenchResult{}, fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidBench, steps)
	}
	sim, err := cloth.New(params, opts...)
	if err != nil {
		return BenchResult{}, err
	}

	start := time.Now()
	for i := 0; i < steps; i++ {
		if _, err := sim.Step(dt); err != nil {
			return BenchResult{}, err
		}
	}

	return BenchResult{
		Rows:    params.Rows,
		Cols:    params.Cols,
		Steps:   steps,
		Elapsed: time.Since(start),
	}, nil
}
