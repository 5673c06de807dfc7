package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

// decay is dx/dt = -x advanced with explicit Euler.
type decay struct {
	x, t float64
	fail bool
}

func (d *decay) Advance(dt float64) error {
	if d.fail {
		return ErrInvalidStep
	}
	d.x += dt * -d.x
	d.t += dt
	return nil
}

func (d *decay) State() State  { return State{d.x} }
func (d *decay) Time() float64 { return d.t }

func (d *decay) Energy(x State) float64 { return 0.5 * x[0] * x[0] }

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(x State, t float64) {
	m.count++
	m.sum += x[0]
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorRun(t *testing.T) {
	s := New(&decay{x: 1.0})

	result, err := s.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	finalState := result.States[len(result.States)-1][0]
	expected := math.Exp(-1.0)
	if math.Abs(finalState-expected) > 0.2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, finalState)
	}
	if result.EnergyDrift <= 0 {
		t.Error("expected non-zero energy drift for a decaying system")
	}
}

func TestSimulatorRecordEvery(t *testing.T) {
	s := New(&decay{x: 1.0})

	result, err := s.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0, RecordEvery: 5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 3 {
		t.Errorf("expected 3 recorded states, got %d", len(result.States))
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(&decay{x: 1.0})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"NaN dt", Config{Dt: math.NaN(), Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorMetrics(t *testing.T) {
	s := New(&decay{x: 1.0})

	metric := &testMetric{}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestSimulatorAdvanceError(t *testing.T) {
	s := New(&decay{x: 1.0, fail: true})

	result, err := s.Run(context.Background(), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(result.Errors))
	}
	if !errors.Is(result.Errors[0], ErrInvalidStep) {
		t.Errorf("expected wrapped ErrInvalidStep, got %v", result.Errors[0])
	}
}

func TestSimulatorCanceled(t *testing.T) {
	s := New(&decay{x: 1.0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected empty partial result, got %+v", result)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	s := New(&decay{x: 1.0})

	calls := 0
	err := s.RunWithCallback(context.Background(), Config{Dt: 0.1, Duration: 1.0}, func(x State, t float64) bool {
		calls++
		return calls < 3
	})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 callback calls, got %d", calls)
	}
}

func TestParallelForCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 64, 1000} {
		hits := make([]int, n)
		ParallelFor(n, 8, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, h)
			}
		}
	}
}
