package dynamo

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	model     Stepper
	metrics   []Metric
	observers []Observer
}

func New(model Stepper) *Simulator {
	return &Simulator{
		model:     model,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances the model for cfg.Duration. On cancellation it returns the
// partial result together with the context error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	every := cfg.RecordEvery
	if every < 1 {
		every = 1
	}

	result := &Result{
		States:  make([]State, 0, steps/every+2),
		Times:   make([]float64, 0, steps/every+2),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := s.model.State()
	t := s.model.Time()
	result.States = append(result.States, x)
	result.Times = append(result.Times, t)

	initialEnergy := s.computeEnergy(x)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initialEnergy, x)
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		if err := s.model.Advance(cfg.Dt); err != nil {
			result.Errors = append(result.Errors, &SimulationError{Step: i, Time: t, Wrapped: err})
			break
		}

		x = s.model.State()
		t = s.model.Time()
		result.StepsTaken++

		if cfg.ValidateState && !x.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}

		if result.StepsTaken%every == 0 || i == steps-1 {
			result.States = append(result.States, x)
			result.Times = append(result.Times, t)
		}
	}

	s.finish(result, initialEnergy, x)
	return result, nil
}

func (s *Simulator) finish(result *Result, initialEnergy float64, x State) {
	finalEnergy := s.computeEnergy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 || math.IsNaN(cfg.Dt) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, ErrInvalidStep)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

func (s *Simulator) computeEnergy(x State) float64 {
	if ec, ok := s.model.(Hamiltonian); ok {
		return ec.Energy(x)
	}
	return 0
}

// RunWithCallback advances the model until the duration elapses or the
// callback returns false.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(State, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	end := s.model.Time() + cfg.Duration
	for s.model.Time() < end {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		x := s.model.State()
		if !callback(x, s.model.Time()) {
			return nil
		}

		if err := s.model.Advance(cfg.Dt); err != nil {
			return err
		}

		if cfg.ValidateState && !s.model.State().IsValid() {
			return fmt.Errorf("invalid state at t=%.4f: %w", s.model.Time(), ErrInvalidState)
		}
	}

	return nil
}
