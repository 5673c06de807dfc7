package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Half splits a phase-space state laid out as [positions..., velocities...].
func (s State) Half() (q, p State) {
	h := len(s) / 2
	return s[:h], s[h:]
}

// System is a second-order system written as a first-order ODE over
// [positions..., velocities...]. Derive returns [velocities..., accelerations...].
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// Stepper is a system that owns its state and advances it in place.
type Stepper interface {
	Advance(dt float64) error
	State() State
	Time() float64
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

// Parameterized models report their scalar parameters by name.
type Parameterized interface {
	GetParams() map[string]float64
}

type Config struct {
	Dt            float64
	Duration      float64
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		RecordEvery:   1,
		ValidateState: true,
	}
}

type Result struct {
	States      []State
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
