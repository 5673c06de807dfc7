package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidStep indicates a non-positive or non-finite timestep.
	ErrInvalidStep = errors.New("dynamo: timestep must be positive and finite")

	// ErrUnstable indicates the timestep exceeds the system's stability bound.
	ErrUnstable = errors.New("dynamo: timestep above stability bound")

	// ErrUnknownParam indicates a parameter name the system does not expose.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
