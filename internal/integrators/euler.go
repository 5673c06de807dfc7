package integrators

import "github.com/san-kum/clothsim/internal/dynamo"

// Euler is the explicit forward Euler method. Both halves of the state use
// the derivative at the start of the step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	dx := dyn.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
