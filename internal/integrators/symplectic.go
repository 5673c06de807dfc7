package integrators

import "github.com/san-kum/clothsim/internal/dynamo"

// SymplecticEuler is the semi-implicit Euler method:
//
//	v' = v + dt*a(x, v)
//	x' = x + dt*v'
//
// It evaluates the system once per step and performs no substepping.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2

	dx := dyn.Derive(x, t)
	result := make(dynamo.State, n)

	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dt*dx[half+i]
	}
	for i := 0; i < half; i++ {
		result[i] = x[i] + dt*result[half+i]
	}

	return result
}
