package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// Default is the integrator a cloth uses unless another is named.
const Default = "symplectic"

var constructors = map[string]func() dynamo.Integrator{
	"symplectic": func() dynamo.Integrator { return NewSymplecticEuler() },
	"euler":      func() dynamo.Integrator { return NewEuler() },
	"rk4":        func() dynamo.Integrator { return NewRK4() },
	"verlet":     func() dynamo.Integrator { return NewVerlet() },
	"leapfrog":   func() dynamo.Integrator { return NewLeapfrog() },
}

// Get returns a fresh integrator by name. Integrators with scratch buffers
// must not be shared between simulations.
func Get(name string) (dynamo.Integrator, error) {
	fn, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
