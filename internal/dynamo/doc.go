// Package dynamo provides core simulation primitives for second-order systems.
//
// The package defines the interfaces shared by models, integrators, metrics
// and the run loop:
//
//   - [State]: flat phase-space vector laid out as [positions..., velocities...]
//   - [System]: dX/dt = f(X, t)
//   - [Integrator]: numerical stepper over a [System]
//   - [Stepper]: a model that owns its state and advances in place
//   - [Simulator]: runs a [Stepper] for a duration, feeding metrics and observers
//
// # Example
//
//	sim, _ := cloth.New(cloth.DefaultParams())
//	runner := dynamo.New(sim)
//	result, _ := runner.Run(ctx, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. [ParallelFor] is the only helper
// that fans out work, and it returns after every chunk has finished.
package dynamo
