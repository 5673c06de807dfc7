// Package cloth implements a mass-spring cloth: a rows×cols grid of point
// masses joined by structural, shear and bend springs, pinned at the two top
// corners and advanced by an explicit integrator.
//
// The pieces, leaf to root:
//
//   - [Topology]: fixed spring adjacency with boundary self-loops
//   - [ParticleState]: position, velocity and acceleration arrays
//   - [ForceModel]: gravity, damping, springs, gated wind, pin override
//   - [EstimateNormals]: per-particle shading normals from positions
//   - [Simulation]: ties them together behind [Simulation.Step]
//
// A renderer calls Step once per frame and uploads [Frame.VertexBuffer]
// together with the static [TriangleIndices].
//
// # Stability
//
// Spring forces are unbounded and integration is explicit with a fixed step.
// Steps larger than [Simulation.MaxStableDt] can diverge; the package does
// not clamp them.
package cloth
