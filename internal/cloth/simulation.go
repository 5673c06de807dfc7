package cloth

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
)

// Frame is the renderer-facing output of one step.
type Frame struct {
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
}

// VertexBuffer interleaves the frame as [px,py,pz,nx,ny,nz] per vertex.
func (f Frame) VertexBuffer() []float32 {
	buf := make([]float32, 0, 6*len(f.Positions))
	for i, p := range f.Positions {
		n := f.Normals[i]
		buf = append(buf,
			float32(p[0]), float32(p[1]), float32(p[2]),
			float32(n[0]), float32(n[1]), float32(n[2]),
		)
	}
	return buf
}

// Simulation is a cloth advanced one fixed step at a time. It is not safe for
// concurrent use.
type Simulation struct {
	params     Params
	topo       *Topology
	state      *ParticleState
	forces     *ForceModel
	integrator dynamo.Integrator
	normals    []mgl64.Vec3
	t          float64
	steps      int

	// scratch reused by Derive
	pos, vel, normalBuf, force []mgl64.Vec3
	counts                     []int

	// stepAcc holds the acceleration of the first evaluation in the current
	// step, which every registered integrator makes at the start-of-step state.
	stepAcc []mgl64.Vec3
}

type Option func(*Simulation)

// WithIntegrator replaces the default symplectic Euler stepper.
func WithIntegrator(integ dynamo.Integrator) Option {
	return func(s *Simulation) { s.integrator = integ }
}

// WithParallelThreshold sets the smallest particle range one force worker
// handles. Values below 1 are ignored.
func WithParallelThreshold(minChunk int) Option {
	return func(s *Simulation) {
		if minChunk >= 1 {
			s.forces.minChunk = minChunk
		}
	}
}

func New(params Params, opts ...Option) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	topo := BuildTopology(params.Rows, params.Cols)
	n := topo.Len()
	s := &Simulation{
		params:     params,
		topo:       topo,
		state:      NewParticleState(params.Rows, params.Cols, params.TopLeft, params.InitLength),
		forces:     NewForceModel(topo, params),
		integrator: integrators.NewSymplecticEuler(),
		pos:        make([]mgl64.Vec3, n),
		vel:        make([]mgl64.Vec3, n),
		normalBuf:  make([]mgl64.Vec3, n),
		force:      make([]mgl64.Vec3, n),
		counts:     make([]int, n),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.normals = EstimateNormals(topo, s.state.pos)

	return s, nil
}

func (s *Simulation) Params() Params            { return s.params }
func (s *Simulation) Topology() *Topology       { return s.topo }
func (s *Simulation) Particles() *ParticleState { return s.state }
func (s *Simulation) Forces() *ForceModel       { return s.forces }
func (s *Simulation) Steps() int                { return s.steps }
func (s *Simulation) Time() float64             { return s.t }

// Normals returns a copy of the current shading normals.
func (s *Simulation) Normals() []mgl64.Vec3 { return cloneVecs(s.normals) }

// Frame returns the current positions and normals without stepping.
func (s *Simulation) Frame() Frame {
	return Frame{Positions: s.state.Positions(), Normals: s.Normals()}
}

// Step advances the cloth by dt: forces from the current state and its
// normals, one integrator step, then fresh normals from the new positions.
func (s *Simulation) Step(dt float64) (Frame, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return Frame{}, fmt.Errorf("%w: got %g", dynamo.ErrInvalidStep, dt)
	}

	s.stepAcc = nil
	next := s.integrator.Step(s, s.state.Flatten(), s.t, dt)

	n := s.topo.Len()
	pos := make([]mgl64.Vec3, n)
	vel := make([]mgl64.Vec3, n)
	unflatten(next, pos, vel)

	acc := s.stepAcc
	if acc == nil {
		acc = make([]mgl64.Vec3, n)
	}
	if err := s.state.Apply(pos, vel, acc); err != nil {
		return Frame{}, err
	}
	s.stepAcc = nil

	EstimateNormalsInto(s.topo, s.state.pos, s.normals, s.counts)
	s.t += dt
	s.steps++

	return s.Frame(), nil
}

// Advance implements dynamo.Stepper.
func (s *Simulation) Advance(dt float64) error {
	_, err := s.Step(dt)
	return err
}

// State implements dynamo.Stepper.
func (s *Simulation) State() dynamo.State { return s.state.Flatten() }

func (s *Simulation) StateDim() int { return 6 * s.topo.Len() }

// Derive implements dynamo.System over [positions..., velocities...].
// Wind uses normals estimated from the positions in x.
func (s *Simulation) Derive(x dynamo.State, t float64) dynamo.State {
	n := s.topo.Len()
	unflatten(x, s.pos, s.vel)
	EstimateNormalsInto(s.topo, s.pos, s.normalBuf, s.counts)
	s.forces.Compute(s.pos, s.vel, s.normalBuf, s.force)

	invMass := 1 / s.params.PointMass
	dx := make(dynamo.State, 6*n)
	for i := 0; i < n; i++ {
		a := s.force[i].Mul(invMass)
		copy(dx[3*i:3*i+3], s.vel[i][:])
		copy(dx[3*n+3*i:3*n+3*i+3], a[:])
	}

	if s.stepAcc == nil {
		s.stepAcc = make([]mgl64.Vec3, n)
		for i := range s.stepAcc {
			s.stepAcc[i] = s.force[i].Mul(invMass)
		}
	}

	return dx
}

// NetForces evaluates the force model on the current state without stepping.
func (s *Simulation) NetForces() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, s.topo.Len())
	s.forces.Compute(s.state.pos, s.state.vel, s.normals, out)
	return out
}

// Energy is the mechanical energy of x: kinetic plus gravitational plus
// spring potential. Wind and damping are not conservative and do not enter.
func (s *Simulation) Energy(x dynamo.State) float64 {
	n := s.topo.Len()
	pos := make([]mgl64.Vec3, n)
	vel := make([]mgl64.Vec3, n)
	unflatten(x, pos, vel)

	m := s.params.PointMass
	rest := s.forces.rest
	energy := 0.0
	for i := 0; i < n; i++ {
		energy += 0.5 * m * vel[i].Dot(vel[i])
		energy += m * s.params.Gravity * pos[i].Y()
		for k, j := range s.topo.Links[i] {
			if j == i {
				continue
			}
			stretch := pos[j].Sub(pos[i]).Len() - rest[k]
			// every spring is listed from both ends
			energy += 0.25 * s.params.Stiffness * stretch * stretch
		}
	}
	return energy
}

// MaxStableDt is a conservative bound on the step size. The stiffest mode of
// a particle with 12 springs has ω² ≤ 24k/m, and symplectic Euler needs
// dt < 2/ω; linear drag adds dt < 2m/c. The simulation does not enforce it.
func (s *Simulation) MaxStableDt() float64 {
	m, k, c := s.params.PointMass, s.params.Stiffness, s.params.Damping
	bound := math.Inf(1)
	if k > 0 {
		bound = math.Sqrt(m / (6 * k))
	}
	if c > 0 {
		bound = math.Min(bound, 2*m/c)
	}
	return bound
}

// GetParams implements dynamo.Parameterized. Parameters are fixed after
// construction; use Params.With and New to vary them.
func (s *Simulation) GetParams() map[string]float64 {
	return s.params.GetParams()
}
