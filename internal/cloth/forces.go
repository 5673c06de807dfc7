package cloth

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// springEpsilon is the length below which a spring has no direction.
// Self-loops and coincident particles fall under it.
const springEpsilon = 1e-12

// parallelMinChunk is the smallest particle range handed to one worker.
// Grids at or below it are evaluated serially.
const parallelMinChunk = 256

// ForceModel computes the net force on every particle from a consistent
// snapshot of positions, velocities and normals.
type ForceModel struct {
	topo     *Topology
	params   Params
	rest     [LinksPerParticle]float64
	gravity  mgl64.Vec3
	gateX    float64
	gateY    float64
	minChunk int
}

func NewForceModel(topo *Topology, params Params) *ForceModel {
	return &ForceModel{
		topo:     topo,
		params:   params,
		rest:     RestLengths(params.InitLength),
		gravity:  mgl64.Vec3{0, -params.Gravity * params.PointMass, 0},
		gateX:    float64(params.Cols/2) * params.InitLength,
		gateY:    -float64(params.Rows/2) * params.InitLength,
		minChunk: parallelMinChunk,
	}
}

// Compute writes the net force of every particle into out.
// All slices must have the grid's length.
func (f *ForceModel) Compute(pos, vel, normals, out []mgl64.Vec3) {
	dynamo.ParallelFor(len(out), f.minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f.particleForce(i, pos, vel[i], normals[i])
		}
	})
	for _, p := range f.topo.Pinned() {
		out[p] = mgl64.Vec3{}
	}
}

func (f *ForceModel) particleForce(i int, pos []mgl64.Vec3, vel, normal mgl64.Vec3) mgl64.Vec3 {
	force := f.Gravity()
	force = force.Add(f.DampingForce(vel))
	force = force.Add(f.SpringForce(i, pos))
	if f.InWindGate(pos[i]) {
		force = force.Add(f.WindForce(normal))
	}
	return force
}

// Gravity is the constant weight of one particle.
func (f *ForceModel) Gravity() mgl64.Vec3 { return f.gravity }

func (f *ForceModel) DampingForce(vel mgl64.Vec3) mgl64.Vec3 {
	return vel.Mul(-f.params.Damping)
}

// SpringForce sums the 12 link forces acting on particle i.
func (f *ForceModel) SpringForce(i int, pos []mgl64.Vec3) mgl64.Vec3 {
	var sum mgl64.Vec3
	p := pos[i]
	for k, j := range f.topo.Links[i] {
		sum = sum.Add(Hooke(p, pos[j], f.rest[k], f.params.Stiffness))
	}
	return sum
}

// Hooke is the force a spring of the given rest length exerts on p toward q.
// Coincident endpoints yield the zero vector.
func Hooke(p, q mgl64.Vec3, rest, stiffness float64) mgl64.Vec3 {
	d := q.Sub(p)
	l := d.Len()
	var u mgl64.Vec3
	if l >= springEpsilon {
		u = d.Mul(1 / l)
	}
	return d.Sub(u.Mul(rest)).Mul(stiffness)
}

// InWindGate reports whether a particle at p feels wind. The gate is fixed in
// world space at x >= (cols/2)·L and y <= -(rows/2)·L, independent of TopLeft.
func (f *ForceModel) InWindGate(p mgl64.Vec3) bool {
	return p.X() >= f.gateX && p.Y() <= f.gateY
}

// WindForce pushes along the normal in proportion to how far the wind
// direction deviates from it.
func (f *ForceModel) WindForce(normal mgl64.Vec3) mgl64.Vec3 {
	diff := f.params.WindDirection.Sub(normal)
	return normal.Mul(f.params.Wind * diff.Dot(normal))
}
