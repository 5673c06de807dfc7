package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// ParticleState owns the per-particle kinematic arrays. It changes only
// through Apply, which replaces all three arrays together.
type ParticleState struct {
	rows, cols int
	pos        []mgl64.Vec3
	vel        []mgl64.Vec3
	acc        []mgl64.Vec3
}

// NewParticleState lays the grid out flat in the z=0 plane hanging down from
// topLeft: (r, c) sits at topLeft + (c*spacing, -r*spacing, 0).
func NewParticleState(rows, cols int, topLeft mgl64.Vec3, spacing float64) *ParticleState {
	n := rows * cols
	s := &ParticleState{
		rows: rows,
		cols: cols,
		pos:  make([]mgl64.Vec3, n),
		vel:  make([]mgl64.Vec3, n),
		acc:  make([]mgl64.Vec3, n),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			s.pos[r*cols+c] = topLeft.Add(mgl64.Vec3{float64(c) * spacing, -float64(r) * spacing, 0})
		}
	}
	return s
}

func (s *ParticleState) Len() int { return s.rows * s.cols }

// Apply replaces positions, velocities and accelerations in one go.
func (s *ParticleState) Apply(pos, vel, acc []mgl64.Vec3) error {
	n := s.Len()
	if len(pos) != n || len(vel) != n || len(acc) != n {
		return fmt.Errorf("%w: want %d, got pos=%d vel=%d acc=%d", ErrShapeMismatch, n, len(pos), len(vel), len(acc))
	}
	copy(s.pos, pos)
	copy(s.vel, vel)
	copy(s.acc, acc)
	return nil
}

func (s *ParticleState) Positions() []mgl64.Vec3     { return cloneVecs(s.pos) }
func (s *ParticleState) Velocities() []mgl64.Vec3    { return cloneVecs(s.vel) }
func (s *ParticleState) Accelerations() []mgl64.Vec3 { return cloneVecs(s.acc) }

// At returns the kinematics of particle (row, col).
func (s *ParticleState) At(row, col int) (pos, vel, acc mgl64.Vec3) {
	i := row*s.cols + col
	return s.pos[i], s.vel[i], s.acc[i]
}

// Flatten packs the state as [x0,y0,z0,x1,... , vx0,vy0,vz0,...].
func (s *ParticleState) Flatten() dynamo.State {
	return flatten(s.pos, s.vel)
}

func flatten(pos, vel []mgl64.Vec3) dynamo.State {
	n := len(pos)
	x := make(dynamo.State, 6*n)
	for i := 0; i < n; i++ {
		copy(x[3*i:3*i+3], pos[i][:])
		copy(x[3*n+3*i:3*n+3*i+3], vel[i][:])
	}
	return x
}

// unflatten is the inverse of flatten. It reads into dst slices of length n.
func unflatten(x dynamo.State, pos, vel []mgl64.Vec3) {
	n := len(pos)
	for i := 0; i < n; i++ {
		pos[i] = mgl64.Vec3{x[3*i], x[3*i+1], x[3*i+2]}
		vel[i] = mgl64.Vec3{x[3*n+3*i], x[3*n+3*i+1], x[3*n+3*i+2]}
	}
}

func cloneVecs(v []mgl64.Vec3) []mgl64.Vec3 {
	c := make([]mgl64.Vec3, len(v))
	copy(c, v)
	return c
}
