package cloth

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// MinGridSize is the smallest row or column count that still fits a bend
// spring two nodes away.
const MinGridSize = 3

var (
	ErrGridTooSmall  = errors.New("cloth: rows and cols must be at least 3")
	ErrInvalidParams = errors.New("cloth: invalid parameters")
	ErrShapeMismatch = errors.New("cloth: array length does not match grid")
)

// Params is the immutable configuration of a cloth.
type Params struct {
	Rows, Cols    int
	TopLeft       mgl64.Vec3
	Gravity       float64
	Stiffness     float64
	InitLength    float64
	PointMass     float64
	Damping       float64
	Wind          float64
	WindDirection mgl64.Vec3
}

// DefaultParams matches the hanging-cloth demo: a 14×14 sheet with light wind.
func DefaultParams() Params {
	return Params{
		Rows:          14,
		Cols:          14,
		Gravity:       4.0,
		Stiffness:     8.0,
		InitLength:    0.2,
		PointMass:     0.01,
		Damping:       0.05,
		Wind:          0.02,
		WindDirection: mgl64.Vec3{0, 0, -1},
	}
}

func (p Params) Validate() error {
	if p.Rows < MinGridSize || p.Cols < MinGridSize {
		return fmt.Errorf("%w: got %dx%d", ErrGridTooSmall, p.Rows, p.Cols)
	}
	if !(p.PointMass > 0) || math.IsInf(p.PointMass, 0) {
		return fmt.Errorf("%w: point mass must be positive, got %g", ErrInvalidParams, p.PointMass)
	}
	if !(p.InitLength > 0) || math.IsInf(p.InitLength, 0) {
		return fmt.Errorf("%w: init length must be positive, got %g", ErrInvalidParams, p.InitLength)
	}
	if p.Stiffness < 0 || math.IsNaN(p.Stiffness) {
		return fmt.Errorf("%w: stiffness must be non-negative, got %g", ErrInvalidParams, p.Stiffness)
	}
	if p.Damping < 0 || math.IsNaN(p.Damping) {
		return fmt.Errorf("%w: damping must be non-negative, got %g", ErrInvalidParams, p.Damping)
	}
	return nil
}

// GetParams lists the scalar parameters by name.
func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":     p.Gravity,
		"stiffness":   p.Stiffness,
		"init_length": p.InitLength,
		"point_mass":  p.PointMass,
		"damping":     p.Damping,
		"wind":        p.Wind,
	}
}

// With returns a copy of p with one named scalar parameter replaced.
func (p Params) With(name string, value float64) (Params, error) {
	switch name {
	case "gravity":
		p.Gravity = value
	case "stiffness":
		p.Stiffness = value
	case "init_length":
		p.InitLength = value
	case "point_mass":
		p.PointMass = value
	case "damping":
		p.Damping = value
	case "wind":
		p.Wind = value
	default:
		return p, fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return p, nil
}
