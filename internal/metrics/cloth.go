package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// The metrics below read states laid out as [positions..., velocities...]
// with three components per particle.

func particleCount(x dynamo.State) int { return len(x) / 6 }

func position(x dynamo.State, i int) (px, py, pz float64) {
	return x[3*i], x[3*i+1], x[3*i+2]
}

func velocity(x dynamo.State, i int) (vx, vy, vz float64) {
	o := 3 * particleCount(x)
	return x[o+3*i], x[o+3*i+1], x[o+3*i+2]
}

// PinDrift is the largest distance any pinned particle has moved from where
// it was first observed. It stays at zero for a correctly pinned cloth.
type PinDrift struct {
	name    string
	pinned  []int
	anchors [][3]float64
	max     float64
}

func NewPinDrift(pinned ...int) *PinDrift {
	return &PinDrift{
		name:   "pin_drift",
		pinned: pinned,
	}
}

func (p *PinDrift) Name() string { return p.name }

func (p *PinDrift) Observe(x dynamo.State, t float64) {
	if p.anchors == nil {
		p.anchors = make([][3]float64, len(p.pinned))
		for k, i := range p.pinned {
			px, py, pz := position(x, i)
			p.anchors[k] = [3]float64{px, py, pz}
		}
		return
	}
	for k, i := range p.pinned {
		px, py, pz := position(x, i)
		a := p.anchors[k]
		d := math.Sqrt((px-a[0])*(px-a[0]) + (py-a[1])*(py-a[1]) + (pz-a[2])*(pz-a[2]))
		p.max = math.Max(p.max, d)
	}
}

func (p *PinDrift) Value() float64 { return p.max }

func (p *PinDrift) Reset() {
	p.anchors = nil
	p.max = 0
}

// MaxSag is the largest drop of any particle below its first observed
// height.
type MaxSag struct {
	name  string
	start []float64
	max   float64
}

func NewMaxSag() *MaxSag {
	return &MaxSag{name: "max_sag"}
}

func (m *MaxSag) Name() string { return m.name }

func (m *MaxSag) Observe(x dynamo.State, t float64) {
	n := particleCount(x)
	if m.start == nil {
		m.start = make([]float64, n)
		for i := range m.start {
			_, m.start[i], _ = position(x, i)
		}
		return
	}
	for i := 0; i < n && i < len(m.start); i++ {
		_, py, _ := position(x, i)
		m.max = math.Max(m.max, m.start[i]-py)
	}
}

func (m *MaxSag) Value() float64 { return m.max }

func (m *MaxSag) Reset() {
	m.start = nil
	m.max = 0
}
