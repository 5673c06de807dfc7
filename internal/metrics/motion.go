package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// MeanSpeed averages particle speed over particles and observations. It
// approaches zero as a damped cloth settles.
type MeanSpeed struct {
	name    string
	sum     float64
	samples int
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{
		name: "mean_speed",
	}
}

func (m *MeanSpeed) Name() string {
	return m.name
}

func (m *MeanSpeed) Observe(x dynamo.State, t float64) {
	n := particleCount(x)
	if n == 0 {
		return
	}
	total := 0.0
	for i := 0; i < n; i++ {
		vx, vy, vz := velocity(x, i)
		total += math.Sqrt(vx*vx + vy*vy + vz*vz)
	}
	m.sum += total / float64(n)
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.sum = 0
	m.samples = 0
}
