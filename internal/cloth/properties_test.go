package cloth_test

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
)

var _ = Describe("Simulation", func() {
	var (
		params cloth.Params
		sim    *cloth.Simulation
	)

	BeforeEach(func() {
		params = cloth.DefaultParams()
	})

	JustBeforeEach(func() {
		var err error
		sim, err = cloth.New(params)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("pinned corners", func() {
		BeforeEach(func() {
			params.Wind = 2
			params.Gravity = 9.8
		})

		It("feel no net force", func() {
			forces := sim.NetForces()
			for _, p := range sim.Topology().Pinned() {
				Expect(forces[p]).To(Equal(mgl64.Vec3{}))
			}
		})

		It("never leave their initial position", func() {
			start := sim.Particles().Positions()
			for i := 0; i < 200; i++ {
				frame, err := sim.Step(0.005)
				Expect(err).NotTo(HaveOccurred())
				for _, p := range sim.Topology().Pinned() {
					Expect(frame.Positions[p]).To(Equal(start[p]))
				}
			}
		})
	})

	Describe("the rest configuration", func() {
		BeforeEach(func() {
			params = cloth.Params{
				Rows:          3,
				Cols:          3,
				Stiffness:     10,
				InitLength:    1,
				PointMass:     1,
				WindDirection: mgl64.Vec3{0, 0, -1},
			}
		})

		It("is an equilibrium without gravity", func() {
			start := sim.Particles().Positions()
			frame, err := sim.Step(0.01)
			Expect(err).NotTo(HaveOccurred())
			for i, p := range frame.Positions {
				Expect(p.Sub(start[i]).Len()).To(BeNumerically("<", 1e-9))
			}
		})

		Context("with gravity", func() {
			BeforeEach(func() {
				params.Gravity = 9.8
			})

			It("falls freely away from the pins", func() {
				_, err := sim.Step(0.01)
				Expect(err).NotTo(HaveOccurred())

				_, v, _ := sim.Particles().At(1, 1)
				Expect(v.Y()).To(BeNumerically("~", -0.098, 1e-9))
				_, v0, _ := sim.Particles().At(0, 0)
				_, v2, _ := sim.Particles().At(0, 2)
				Expect(v0).To(Equal(mgl64.Vec3{}))
				Expect(v2).To(Equal(mgl64.Vec3{}))
			})
		})
	})

	Describe("normals", func() {
		It("face +z while the sheet is flat", func() {
			for _, n := range sim.Normals() {
				Expect(n.ApproxEqual(mgl64.Vec3{0, 0, 1})).To(BeTrue())
			}
		})

		It("stay unit length or zero while the cloth moves", func() {
			for i := 0; i < 100; i++ {
				frame, err := sim.Step(0.01)
				Expect(err).NotTo(HaveOccurred())
				for _, n := range frame.Normals {
					l := n.Len()
					Expect(l == 0 || math.Abs(l-1) < 1e-9).To(BeTrue(), "normal length %v", l)
				}
			}
		})
	})

	Describe("energy", func() {
		BeforeEach(func() {
			params.Damping = 0
			params.Wind = 0
		})

		It("stays bounded under symplectic Euler without dissipation", func() {
			e0 := sim.Energy(sim.State())
			for i := 0; i < 1000; i++ {
				_, err := sim.Step(0.001)
				Expect(err).NotTo(HaveOccurred())
			}
			e1 := sim.Energy(sim.State())
			Expect(math.Abs(e1-e0) / math.Abs(e0)).To(BeNumerically("<", 0.05))
		})
	})

	Describe("invalid input", func() {
		It("rejects grids smaller than 3x3", func() {
			params.Rows = 2
			_, err := cloth.New(params)
			Expect(err).To(MatchError(cloth.ErrGridTooSmall))
		})

		It("refuses a non-positive step", func() {
			_, err := sim.Step(0)
			Expect(err).To(HaveOccurred())
			Expect(sim.Steps()).To(BeZero())
		})
	})
})

var _ = Describe("Topology", func() {
	It("is a pure function of the grid shape", func() {
		Expect(cloth.BuildTopology(6, 4)).To(Equal(cloth.BuildTopology(6, 4)))
	})

	It("assigns rest lengths by offset class only", func() {
		rest := cloth.RestLengths(0.2)
		for k := range cloth.SpringOffsets {
			switch cloth.ClassOf(k) {
			case cloth.Structural:
				Expect(rest[k]).To(BeNumerically("~", 0.2, 1e-12))
			case cloth.Shear:
				Expect(rest[k]).To(BeNumerically("~", 0.2*math.Sqrt2, 1e-12))
			case cloth.Bend:
				Expect(rest[k]).To(BeNumerically("~", 0.4, 1e-12))
			}
		}
	})
})

var _ = Describe("Hooke", func() {
	It("has magnitude k|L1-L0| for any separation", func() {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 100; i++ {
			k := 0.1 + 20*rng.Float64()
			l0 := 0.05 + rng.Float64()
			l1 := 0.05 + 2*rng.Float64()
			dir := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Normalize()
			p := mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}

			f := cloth.Hooke(p, p.Add(dir.Mul(l1)), l0, k)
			Expect(f.Len()).To(BeNumerically("~", k*math.Abs(l1-l0), 1e-9))
		}
	})

	It("is zero and finite for coincident endpoints", func() {
		p := mgl64.Vec3{1, 2, 3}
		Expect(cloth.Hooke(p, p, 0.5, 10)).To(Equal(mgl64.Vec3{}))
	})
})
