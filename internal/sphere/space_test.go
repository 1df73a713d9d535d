package sphere_test

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sphere"
)

func newSpace(seed int64, damping float64) *sphere.Space {
	cfg := dynamo.DefaultFieldConfig()
	cfg.Seed = seed
	cfg.Damping = damping
	s, err := sphere.NewSpace(cfg)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func expectOnSphere(s *sphere.Space) {
	for i, p := range s.Positions() {
		Expect(math.Abs(p.Len()-1)).To(BeNumerically("<", 1e-6), "electron %d at %v", i, p)
	}
}

var _ = Describe("Space", func() {
	Describe("construction", func() {
		It("rejects a non-positive distance floor", func() {
			_, err := sphere.NewSpace(dynamo.FieldConfig{MinDistance: 0})
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("rejects negative damping", func() {
			_, err := sphere.NewSpace(dynamo.FieldConfig{MinDistance: 1e-3, Damping: -1})
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})
	})

	Describe("adding and removing electrons", func() {
		var s *sphere.Space

		BeforeEach(func() {
			s = newSpace(7, 0)
		})

		It("places new electrons on the unit sphere at rest", func() {
			for i := 0; i < 100; i++ {
				h := s.AddElectron()
				Expect(int(h)).To(Equal(i))
			}
			Expect(s.Len()).To(Equal(100))
			expectOnSphere(s)
			for _, e := range s.Electrons() {
				Expect(e.Velocity).To(Equal(mgl64.Vec3{}))
			}
		})

		It("treats removal from an empty space as a no-op", func() {
			Expect(s.RemoveElectron()).To(BeFalse())
			Expect(s.Len()).To(Equal(0))
			Expect(s.RemoveElectron()).To(BeFalse())
			Expect(s.Len()).To(Equal(0))
		})

		It("leaves surviving electrons untouched after add then remove", func() {
			for i := 0; i < 6; i++ {
				s.AddElectron()
			}
			for i := 0; i < 25; i++ {
				Expect(s.Step(0.01, 0.05)).To(Succeed())
			}
			before := s.Electrons()

			s.AddElectron()
			Expect(s.Len()).To(Equal(7))
			Expect(s.RemoveElectron()).To(BeTrue())

			Expect(s.Len()).To(Equal(6))
			Expect(s.Electrons()).To(Equal(before))
		})

		It("projects explicit placements onto the sphere", func() {
			h, err := s.AddElectronAt(mgl64.Vec3{0, 0, 5})
			Expect(err).NotTo(HaveOccurred())
			p, err := s.Position(h)
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(mgl64.Vec3{0, 0, 1}))

			_, err = s.AddElectronAt(mgl64.Vec3{})
			Expect(errors.Is(err, dynamo.ErrDegenerate)).To(BeTrue())
			Expect(s.Len()).To(Equal(1))
		})

		It("reports unknown handles", func() {
			_, err := s.Position(3)
			Expect(errors.Is(err, dynamo.ErrInvalidHandle)).To(BeTrue())
		})
	})

	Describe("stepping", func() {
		It("rejects invalid timesteps and strengths", func() {
			s := newSpace(1, 0)
			s.AddElectron()
			Expect(errors.Is(s.Step(0, 1), dynamo.ErrInvalidTimestep)).To(BeTrue())
			Expect(errors.Is(s.Step(-1, 1), dynamo.ErrInvalidTimestep)).To(BeTrue())
			Expect(errors.Is(s.Step(0.01, -1), dynamo.ErrInvalidConfig)).To(BeTrue())
			Expect(errors.Is(s.Step(0.01, math.NaN()), dynamo.ErrInvalidConfig)).To(BeTrue())
			Expect(s.Ticks()).To(Equal(0))
		})

		It("keeps every electron on the sphere for 10,000 ticks", func() {
			s := newSpace(42, 0)
			for i := 0; i < 12; i++ {
				s.AddElectron()
			}
			worst := 0.0
			for tick := 0; tick < 10000; tick++ {
				Expect(s.Step(0.01, dynamo.DefaultForceConstant)).To(Succeed())
				for _, p := range s.Positions() {
					worst = math.Max(worst, math.Abs(p.Len()-1))
				}
			}
			Expect(s.Ticks()).To(Equal(10000))
			Expect(worst).To(BeNumerically("<", 1e-6))
		})

		It("separates coincident electrons", func() {
			s := newSpace(3, 0)
			for i := 0; i < 3; i++ {
				_, err := s.AddElectronAt(mgl64.Vec3{1, 0, 0})
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(s.Step(0.01, 1e-6)).To(Succeed())
			expectOnSphere(s)
			ps := s.Positions()
			for _, p := range ps {
				Expect(math.IsNaN(p.X())).To(BeFalse())
			}
			for i := range ps {
				for j := i + 1; j < len(ps); j++ {
					Expect(ps[i].Sub(ps[j]).Len()).To(BeNumerically(">", 0))
				}
			}
		})

		It("separates coincident electrons the same way every time", func() {
			run := func() []mgl64.Vec3 {
				s := newSpace(3, 0)
				s.AddElectronAt(mgl64.Vec3{0, 0, 1})
				s.AddElectronAt(mgl64.Vec3{0, 0, 1})
				Expect(s.Step(0.001, 0.05)).To(Succeed())
				return s.Positions()
			}
			Expect(run()).To(Equal(run()))
		})

		It("pushes two nearby electrons apart", func() {
			s := newSpace(3, 0)
			s.AddElectronAt(mgl64.Vec3{1, 0.05, 0})
			s.AddElectronAt(mgl64.Vec3{1, -0.05, 0})

			start := s.Positions()
			d0 := start[0].Sub(start[1]).Len()
			for i := 0; i < 10; i++ {
				Expect(s.Step(0.01, 0.05)).To(Succeed())
			}
			end := s.Positions()
			Expect(end[0].Sub(end[1]).Len()).To(BeNumerically(">", d0))
		})

		It("is deterministic for a fixed seed", func() {
			a := newSpace(99, 0)
			b := newSpace(99, 0)
			for i := 0; i < 8; i++ {
				a.AddElectron()
				b.AddElectron()
			}
			for i := 0; i < 500; i++ {
				Expect(a.Step(0.01, 0.05)).To(Succeed())
				Expect(b.Step(0.01, 0.05)).To(Succeed())
			}
			Expect(a.Electrons()).To(Equal(b.Electrons()))
		})

		It("settles four damped electrons into a tetrahedron", func() {
			s := newSpace(5, 2)
			s.AddElectronAt(mgl64.Vec3{1, 0, 0})
			s.AddElectronAt(mgl64.Vec3{0, 1, 0})
			s.AddElectronAt(mgl64.Vec3{0, 0, 1})
			s.AddElectronAt(mgl64.Vec3{-1, -1, 0.2})

			e0 := s.PotentialEnergy(1)
			for i := 0; i < 5000; i++ {
				Expect(s.Step(0.01, 1)).To(Succeed())
			}
			Expect(s.PotentialEnergy(1)).To(BeNumerically("<", e0))
			Expect(s.KineticEnergy()).To(BeNumerically("<", 1e-6))

			edge := math.Sqrt(8.0 / 3.0)
			p := s.Positions()
			for i := range p {
				for j := i + 1; j < len(p); j++ {
					Expect(p[i].Sub(p[j]).Len()).To(BeNumerically("~", edge, 1e-2))
				}
			}
		})
	})

	Describe("as a stepper", func() {
		It("steps with the bound strength and reports validity", func() {
			a, b := newSpace(1, 0), newSpace(1, 0)
			for i := 0; i < 6; i++ {
				a.AddElectron()
				b.AddElectron()
			}

			st := a.Stepper(0.3)
			Expect(st.Step(0.01)).To(Succeed())
			Expect(b.Step(0.01, 0.3)).To(Succeed())
			Expect(a.Positions()).To(Equal(b.Positions()))

			v, ok := st.(dynamo.Validator)
			Expect(ok).To(BeTrue())
			Expect(v.Valid()).To(BeTrue())
		})
	})
})

var _ = Describe("PairForce", func() {
	pairs := [][2]mgl64.Vec3{
		{{1, 0, 0}, {0, 1, 0}},
		{{0, 0, 1}, {0.6, 0.8, 0}},
		{mgl64.Vec3{1, 2, 3}.Normalize(), mgl64.Vec3{-3, 0.5, 1}.Normalize()},
		{{1, 0, 0}, {0.9999, 0.0001, 0}},
	}

	It("is antisymmetric in raw form", func() {
		for _, pr := range pairs {
			fab, ok := sphere.PairForce(pr[0], pr[1], 0.7, dynamo.DefaultMinDistance)
			Expect(ok).To(BeTrue())
			fba, ok := sphere.PairForce(pr[1], pr[0], 0.7, dynamo.DefaultMinDistance)
			Expect(ok).To(BeTrue())

			Expect(fab.Len()).To(Equal(fba.Len()))
			Expect(fab.Add(fba)).To(Equal(mgl64.Vec3{}))
		}
	})

	It("follows the inverse-square law", func() {
		f, ok := sphere.PairForce(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{0, 0, 0}, 3, dynamo.DefaultMinDistance)
		Expect(ok).To(BeTrue())
		Expect(f.X()).To(BeNumerically("~", 0.75, 1e-15))
		Expect(f.Y()).To(BeZero())
		Expect(f.Z()).To(BeZero())
	})

	It("clamps the distance from below", func() {
		f, ok := sphere.PairForce(mgl64.Vec3{1e-6, 0, 0}, mgl64.Vec3{}, 1, 1e-2)
		Expect(ok).To(BeTrue())
		Expect(f.Len()).To(BeNumerically("~", 1e4, 1e-6))
	})

	It("has no direction for coincident points", func() {
		_, ok := sphere.PairForce(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, 1, 1e-3)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Tangential", func() {
	It("removes the normal component", func() {
		n := mgl64.Vec3{1, 2, 2}.Normalize()
		f := mgl64.Vec3{3, -1, 4}
		ft := sphere.Tangential(f, n)
		Expect(ft.Dot(n)).To(BeNumerically("~", 0, 1e-12))
		Expect(f.Sub(ft).Cross(n).Len()).To(BeNumerically("~", 0, 1e-12))
	})
})
