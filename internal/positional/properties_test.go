package positional

import (
	"math"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

func freeBodyScene() *system.System {
	opts := system.DefaultOptions()
	opts.Gravity = spatial.Vec3{}
	opts.Timestep = 1e-3
	opts.VelDamping = 0.5
	opts.AngDamping = 0.5

	return &system.System{
		Links: []system.Link{{
			Parent:     -1,
			Joint:      system.JointFree,
			Mass:       2,
			Inertia:    spatial.Vec3{X: 0.03, Y: 0.03, Z: 0.03},
			VelDamping: 1.5,
			AngDamping: 0.8,
		}},
		Opts: opts,
	}
}

func kineticEnergy(sys *system.System, st *State) float64 {
	e := 0.0
	for i := range sys.Links {
		l := &sys.Links[i]
		v := st.XDI[i].Vel
		w := st.XDI[i].Ang
		r := st.XI[i].Rot.Mat()
		iw := r.Mul(spatial.Diag(l.Inertia)).Mul(r.Transpose())
		e += 0.5*l.Mass*v.NormSq() + 0.5*w.Dot(iw.MulVec(w))
	}
	return e
}

var _ = Describe("Step", func() {
	var (
		sys *system.System
		st  *State
	)

	BeforeEach(func() {
		sys = pendulumScene(2)
		var err error
		st, err = Init(sys, []float64{0.6, -0.4}, []float64{0.3, 0.2})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should keep link orientations unit length", func() {
		for i := 0; i < 500; i++ {
			var err error
			st, err = Step(sys, st, nil)
			Expect(err).NotTo(HaveOccurred())
		}
		for i := range st.X {
			Expect(math.Abs(st.X[i].Rot.Norm() - 1)).To(BeNumerically("<=", 1e-6))
			Expect(math.Abs(st.XI[i].Rot.Norm() - 1)).To(BeNumerically("<=", 1e-6))
		}
	})

	It("should not mutate the input state", func() {
		before := st.Clone()
		_, err := Step(sys, st, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Diff(before, st)).To(BeEmpty())
	})

	It("should be deterministic", func() {
		a, err := Step(sys, st, nil)
		Expect(err).NotTo(HaveOccurred())
		b, err := Step(sys, st, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Diff(a, b)).To(BeEmpty())
	})

	It("should let forked trajectories evolve identically", func() {
		fork := st.Clone()
		a, b := st, fork
		for i := 0; i < 50; i++ {
			var err error
			a, err = Step(sys, a, nil)
			Expect(err).NotTo(HaveOccurred())
			b, err = Step(sys, b, nil)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(cmp.Diff(a, b)).To(BeEmpty())
	})

	It("should pull a disturbed link back toward its joint", func() {
		disturbed := st.Clone()
		disturbed.XI[0].Pos = disturbed.XI[0].Pos.Add(spatial.Vec3{X: 0.05})
		next, err := Step(sys, disturbed, nil)
		Expect(err).NotTo(HaveOccurred())
		// Four Gauss-Seidel iterations drain most, not all, of the violation.
		anchor := spatial.Vec3{Z: 2}
		Expect(next.X[0].Pos.Sub(anchor).Norm()).To(BeNumerically("<=", 5e-3))
	})

	Context("with a damped free body", func() {
		It("should never increase kinetic energy", func() {
			free := freeBodyScene()
			q := []float64{0, 0, 1, 1, 0, 0, 0}
			qd := []float64{1, -2, 0.5, 3, 1, -2}
			fst, err := Init(free, q, qd)
			Expect(err).NotTo(HaveOccurred())

			start := kineticEnergy(free, fst)
			prev := start
			for i := 0; i < 200; i++ {
				fst, err = Step(free, fst, nil)
				Expect(err).NotTo(HaveOccurred())
				e := kineticEnergy(free, fst)
				Expect(e).To(BeNumerically("<=", prev+1e-12))
				prev = e
			}
			Expect(prev).To(BeNumerically("<", 0.9*start))
		})
	})
})

var _ = Describe("Init", func() {
	It("should rebuild an identical state from its own coordinates", func() {
		sys := pendulumScene(2)
		a, err := Init(sys, []float64{0.6, -0.4}, []float64{0.3, 0.2})
		Expect(err).NotTo(HaveOccurred())
		b, err := Init(sys, a.Q, a.QD)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Diff(a, b)).To(BeEmpty())
	})

	It("should reject mismatched coordinate vectors", func() {
		sys := pendulumScene(1)
		_, err := Init(sys, []float64{0.1, 0.2}, []float64{0})
		Expect(err).To(MatchError(system.ErrDimension))
	})
})
