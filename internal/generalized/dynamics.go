package generalized

import (
	"github.com/san-kum/rigidsim/internal/kinematics"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// inverseDynamics computes the joint forces required to realize qdd at
// (q, qd) under gravity, by a world-frame recursive Newton-Euler pass over
// the tree. All joints are one degree of freedom, so coordinate k belongs to
// link k.
func inverseDynamics(sys *system.System, q, qd, qdd []float64) []float64 {
	n := len(sys.Links)
	x, xd := kinematics.Forward(sys, q, qd)

	// Cached world-frame joint geometry.
	axisW := make([]spatial.Vec3, n)
	anchorW := make([]spatial.Vec3, n)
	comW := make([]spatial.Vec3, n)
	for i := range sys.Links {
		l := &sys.Links[i]
		axisW[i] = kinematics.WorldAxis(sys, x, i)
		anchorW[i] = x[i].Point(l.ChildAnchor)
		comW[i] = x[i].Point(l.COM)
	}

	// Outward pass: angular and COM accelerations.
	alpha := make([]spatial.Vec3, n)
	aCom := make([]spatial.Vec3, n)
	for i := range sys.Links {
		l := &sys.Links[i]
		var alphaP, omegaP, aAnchor spatial.Vec3
		if p := l.Parent; p >= 0 {
			alphaP = alpha[p]
			omegaP = xd[p].Ang
			r := anchorW[i].Sub(comW[p])
			if l.Joint == system.JointPrismatic {
				r = x[p].Point(l.ParentAnchor).Sub(comW[p])
			}
			aAnchor = aCom[p].Add(alphaP.Cross(r)).Add(omegaP.Cross(omegaP.Cross(r)))
		}

		switch l.Joint {
		case system.JointRevolute:
			alpha[i] = alphaP.
				Add(axisW[i].Scale(qdd[i])).
				Add(omegaP.Cross(axisW[i].Scale(qd[i])))

		case system.JointPrismatic:
			alpha[i] = alphaP
			// Transport, centripetal and Coriolis terms of the slide.
			slide := axisW[i].Scale(q[i])
			aAnchor = aAnchor.
				Add(alphaP.Cross(slide)).
				Add(omegaP.Cross(omegaP.Cross(slide))).
				Add(omegaP.Cross(axisW[i].Scale(2 * qd[i]))).
				Add(axisW[i].Scale(qdd[i]))
		}

		rc := comW[i].Sub(anchorW[i])
		aCom[i] = aAnchor.
			Add(alpha[i].Cross(rc)).
			Add(xd[i].Ang.Cross(xd[i].Ang.Cross(rc)))
	}

	// Inward pass: joint wrenches, children before parents.
	f := make([]spatial.Vec3, n)   // force through joint i onto link i
	m := make([]spatial.Vec3, n)   // couple through joint i onto link i
	accF := make([]spatial.Vec3, n)
	accM := make([]spatial.Vec3, n)
	tau := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		l := &sys.Links[i]
		iw := inertiaWorld(l.Inertia, x[i].Rot)

		f[i] = aCom[i].Sub(sys.Opts.Gravity).Scale(l.Mass).Add(accF[i])
		m[i] = iw.MulVec(alpha[i]).
			Add(xd[i].Ang.Cross(iw.MulVec(xd[i].Ang))).
			Sub(anchorW[i].Sub(comW[i]).Cross(f[i])).
			Add(accM[i])

		if p := l.Parent; p >= 0 {
			accF[p] = accF[p].Add(f[i])
			accM[p] = accM[p].Add(m[i]).Add(anchorW[i].Sub(comW[p]).Cross(f[i]))
		}

		switch l.Joint {
		case system.JointRevolute:
			tau[i] = axisW[i].Dot(m[i])
		case system.JointPrismatic:
			tau[i] = axisW[i].Dot(f[i])
		}
	}
	return tau
}

// forwardDynamics solves for joint accelerations under applied joint forces
// tau. The mass matrix is extracted column by column with unit accelerations,
// then the linear system is solved by Gaussian elimination.
func forwardDynamics(sys *system.System, q, qd, tau []float64) []float64 {
	n := len(q)
	bias := inverseDynamics(sys, q, qd, make([]float64, n))

	mass := make([][]float64, n)
	basis := make([]float64, n)
	for k := 0; k < n; k++ {
		for i := range basis {
			basis[i] = 0
		}
		basis[k] = 1
		col := inverseDynamics(sys, q, qd, basis)
		for i := 0; i < n; i++ {
			if mass[i] == nil {
				mass[i] = make([]float64, n)
			}
			mass[i][k] = col[i] - bias[i]
		}
	}

	rhs := make([]float64, n)
	for i := 0; i < n; i++ {
		rhs[i] = tau[i] - bias[i]
	}
	return solveLinear(mass, rhs)
}

func inertiaWorld(principal spatial.Vec3, rot spatial.Quat) spatial.Mat3 {
	r := rot.Mat()
	return r.Mul(spatial.Diag(principal)).Mul(r.Transpose())
}

// solveLinear solves A x = b by Gauss-Jordan elimination on a copy of the
// system, with partial pivoting.
func solveLinear(a [][]float64, b []float64) []float64 {
	n := len(b)
	m := make([][]float64, n)
	for i := 0; i < n; i++ {
		m[i] = make([]float64, n+1)
		copy(m[i], a[i])
		m[i][n] = b[i]
	}
	for i := 0; i < n; i++ {
		piv := i
		for r := i + 1; r < n; r++ {
			if abs(m[r][i]) > abs(m[piv][i]) {
				piv = r
			}
		}
		m[i], m[piv] = m[piv], m[i]

		diag := m[i][i]
		for c := i; c <= n; c++ {
			m[i][c] /= diag
		}
		for r := 0; r < n; r++ {
			if r == i {
				continue
			}
			factor := m[r][i]
			for c := i; c <= n; c++ {
				m[r][c] -= factor * m[i][c]
			}
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = m[i][n]
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
