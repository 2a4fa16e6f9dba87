// Package positional steps rigid-body systems with position-based dynamics.
//
// Each step predicts link poses by semi-implicit Euler under external forces,
// then runs a fixed number of Gauss-Seidel projection iterations that nudge
// poses back onto the joint, limit and contact manifolds, and finally
// rebuilds velocities from the corrected pose delta. Both entry points are
// pure: they never mutate their inputs and return freshly allocated states,
// so independent trajectories can be stepped concurrently and forked from a
// shared ancestor.
package positional

import (
	"github.com/san-kum/rigidsim/internal/com"
	"github.com/san-kum/rigidsim/internal/kinematics"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// Init validates the descriptor and builds the initial state from
// generalized coordinates. Calling it again with the same inputs yields an
// identical state.
func Init(sys *system.System, q, qd []float64) (*State, error) {
	if err := sys.Validate(); err != nil {
		return nil, err
	}
	if err := sys.CheckDims(q, qd); err != nil {
		return nil, err
	}

	x, xd := kinematics.Forward(sys, q, qd)
	xi, xdi := com.FromWorld(sys, x, xd)
	if i := firstInvalidPose(xi); i >= 0 {
		return nil, &DivergenceError{Link: i, Iteration: -1, Stage: "init"}
	}
	if i := firstInvalidMotion(xdi); i >= 0 {
		return nil, &DivergenceError{Link: i, Iteration: -1, Stage: "init"}
	}

	return &State{
		Q:   append([]float64(nil), q...),
		QD:  append([]float64(nil), qd...),
		X:   x,
		XD:  xd,
		XI:  xi,
		XDI: xdi,
	}, nil
}

// Step advances one timestep. act holds one scalar per actuator; nil means
// zero action. The input state is read only.
func Step(sys *system.System, st *State, act []float64) (*State, error) {
	if err := sys.CheckAction(act); err != nil {
		return nil, err
	}
	dt := sys.Opts.Timestep
	n := len(sys.Links)

	// Free motion: velocity first from forces, then pose from the updated
	// velocity.
	fLin, fAng := actuatorLoads(sys, st, act)
	invI := com.InvInertiaWorld(sys, st.XI)
	xi := make([]spatial.Transform, n)
	for i := range sys.Links {
		l := &sys.Links[i]
		vel := st.XDI[i].Vel.Add(sys.Opts.Gravity.Add(fLin[i].Scale(1 / l.Mass)).Scale(dt))
		ang := st.XDI[i].Ang.Add(invI[i].MulVec(fAng[i]).Scale(dt))
		xi[i] = spatial.Transform{
			Pos: st.XI[i].Pos.Add(vel.Scale(dt)),
			Rot: spatial.IntegrateQuat(st.XI[i].Rot, ang, dt),
		}
	}
	if i := firstInvalidPose(xi); i >= 0 {
		return nil, &DivergenceError{Link: i, Iteration: -1, Stage: "integration"}
	}

	// Projection loop: fixed budget, fixed order, always against the
	// freshest poses.
	s := &solver{sys: sys, xi: xi}
	for iter := 0; iter < sys.Opts.SolverIterations; iter++ {
		s.refresh()
		s.projectJoints()
		s.projectLimits()
		s.projectContacts()
		if i := firstInvalidPose(xi); i >= 0 {
			return nil, &DivergenceError{Link: i, Iteration: iter, Stage: "projection"}
		}
	}

	// Velocity reconciliation from the corrected trajectory.
	xdi := make([]spatial.Motion, n)
	for i := range sys.Links {
		l := &sys.Links[i]
		kv := 1 / (1 + dt*(sys.Opts.VelDamping+l.VelDamping))
		ka := 1 / (1 + dt*(sys.Opts.AngDamping+l.AngDamping))
		xdi[i] = spatial.Motion{
			Vel: xi[i].Pos.Sub(st.XI[i].Pos).Scale(kv / dt),
			Ang: spatial.AngVelFromQuats(st.XI[i].Rot, xi[i].Rot, dt).Scale(ka),
		}
	}
	retainContactVelocity(sys, xi, xdi, st.XDI)
	if i := firstInvalidMotion(xdi); i >= 0 {
		return nil, &DivergenceError{Link: i, Iteration: sys.Opts.SolverIterations, Stage: "velocity reconciliation"}
	}

	x, xd := com.ToWorld(sys, xi, xdi)
	q, qd := kinematics.Inverse(sys, x, xd)
	return &State{Q: q, QD: qd, X: x, XD: xd, XI: xi, XDI: xdi}, nil
}
