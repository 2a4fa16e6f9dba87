package system

import (
	"fmt"
	"math"
)

const axisTol = 1e-9

// Validate checks the descriptor invariants. A nil error means every pipeline
// operation can trust the descriptor without re-checking.
func (s *System) Validate() error {
	if len(s.Links) == 0 {
		return &ConfigError{Link: -1, Field: "links", Reason: "system has no links"}
	}
	if s.Opts.Timestep <= 0 {
		return &ConfigError{Link: -1, Field: "timestep", Reason: fmt.Sprintf("must be positive, got %v", s.Opts.Timestep)}
	}
	if s.Opts.SolverIterations < 1 {
		return &ConfigError{Link: -1, Field: "solver_iterations", Reason: fmt.Sprintf("must be at least 1, got %d", s.Opts.SolverIterations)}
	}
	if s.Opts.CollideScale <= 0 || s.Opts.CollideScale > 1 {
		return &ConfigError{Link: -1, Field: "collide_scale", Reason: fmt.Sprintf("must be in (0, 1], got %v", s.Opts.CollideScale)}
	}
	if s.Opts.VelDamping < 0 || s.Opts.AngDamping < 0 {
		return &ConfigError{Link: -1, Field: "damping", Reason: "must be non-negative"}
	}
	if s.Opts.Elasticity < 0 || s.Opts.Elasticity > 1 {
		return &ConfigError{Link: -1, Field: "elasticity", Reason: fmt.Sprintf("must be in [0, 1], got %v", s.Opts.Elasticity)}
	}

	for i := range s.Links {
		if err := s.validateLink(i); err != nil {
			return err
		}
	}

	for i, p := range s.Planes {
		if math.Abs(p.Normal.Norm()-1) > axisTol {
			return &ConfigError{Link: -1, Field: fmt.Sprintf("planes[%d].normal", i), Reason: "must be a unit vector"}
		}
		if p.Friction < 0 {
			return &ConfigError{Link: -1, Field: fmt.Sprintf("planes[%d].friction", i), Reason: "must be non-negative"}
		}
	}

	for i, a := range s.Actuators {
		if a.Link < 0 || a.Link >= len(s.Links) {
			return &ConfigError{Link: -1, Field: fmt.Sprintf("actuators[%d].link", i), Reason: fmt.Sprintf("index %d out of range", a.Link)}
		}
		jt := s.Links[a.Link].Joint
		if jt != JointRevolute && jt != JointPrismatic {
			return &ConfigError{Link: a.Link, Field: fmt.Sprintf("actuators[%d]", i), Reason: fmt.Sprintf("cannot actuate %s joint", jt)}
		}
		if a.Gear == 0 {
			return &ConfigError{Link: a.Link, Field: fmt.Sprintf("actuators[%d].gear", i), Reason: "must be non-zero"}
		}
	}
	return nil
}

func (s *System) validateLink(i int) error {
	l := &s.Links[i]
	if l.Parent < -1 || l.Parent >= i {
		return &ConfigError{Link: i, Field: "parent", Reason: fmt.Sprintf("index %d breaks topological order", l.Parent)}
	}
	if l.Joint < JointFree || l.Joint > JointSpherical {
		return &ConfigError{Link: i, Field: "joint", Reason: fmt.Sprintf("unknown type %d", int(l.Joint))}
	}
	if l.Joint == JointFree && l.Parent != -1 {
		return &ConfigError{Link: i, Field: "joint", Reason: "free joints must attach to the world"}
	}
	if l.Mass <= 0 {
		return &ConfigError{Link: i, Field: "mass", Reason: fmt.Sprintf("must be positive, got %v", l.Mass)}
	}
	if l.Inertia.X <= 0 || l.Inertia.Y <= 0 || l.Inertia.Z <= 0 {
		return &ConfigError{Link: i, Field: "inertia", Reason: fmt.Sprintf("principal moments must be positive, got %v", l.Inertia)}
	}
	if l.Joint == JointRevolute || l.Joint == JointPrismatic {
		if math.Abs(l.Axis.Norm()-1) > axisTol {
			return &ConfigError{Link: i, Field: "axis", Reason: "must be a unit vector"}
		}
	}
	if l.Joint != JointFree {
		if l.Stiffness <= 0 || l.Stiffness > 1 {
			return &ConfigError{Link: i, Field: "stiffness", Reason: fmt.Sprintf("must be in (0, 1], got %v", l.Stiffness)}
		}
		if l.AngStiffness <= 0 || l.AngStiffness > 1 {
			return &ConfigError{Link: i, Field: "ang_stiffness", Reason: fmt.Sprintf("must be in (0, 1], got %v", l.AngStiffness)}
		}
	}
	if l.VelDamping < 0 || l.AngDamping < 0 {
		return &ConfigError{Link: i, Field: "damping", Reason: "must be non-negative"}
	}
	if l.Limited {
		if l.Joint != JointRevolute && l.Joint != JointPrismatic {
			return &ConfigError{Link: i, Field: "limits", Reason: fmt.Sprintf("%s joints cannot be limited", l.Joint)}
		}
		if l.LimitMin >= l.LimitMax {
			return &ConfigError{Link: i, Field: "limits", Reason: fmt.Sprintf("min %v must be below max %v", l.LimitMin, l.LimitMax)}
		}
		if l.LimitStiffness <= 0 || l.LimitStiffness > 1 {
			return &ConfigError{Link: i, Field: "limit_stiffness", Reason: fmt.Sprintf("must be in (0, 1], got %v", l.LimitStiffness)}
		}
	}
	switch l.Geom.Shape {
	case GeomNone:
	case GeomSphere:
		if l.Geom.Radius <= 0 {
			return &ConfigError{Link: i, Field: "geom.radius", Reason: "must be positive"}
		}
	case GeomCapsule:
		if l.Geom.Radius <= 0 || l.Geom.HalfLen <= 0 {
			return &ConfigError{Link: i, Field: "geom", Reason: "capsule needs positive radius and half length"}
		}
	default:
		return &ConfigError{Link: i, Field: "geom.shape", Reason: fmt.Sprintf("unknown shape %d", int(l.Geom.Shape))}
	}
	if l.Geom.Shape != GeomNone && l.Geom.Friction < 0 {
		return &ConfigError{Link: i, Field: "geom.friction", Reason: "must be non-negative"}
	}
	return nil
}

// CheckDims verifies q/qd lengths against the descriptor.
func (s *System) CheckDims(q, qd []float64) error {
	if len(q) != s.QSize() {
		return &DimensionError{Vector: "q", Got: len(q), Want: s.QSize()}
	}
	if len(qd) != s.QdSize() {
		return &DimensionError{Vector: "qd", Got: len(qd), Want: s.QdSize()}
	}
	return nil
}

// CheckAction verifies an action vector; nil means zero action everywhere.
func (s *System) CheckAction(act []float64) error {
	if act != nil && len(act) != len(s.Actuators) {
		return &DimensionError{Vector: "action", Got: len(act), Want: len(s.Actuators)}
	}
	return nil
}
