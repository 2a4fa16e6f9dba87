package system

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/spatial"
)

// JointType selects how a link is attached to its parent.
type JointType int

const (
	// JointFree attaches a link to the world with all six degrees of
	// freedom. Only valid on root links.
	JointFree JointType = iota
	// JointRevolute is a hinge about Axis.
	JointRevolute
	// JointPrismatic is a slider along Axis.
	JointPrismatic
	// JointSpherical is a ball socket, three rotational degrees of freedom.
	JointSpherical
)

func (t JointType) String() string {
	switch t {
	case JointFree:
		return "free"
	case JointRevolute:
		return "revolute"
	case JointPrismatic:
		return "prismatic"
	case JointSpherical:
		return "spherical"
	}
	return fmt.Sprintf("joint(%d)", int(t))
}

// ParseJointType is the inverse of String.
func ParseJointType(s string) (JointType, error) {
	switch s {
	case "free":
		return JointFree, nil
	case "revolute":
		return JointRevolute, nil
	case "prismatic":
		return JointPrismatic, nil
	case "spherical":
		return JointSpherical, nil
	}
	return 0, &ConfigError{Link: -1, Field: "joint", Reason: fmt.Sprintf("unknown type %q", s)}
}

// QSize is the width of the joint's slice of the generalized position vector.
func (t JointType) QSize() int {
	switch t {
	case JointFree:
		return 7
	case JointSpherical:
		return 4
	}
	return 1
}

// QdSize is the width of the joint's slice of the generalized velocity vector.
func (t JointType) QdSize() int {
	switch t {
	case JointFree:
		return 6
	case JointSpherical:
		return 3
	}
	return 1
}

// GeomShape is the collision shape attached to a link, if any.
type GeomShape int

const (
	GeomNone GeomShape = iota
	GeomSphere
	GeomCapsule
)

func (s GeomShape) String() string {
	switch s {
	case GeomNone:
		return "none"
	case GeomSphere:
		return "sphere"
	case GeomCapsule:
		return "capsule"
	}
	return fmt.Sprintf("geom(%d)", int(s))
}

// ParseGeomShape is the inverse of String. An empty string is GeomNone.
func ParseGeomShape(s string) (GeomShape, error) {
	switch s {
	case "", "none":
		return GeomNone, nil
	case "sphere":
		return GeomSphere, nil
	case "capsule":
		return GeomCapsule, nil
	}
	return 0, &ConfigError{Link: -1, Field: "geom", Reason: fmt.Sprintf("unknown shape %q", s)}
}

// Geom is the collision geometry of a link, centered on the link's COM.
// Capsules lie along the link-frame x axis.
type Geom struct {
	Shape    GeomShape
	Radius   float64
	HalfLen  float64 // capsule half length between cap centers
	Friction float64
}

// Plane is a static half-space boundary: points p with Normal.Dot(p) >= Offset
// are outside the plane.
type Plane struct {
	Normal   spatial.Vec3
	Offset   float64
	Friction float64
}

// Link is one rigid body and the joint binding it to its parent. The link
// frame coincides with the parent frame orientation when the joint coordinate
// is zero; ParentAnchor and ChildAnchor name the joint point in the two
// frames.
type Link struct {
	Name   string
	Parent int // index of parent link, -1 for the world
	Joint  JointType

	ParentAnchor spatial.Vec3 // parent link frame; world frame for roots
	ChildAnchor  spatial.Vec3 // this link's frame
	Axis         spatial.Vec3 // unit, link frame; revolute and prismatic only

	Mass    float64
	Inertia spatial.Vec3 // principal moments, link frame
	COM     spatial.Vec3 // center of mass offset, link frame

	// Constraint projection gains in (0, 1]. Stiffness scales the anchor
	// correction, AngStiffness the axis/orientation correction,
	// LimitStiffness the limit push-back.
	Stiffness      float64
	AngStiffness   float64
	LimitStiffness float64

	// Per-link damping applied at velocity reconciliation, added to the
	// global Options damping.
	VelDamping float64
	AngDamping float64

	// Hard bounds on the joint coordinate, 1-DoF joints only.
	Limited  bool
	LimitMin float64
	LimitMax float64

	Geom Geom
}

// Actuator applies a scalar force (prismatic) or torque (revolute) to one
// link's joint, scaled by Gear. Action vectors index actuators in order.
type Actuator struct {
	Link int
	Gear float64
}

// Options are the global solver tuning parameters.
type Options struct {
	Timestep         float64
	Gravity          spatial.Vec3
	SolverIterations int

	// CollideScale is the fraction of contact penetration removed per solver
	// iteration, in (0, 1].
	CollideScale float64

	// Global implicit damping applied at velocity reconciliation.
	VelDamping float64
	AngDamping float64

	// Elasticity scales the normal separation velocity restored after a
	// contact. Zero leaves contacts fully inelastic.
	Elasticity float64
}

// DefaultOptions mirror the tuning the built-in scenes are calibrated for.
func DefaultOptions() Options {
	return Options{
		Timestep:         1e-3,
		Gravity:          spatial.Vec3{Z: -9.81},
		SolverIterations: 4,
		CollideScale:     0.25,
	}
}

// System is the immutable scene description the pipelines step. Links are
// ordered topologically: every link's parent index is smaller than its own.
type System struct {
	Links     []Link
	Actuators []Actuator
	Planes    []Plane
	Opts      Options
}

// QSize is the length of the generalized position vector.
func (s *System) QSize() int {
	n := 0
	for i := range s.Links {
		n += s.Links[i].Joint.QSize()
	}
	return n
}

// QdSize is the length of the generalized velocity vector.
func (s *System) QdSize() int {
	n := 0
	for i := range s.Links {
		n += s.Links[i].Joint.QdSize()
	}
	return n
}

// QOffset is the index of link i's slice of the generalized position vector.
func (s *System) QOffset(i int) int {
	n := 0
	for k := 0; k < i; k++ {
		n += s.Links[k].Joint.QSize()
	}
	return n
}

// QdOffset is the index of link i's slice of the generalized velocity vector.
func (s *System) QdOffset(i int) int {
	n := 0
	for k := 0; k < i; k++ {
		n += s.Links[k].Joint.QdSize()
	}
	return n
}

// NumLinks reports the number of links.
func (s *System) NumLinks() int {
	return len(s.Links)
}
