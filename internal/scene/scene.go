// Package scene holds the built-in demonstration systems and the YAML
// format used to share scenes between runs.
package scene

import (
	"fmt"
	"sort"

	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// Scene bundles a system descriptor with its initial coordinates.
type Scene struct {
	Name string
	Sys  *system.System
	Q    []float64
	QD   []float64
}

var builders = map[string]func() *Scene{
	"pendulum":           Pendulum,
	"double_pendulum":    DoublePendulum,
	"arm":                Arm,
	"spherical_pendulum": SphericalPendulum,
	"slider":             Slider,
	"triple_slider":      TripleSlider,
	"capsule_slide":      CapsuleSlide,
	"sphere_drop":        SphereDrop,
	"free_fall":          FreeFall,
}

// Get builds a fresh copy of a built-in scene.
func Get(name string) (*Scene, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", name)
	}
	return b(), nil
}

// Names lists the built-in scenes in stable order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func hinge(name string, parent int, anchor spatial.Vec3) system.Link {
	return system.Link{
		Name:         name,
		Parent:       parent,
		Joint:        system.JointRevolute,
		ParentAnchor: anchor,
		Axis:         spatial.Vec3{Y: 1},
		Mass:         1,
		Inertia:      spatial.Vec3{X: 0.05, Y: 0.05, Z: 0.05},
		COM:          spatial.Vec3{Z: -0.5},
		Stiffness:    1,
		AngStiffness: 1,
	}
}

// Pendulum is a single actuated hinge link swinging under gravity.
func Pendulum() *Scene {
	sys := &system.System{
		Links:     []system.Link{hinge("arm", -1, spatial.Vec3{Z: 2})},
		Actuators: []system.Actuator{{Link: 0, Gear: 1.5}},
		Opts:      system.DefaultOptions(),
	}
	return &Scene{Name: "pendulum", Sys: sys, Q: []float64{0.8}, QD: []float64{0}}
}

// DoublePendulum is the classic passive two-link chain.
func DoublePendulum() *Scene {
	sys := &system.System{
		Links: []system.Link{
			hinge("upper", -1, spatial.Vec3{Z: 2}),
			hinge("lower", 0, spatial.Vec3{Z: -1}),
		},
		Opts: system.DefaultOptions(),
	}
	return &Scene{Name: "double_pendulum", Sys: sys, Q: []float64{0.7, 0.2}, QD: []float64{0, 0}}
}

// Arm is the double pendulum with both joints actuated.
func Arm() *Scene {
	s := DoublePendulum()
	s.Name = "arm"
	s.Sys.Actuators = []system.Actuator{{Link: 0, Gear: 2}, {Link: 1, Gear: 1}}
	s.Q = []float64{0.3, -0.3}
	return s
}

// SphericalPendulum swings a ball-jointed link, free to leave the plane.
func SphericalPendulum() *Scene {
	l := hinge("bob", -1, spatial.Vec3{Z: 2})
	l.Joint = system.JointSpherical
	l.Axis = spatial.Vec3{}
	sys := &system.System{Links: []system.Link{l}, Opts: system.DefaultOptions()}

	rel := spatial.AxisAngle(spatial.Vec3{Y: 1}, 0.8)
	return &Scene{
		Name: "spherical_pendulum",
		Sys:  sys,
		Q:    []float64{rel.W, rel.X, rel.Y, rel.Z},
		QD:   []float64{0, 0, 0},
	}
}

func slider(name string, parent int, anchor, axis spatial.Vec3) system.Link {
	return system.Link{
		Name:           name,
		Parent:         parent,
		Joint:          system.JointPrismatic,
		ParentAnchor:   anchor,
		Axis:           axis,
		Mass:           1,
		Inertia:        spatial.Vec3{X: 0.1, Y: 0.1, Z: 0.1},
		Stiffness:      1,
		AngStiffness:   1,
		LimitStiffness: 0.05,
		Limited:        true,
		LimitMin:       -0.5,
		LimitMax:       0.5,
	}
}

// Slider launches a limited prismatic joint at its bound, gravity off.
func Slider() *Scene {
	opts := system.DefaultOptions()
	opts.Gravity = spatial.Vec3{}
	sys := &system.System{
		Links: []system.Link{slider("block", -1, spatial.Vec3{Z: 1}, spatial.Vec3{X: 1})},
		Opts:  opts,
	}
	return &Scene{Name: "slider", Sys: sys, Q: []float64{0}, QD: []float64{2.5}}
}

// TripleSlider chains three orthogonal limited sliders.
func TripleSlider() *Scene {
	opts := system.DefaultOptions()
	opts.Gravity = spatial.Vec3{}
	sys := &system.System{
		Links: []system.Link{
			slider("x", -1, spatial.Vec3{Z: 1}, spatial.Vec3{X: 1}),
			slider("y", 0, spatial.Vec3{}, spatial.Vec3{Y: 1}),
			slider("z", 1, spatial.Vec3{}, spatial.Vec3{Z: 1}),
		},
		Opts: opts,
	}
	return &Scene{
		Name: "triple_slider",
		Sys:  sys,
		Q:    []float64{0, 0, 0},
		QD:   []float64{2.5, 2.5, 2.5},
	}
}

// CapsuleSlide skids a capsule across the ground until friction stops it.
func CapsuleSlide() *Scene {
	sys := &system.System{
		Links: []system.Link{{
			Name:    "capsule",
			Parent:  -1,
			Joint:   system.JointFree,
			Mass:    1,
			Inertia: spatial.Vec3{X: 0.01, Y: 0.02, Z: 0.02},
			Geom: system.Geom{
				Shape:    system.GeomCapsule,
				Radius:   0.25,
				HalfLen:  0.4,
				Friction: 30,
			},
		}},
		Planes: []system.Plane{{Normal: spatial.Vec3{Z: 1}, Friction: 20}},
		Opts:   system.DefaultOptions(),
	}
	return &Scene{
		Name: "capsule_slide",
		Sys:  sys,
		Q:    []float64{0, 0, 0.25, 1, 0, 0, 0},
		QD:   []float64{5, 0, 0, 0, 0, 0},
	}
}

// SphereDrop bounces a sphere off the ground with partial restitution.
func SphereDrop() *Scene {
	opts := system.DefaultOptions()
	opts.Elasticity = 0.5
	sys := &system.System{
		Links: []system.Link{{
			Name:    "ball",
			Parent:  -1,
			Joint:   system.JointFree,
			Mass:    1,
			Inertia: spatial.Vec3{X: 0.01, Y: 0.01, Z: 0.01},
			Geom:    system.Geom{Shape: system.GeomSphere, Radius: 0.25, Friction: 5},
		}},
		Planes: []system.Plane{{Normal: spatial.Vec3{Z: 1}, Friction: 5}},
		Opts:   opts,
	}
	return &Scene{
		Name: "sphere_drop",
		Sys:  sys,
		Q:    []float64{0, 0, 1, 1, 0, 0, 0},
		QD:   make([]float64, 6),
	}
}

// FreeFall is a single unconstrained body on a ballistic arc.
func FreeFall() *Scene {
	sys := &system.System{
		Links: []system.Link{{
			Name:    "body",
			Parent:  -1,
			Joint:   system.JointFree,
			Mass:    1,
			Inertia: spatial.Vec3{X: 0.01, Y: 0.01, Z: 0.01},
		}},
		Opts: system.DefaultOptions(),
	}
	return &Scene{
		Name: "free_fall",
		Sys:  sys,
		Q:    []float64{0, 0, 2, 1, 0, 0, 0},
		QD:   []float64{1, 0, 0, 0, 2, 0},
	}
}
