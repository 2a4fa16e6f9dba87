package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

type vec3 [3]float64

func (v vec3) vec() spatial.Vec3 { return spatial.Vec3{X: v[0], Y: v[1], Z: v[2]} }

func fromVec(v spatial.Vec3) vec3 { return vec3{v.X, v.Y, v.Z} }

type geomYAML struct {
	Shape    string  `yaml:"shape"`
	Radius   float64 `yaml:"radius,omitempty"`
	HalfLen  float64 `yaml:"half_len,omitempty"`
	Friction float64 `yaml:"friction,omitempty"`
}

type linkYAML struct {
	Name           string    `yaml:"name,omitempty"`
	Parent         int       `yaml:"parent"`
	Joint          string    `yaml:"joint"`
	ParentAnchor   vec3      `yaml:"parent_anchor,flow,omitempty"`
	ChildAnchor    vec3      `yaml:"child_anchor,flow,omitempty"`
	Axis           vec3      `yaml:"axis,flow,omitempty"`
	Mass           float64   `yaml:"mass"`
	Inertia        vec3      `yaml:"inertia,flow"`
	COM            vec3      `yaml:"com,flow,omitempty"`
	Stiffness      float64   `yaml:"stiffness,omitempty"`
	AngStiffness   float64   `yaml:"ang_stiffness,omitempty"`
	LimitStiffness float64   `yaml:"limit_stiffness,omitempty"`
	VelDamping     float64   `yaml:"vel_damping,omitempty"`
	AngDamping     float64   `yaml:"ang_damping,omitempty"`
	Limited        bool      `yaml:"limited,omitempty"`
	LimitMin       float64   `yaml:"limit_min,omitempty"`
	LimitMax       float64   `yaml:"limit_max,omitempty"`
	Geom           *geomYAML `yaml:"geom,omitempty"`
}

type actuatorYAML struct {
	Link int     `yaml:"link"`
	Gear float64 `yaml:"gear"`
}

type planeYAML struct {
	Normal   vec3    `yaml:"normal,flow"`
	Offset   float64 `yaml:"offset,omitempty"`
	Friction float64 `yaml:"friction,omitempty"`
}

type optionsYAML struct {
	Timestep         float64 `yaml:"timestep,omitempty"`
	Gravity          *vec3   `yaml:"gravity,flow,omitempty"`
	SolverIterations int     `yaml:"solver_iterations,omitempty"`
	CollideScale     float64 `yaml:"collide_scale,omitempty"`
	VelDamping       float64 `yaml:"vel_damping,omitempty"`
	AngDamping       float64 `yaml:"ang_damping,omitempty"`
	Elasticity       float64 `yaml:"elasticity,omitempty"`
}

type initYAML struct {
	Q  []float64 `yaml:"q,flow"`
	QD []float64 `yaml:"qd,flow"`
}

// File is the on-disk YAML form of a scene. Omitted solver gains fall back
// to full-strength joint projection and the default limit push.
type File struct {
	Name      string         `yaml:"name,omitempty"`
	Options   optionsYAML    `yaml:"options"`
	Links     []linkYAML     `yaml:"links"`
	Actuators []actuatorYAML `yaml:"actuators,omitempty"`
	Planes    []planeYAML    `yaml:"planes,omitempty"`
	Init      initYAML       `yaml:"init"`
}

// ToScene converts and validates the file form.
func (f *File) ToScene() (*Scene, error) {
	opts := system.DefaultOptions()
	if f.Options.Timestep != 0 {
		opts.Timestep = f.Options.Timestep
	}
	if f.Options.Gravity != nil {
		opts.Gravity = f.Options.Gravity.vec()
	}
	if f.Options.SolverIterations != 0 {
		opts.SolverIterations = f.Options.SolverIterations
	}
	if f.Options.CollideScale != 0 {
		opts.CollideScale = f.Options.CollideScale
	}
	opts.VelDamping = f.Options.VelDamping
	opts.AngDamping = f.Options.AngDamping
	opts.Elasticity = f.Options.Elasticity

	sys := &system.System{Opts: opts}
	for i, l := range f.Links {
		joint, err := system.ParseJointType(l.Joint)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		link := system.Link{
			Name:           l.Name,
			Parent:         l.Parent,
			Joint:          joint,
			ParentAnchor:   l.ParentAnchor.vec(),
			ChildAnchor:    l.ChildAnchor.vec(),
			Axis:           l.Axis.vec(),
			Mass:           l.Mass,
			Inertia:        l.Inertia.vec(),
			COM:            l.COM.vec(),
			Stiffness:      l.Stiffness,
			AngStiffness:   l.AngStiffness,
			LimitStiffness: l.LimitStiffness,
			VelDamping:     l.VelDamping,
			AngDamping:     l.AngDamping,
			Limited:        l.Limited,
			LimitMin:       l.LimitMin,
			LimitMax:       l.LimitMax,
		}
		if joint != system.JointFree {
			if link.Stiffness == 0 {
				link.Stiffness = 1
			}
			if link.AngStiffness == 0 {
				link.AngStiffness = 1
			}
		}
		if link.Limited && link.LimitStiffness == 0 {
			link.LimitStiffness = 0.05
		}
		if l.Geom != nil {
			shape, err := system.ParseGeomShape(l.Geom.Shape)
			if err != nil {
				return nil, fmt.Errorf("link %d: %w", i, err)
			}
			link.Geom = system.Geom{
				Shape:    shape,
				Radius:   l.Geom.Radius,
				HalfLen:  l.Geom.HalfLen,
				Friction: l.Geom.Friction,
			}
		}
		sys.Links = append(sys.Links, link)
	}
	for _, a := range f.Actuators {
		sys.Actuators = append(sys.Actuators, system.Actuator{Link: a.Link, Gear: a.Gear})
	}
	for _, p := range f.Planes {
		sys.Planes = append(sys.Planes, system.Plane{
			Normal:   p.Normal.vec(),
			Offset:   p.Offset,
			Friction: p.Friction,
		})
	}

	if err := sys.Validate(); err != nil {
		return nil, err
	}
	if err := sys.CheckDims(f.Init.Q, f.Init.QD); err != nil {
		return nil, err
	}
	return &Scene{
		Name: f.Name,
		Sys:  sys,
		Q:    append([]float64(nil), f.Init.Q...),
		QD:   append([]float64(nil), f.Init.QD...),
	}, nil
}

// FromScene converts a scene into its file form.
func FromScene(s *Scene) *File {
	f := &File{Name: s.Name}

	opts := s.Sys.Opts
	g := fromVec(opts.Gravity)
	f.Options = optionsYAML{
		Timestep:         opts.Timestep,
		Gravity:          &g,
		SolverIterations: opts.SolverIterations,
		CollideScale:     opts.CollideScale,
		VelDamping:       opts.VelDamping,
		AngDamping:       opts.AngDamping,
		Elasticity:       opts.Elasticity,
	}

	for i := range s.Sys.Links {
		l := &s.Sys.Links[i]
		ly := linkYAML{
			Name:           l.Name,
			Parent:         l.Parent,
			Joint:          l.Joint.String(),
			ParentAnchor:   fromVec(l.ParentAnchor),
			ChildAnchor:    fromVec(l.ChildAnchor),
			Axis:           fromVec(l.Axis),
			Mass:           l.Mass,
			Inertia:        fromVec(l.Inertia),
			COM:            fromVec(l.COM),
			Stiffness:      l.Stiffness,
			AngStiffness:   l.AngStiffness,
			LimitStiffness: l.LimitStiffness,
			VelDamping:     l.VelDamping,
			AngDamping:     l.AngDamping,
			Limited:        l.Limited,
			LimitMin:       l.LimitMin,
			LimitMax:       l.LimitMax,
		}
		if l.Geom.Shape != system.GeomNone {
			ly.Geom = &geomYAML{
				Shape:    l.Geom.Shape.String(),
				Radius:   l.Geom.Radius,
				HalfLen:  l.Geom.HalfLen,
				Friction: l.Geom.Friction,
			}
		}
		f.Links = append(f.Links, ly)
	}
	for _, a := range s.Sys.Actuators {
		f.Actuators = append(f.Actuators, actuatorYAML{Link: a.Link, Gear: a.Gear})
	}
	for _, p := range s.Sys.Planes {
		f.Planes = append(f.Planes, planeYAML{
			Normal:   fromVec(p.Normal),
			Offset:   p.Offset,
			Friction: p.Friction,
		})
	}
	f.Init = initYAML{
		Q:  append([]float64(nil), s.Q...),
		QD: append([]float64(nil), s.QD...),
	}
	return f
}

// Load reads, converts and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f.ToScene()
}

// Save writes a scene file.
func Save(path string, s *Scene) error {
	data, err := yaml.Marshal(FromScene(s))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
