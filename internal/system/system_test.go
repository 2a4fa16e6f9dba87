package system

import (
	"errors"
	"testing"

	"github.com/san-kum/rigidsim/internal/spatial"
)

func twoLinkChain() *System {
	link := Link{
		Parent:       -1,
		Joint:        JointRevolute,
		ParentAnchor: spatial.Vec3{Z: 1},
		Axis:         spatial.Vec3{Y: 1},
		Mass:         1,
		Inertia:      spatial.Vec3{X: 0.1, Y: 0.1, Z: 0.1},
		COM:          spatial.Vec3{Z: -0.5},
		Stiffness:    1,
		AngStiffness: 1,
	}
	child := link
	child.Parent = 0
	child.ParentAnchor = spatial.Vec3{Z: -1}
	return &System{
		Links: []Link{link, child},
		Opts:  DefaultOptions(),
	}
}

func TestValidateAcceptsChain(t *testing.T) {
	if err := twoLinkChain().Validate(); err != nil {
		t.Fatalf("valid system rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*System)
	}{
		{"no links", func(s *System) { s.Links = nil }},
		{"zero timestep", func(s *System) { s.Opts.Timestep = 0 }},
		{"zero iterations", func(s *System) { s.Opts.SolverIterations = 0 }},
		{"collide scale above one", func(s *System) { s.Opts.CollideScale = 1.5 }},
		{"parent order", func(s *System) { s.Links[0].Parent = 1 }},
		{"self parent", func(s *System) { s.Links[1].Parent = 1 }},
		{"free on child", func(s *System) { s.Links[1].Joint = JointFree }},
		{"zero mass", func(s *System) { s.Links[0].Mass = 0 }},
		{"negative inertia", func(s *System) { s.Links[1].Inertia.Y = -0.1 }},
		{"non-unit axis", func(s *System) { s.Links[0].Axis = spatial.Vec3{Y: 0.5} }},
		{"zero stiffness", func(s *System) { s.Links[0].Stiffness = 0 }},
		{"stiffness above one", func(s *System) { s.Links[0].AngStiffness = 2 }},
		{"inverted limits", func(s *System) {
			s.Links[0].Limited = true
			s.Links[0].LimitMin = 1
			s.Links[0].LimitMax = -1
			s.Links[0].LimitStiffness = 0.05
		}},
		{"limit without stiffness", func(s *System) {
			s.Links[0].Limited = true
			s.Links[0].LimitMin = -1
			s.Links[0].LimitMax = 1
		}},
		{"limited spherical", func(s *System) {
			s.Links[1].Joint = JointSpherical
			s.Links[1].Limited = true
			s.Links[1].LimitMin = -1
			s.Links[1].LimitMax = 1
			s.Links[1].LimitStiffness = 0.05
		}},
		{"sphere without radius", func(s *System) { s.Links[0].Geom = Geom{Shape: GeomSphere} }},
		{"capsule without half length", func(s *System) {
			s.Links[0].Geom = Geom{Shape: GeomCapsule, Radius: 0.1}
		}},
		{"tilted plane normal", func(s *System) {
			s.Planes = []Plane{{Normal: spatial.Vec3{Z: 2}}}
		}},
		{"actuator out of range", func(s *System) {
			s.Actuators = []Actuator{{Link: 5, Gear: 1}}
		}},
		{"actuator zero gear", func(s *System) {
			s.Actuators = []Actuator{{Link: 0, Gear: 0}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := twoLinkChain()
			tt.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrConfig) {
				t.Errorf("error %v does not wrap ErrConfig", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Errorf("error %v is not a ConfigError", err)
			}
		})
	}
}

func TestQSizes(t *testing.T) {
	s := &System{
		Links: []Link{
			{Joint: JointFree},
			{Joint: JointRevolute},
			{Joint: JointSpherical},
			{Joint: JointPrismatic},
		},
	}
	if got := s.QSize(); got != 13 {
		t.Errorf("QSize = %d, want 13", got)
	}
	if got := s.QdSize(); got != 11 {
		t.Errorf("QdSize = %d, want 11", got)
	}

	wantQ := []int{0, 7, 8, 12}
	wantQd := []int{0, 6, 7, 10}
	for i := 0; i < 4; i++ {
		if got := s.QOffset(i); got != wantQ[i] {
			t.Errorf("QOffset(%d) = %d, want %d", i, got, wantQ[i])
		}
		if got := s.QdOffset(i); got != wantQd[i] {
			t.Errorf("QdOffset(%d) = %d, want %d", i, got, wantQd[i])
		}
	}
}

func TestCheckDims(t *testing.T) {
	s := twoLinkChain()
	if err := s.CheckDims(make([]float64, 2), make([]float64, 2)); err != nil {
		t.Errorf("matching dims rejected: %v", err)
	}
	err := s.CheckDims(make([]float64, 3), make([]float64, 2))
	if !errors.Is(err, ErrDimension) {
		t.Errorf("expected ErrDimension, got %v", err)
	}
	var de *DimensionError
	if !errors.As(err, &de) || de.Vector != "q" {
		t.Errorf("expected q dimension error, got %v", err)
	}
}

func TestCheckAction(t *testing.T) {
	s := twoLinkChain()
	s.Actuators = []Actuator{{Link: 0, Gear: 2}}
	if err := s.CheckAction(nil); err != nil {
		t.Errorf("nil action rejected: %v", err)
	}
	if err := s.CheckAction([]float64{1}); err != nil {
		t.Errorf("matching action rejected: %v", err)
	}
	if err := s.CheckAction([]float64{1, 2}); !errors.Is(err, ErrDimension) {
		t.Errorf("expected ErrDimension, got %v", err)
	}
}

func TestParseGeomShape(t *testing.T) {
	for _, shape := range []GeomShape{GeomNone, GeomSphere, GeomCapsule} {
		got, err := ParseGeomShape(shape.String())
		if err != nil || got != shape {
			t.Errorf("ParseGeomShape(%q) = %v, %v", shape.String(), got, err)
		}
	}
	if got, err := ParseGeomShape(""); err != nil || got != GeomNone {
		t.Errorf("ParseGeomShape(\"\") = %v, %v, want GeomNone", got, err)
	}
	if _, err := ParseGeomShape("torus"); err == nil {
		t.Error("expected an error for an unknown shape")
	}
}

func TestParseJointType(t *testing.T) {
	for _, jt := range []JointType{JointFree, JointRevolute, JointPrismatic, JointSpherical} {
		got, err := ParseJointType(jt.String())
		if err != nil {
			t.Fatalf("parse %q: %v", jt.String(), err)
		}
		if got != jt {
			t.Errorf("parse %q = %v, want %v", jt.String(), got, jt)
		}
	}
	if _, err := ParseJointType("hinge2"); err == nil {
		t.Error("expected error for unknown joint type")
	}
}
