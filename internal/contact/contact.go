// Package contact finds penetrations between link geometries and the static
// half-space planes of a scene. Broader collision detection (link versus
// link, meshes) is owned by an external collaborator; the solver only
// consumes the flagged penetrations.
package contact

import (
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// Contact is one penetrating point on a link. Normal points out of the plane,
// Depth is positive while penetrating. Friction is the combined retention
// rate of the two surfaces, in 1/s.
type Contact struct {
	Link     int
	Pos      spatial.Vec3
	Normal   spatial.Vec3
	Depth    float64
	Friction float64
}

// Find reports all plane penetrations at the given COM poses. Geometries are
// centered on their link's COM; capsules lie along the COM-frame x axis.
// Deterministic order: links outer, planes inner, capsule ends last.
func Find(sys *system.System, xi []spatial.Transform) []Contact {
	var out []Contact
	for i := range sys.Links {
		g := &sys.Links[i].Geom
		if g.Shape == system.GeomNone {
			continue
		}
		for pi := range sys.Planes {
			p := &sys.Planes[pi]
			switch g.Shape {
			case system.GeomSphere:
				out = appendSphere(out, i, xi[i].Pos, g, p)
			case system.GeomCapsule:
				dir := xi[i].Vec(spatial.Vec3{X: 1})
				out = appendSphere(out, i, xi[i].Pos.Add(dir.Scale(g.HalfLen)), g, p)
				out = appendSphere(out, i, xi[i].Pos.Sub(dir.Scale(g.HalfLen)), g, p)
			}
		}
	}
	return out
}

// appendSphere adds the contact of a sphere of g.Radius centered at c, if it
// penetrates the plane.
func appendSphere(out []Contact, link int, c spatial.Vec3, g *system.Geom, p *system.Plane) []Contact {
	depth := g.Radius - (p.Normal.Dot(c) - p.Offset)
	if depth <= 0 {
		return out
	}
	return append(out, Contact{
		Link:     link,
		Pos:      c.Sub(p.Normal.Scale(g.Radius)),
		Normal:   p.Normal,
		Depth:    depth,
		Friction: 0.5 * (g.Friction + p.Friction),
	})
}
