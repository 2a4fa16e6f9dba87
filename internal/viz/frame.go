package viz

import (
	"math"

	"github.com/san-kum/rigidsim/internal/positional"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

const circleSegments = 20

// SceneFrame rebuilds the wireframe for the current state: plane grids,
// joint rods from pivot to mass center, and geometry outlines.
func SceneFrame(sys *system.System, st *positional.State, w *Wireframe) {
	w.Clear()

	for p := range sys.Planes {
		planeGrid(w, &sys.Planes[p])
	}

	for i := range sys.Links {
		l := &sys.Links[i]

		if l.Joint != system.JointFree {
			pivot := l.ParentAnchor
			if l.Parent >= 0 {
				pivot = st.X[l.Parent].Point(l.ParentAnchor)
			}
			w.Point(pivot)
			w.Add(pivot, st.XI[i].Pos)
		}

		xi := st.XI[i]
		switch l.Geom.Shape {
		case system.GeomSphere:
			sphereOutline(w, xi, l.Geom.Radius)
		case system.GeomCapsule:
			capsuleOutline(w, xi, l.Geom.Radius, l.Geom.HalfLen)
		default:
			w.Point(xi.Pos)
		}
	}
}

func planeGrid(w *Wireframe, p *system.Plane) {
	n := p.Normal.Normalize()
	u := n.Cross(spatial.Vec3{X: 1})
	if u.Norm() < 1e-6 {
		u = n.Cross(spatial.Vec3{Y: 1})
	}
	u = u.Normalize()
	v := n.Cross(u)

	origin := n.Scale(p.Offset)
	const ext, step = 4.0, 1.0
	for d := -ext; d <= ext+1e-9; d += step {
		w.Add(origin.Add(u.Scale(d)).Add(v.Scale(-ext)), origin.Add(u.Scale(d)).Add(v.Scale(ext)))
		w.Add(origin.Add(v.Scale(d)).Add(u.Scale(-ext)), origin.Add(v.Scale(d)).Add(u.Scale(ext)))
	}
}

func circle(w *Wireframe, center, u, v spatial.Vec3, r float64) {
	prev := center.Add(u.Scale(r))
	for i := 1; i <= circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		next := center.Add(u.Scale(r * math.Cos(a))).Add(v.Scale(r * math.Sin(a)))
		w.Add(prev, next)
		prev = next
	}
}

func sphereOutline(w *Wireframe, x spatial.Transform, r float64) {
	ex := x.Rot.Rotate(spatial.Vec3{X: 1})
	ey := x.Rot.Rotate(spatial.Vec3{Y: 1})
	ez := x.Rot.Rotate(spatial.Vec3{Z: 1})
	circle(w, x.Pos, ex, ey, r)
	circle(w, x.Pos, ey, ez, r)
	circle(w, x.Pos, ex, ez, r)
}

// capsuleOutline draws the two cap rims, four struts, and the cap tips.
// The capsule axis runs along the body-frame x direction.
func capsuleOutline(w *Wireframe, x spatial.Transform, r, hl float64) {
	ex := x.Rot.Rotate(spatial.Vec3{X: 1})
	ey := x.Rot.Rotate(spatial.Vec3{Y: 1})
	ez := x.Rot.Rotate(spatial.Vec3{Z: 1})

	a := x.Pos.Add(ex.Scale(hl))
	b := x.Pos.Sub(ex.Scale(hl))
	circle(w, a, ey, ez, r)
	circle(w, b, ey, ez, r)

	for _, side := range []spatial.Vec3{ey, ey.Neg(), ez, ez.Neg()} {
		w.Add(a.Add(side.Scale(r)), b.Add(side.Scale(r)))
	}
	w.Point(a.Add(ex.Scale(r)))
	w.Point(b.Sub(ex.Scale(r)))
}
