package viz

import (
	"math"

	"github.com/san-kum/rigidsim/internal/spatial"
)

// Camera is an orbiting perspective camera. World z is up on screen; the
// default view looks at the scene from slightly above the horizon.
type Camera struct {
	Center spatial.Vec3
	Dist   float64
	Yaw    float64 // orbit around world z
	Pitch  float64 // tilt above the horizon
	Zoom   float64
	Span   float64 // world units across the short screen dimension
}

func NewCamera(center spatial.Vec3) *Camera {
	return &Camera{
		Center: center,
		Dist:   14,
		Pitch:  0.15,
		Zoom:   1,
		Span:   6,
	}
}

func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = math.Max(-1.4, math.Min(1.4, c.Pitch+dpitch))
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// view maps a world point into camera space: x right, y depth, z up.
func (c *Camera) view(p spatial.Vec3) spatial.Vec3 {
	t := spatial.AxisAngle(spatial.Vec3{Z: 1}, -c.Yaw).Rotate(p.Sub(c.Center))
	return spatial.AxisAngle(spatial.Vec3{X: 1}, -c.Pitch).Rotate(t)
}

// Project maps a world point to canvas pixels. The bool reports whether
// the point lands in front of the eye and inside the canvas.
func (c *Camera) Project(p spatial.Vec3, pw, ph int) (int, int, bool) {
	v := c.view(p)
	if v.Y >= c.Dist-0.1 {
		return 0, 0, false
	}
	persp := c.Dist / (c.Dist - v.Y)
	min := float64(ph)
	if float64(pw) < min {
		min = float64(pw)
	}
	ppu := min / c.Span * c.Zoom * persp
	x := pw/2 + int(v.X*ppu)
	y := ph/2 - int(v.Z*ppu)
	return x, y, x >= 0 && x < pw && y >= 0 && y < ph
}

// Edge is one world-space segment; a degenerate edge marks a point.
type Edge struct {
	A, B spatial.Vec3
}

type Wireframe struct {
	Edges []Edge
}

func (w *Wireframe) Add(a, b spatial.Vec3) {
	w.Edges = append(w.Edges, Edge{A: a, B: b})
}

func (w *Wireframe) Point(p spatial.Vec3) {
	w.Edges = append(w.Edges, Edge{A: p, B: p})
}

func (w *Wireframe) Clear() {
	w.Edges = w.Edges[:0]
}

// Render projects every edge onto the canvas. Edges whose endpoints both
// fall outside are still drawn when either projects in front of the eye,
// so long rods clip at the border instead of vanishing.
func (c *Camera) Render(canvas *Canvas, w *Wireframe) {
	pw, ph := canvas.Width*2, canvas.Height*4
	for _, e := range w.Edges {
		x1, y1, ok1 := c.Project(e.A, pw, ph)
		x2, y2, ok2 := c.Project(e.B, pw, ph)
		if !ok1 && !ok2 {
			continue
		}
		if e.A == e.B {
			canvas.Blot(x1, y1)
			continue
		}
		canvas.Line(x1, y1, x2, y2)
	}
}
