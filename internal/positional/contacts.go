package positional

import (
	"github.com/san-kum/rigidsim/internal/contact"
	"github.com/san-kum/rigidsim/internal/spatial"
	"github.com/san-kum/rigidsim/internal/system"
)

// projectContacts separates every flagged penetration against the static
// planes, removing CollideScale of the depth per iteration. Penetrations are
// re-evaluated against the freshest poses each call.
func (s *solver) projectContacts() {
	for _, c := range contact.Find(s.sys, s.xi) {
		s.pushPoint(-1, c.Link, spatial.Vec3{}, c.Pos, c.Normal.Scale(c.Depth), s.sys.Opts.CollideScale)
	}
}

// retainContactVelocity models friction and restitution as velocity
// retention on links still touching after the projection loop: tangential
// velocity decays at the combined surface rate, normal velocity keeps at
// most Elasticity times the incoming approach speed. Orientation-level spin
// is left alone.
func retainContactVelocity(sys *system.System, xi []spatial.Transform, xdi, xdiPrev []spatial.Motion) {
	dt := sys.Opts.Timestep
	for _, c := range contact.Find(sys, xi) {
		v := xdi[c.Link].Vel
		vn := c.Normal.Dot(v)
		vt := v.Sub(c.Normal.Scale(vn)).Scale(1 / (1 + dt*c.Friction))

		if prev := c.Normal.Dot(xdiPrev[c.Link].Vel); prev < 0 {
			if bounce := -sys.Opts.Elasticity * prev; bounce > vn {
				vn = bounce
			}
		}
		xdi[c.Link].Vel = vt.Add(c.Normal.Scale(vn))
	}
}
