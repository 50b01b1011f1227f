package impostor

import (
	"math"

	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/math3d"
)

// Part identifies which surface of a cylinder a ray hit.
type Part int

const (
	Lateral Part = iota
	CapA
	CapB
)

func (p Part) String() string {
	switch p {
	case Lateral:
		return "lateral"
	case CapA:
		return "cap A"
	case CapB:
		return "cap B"
	}
	return "unknown"
}

// CylinderHit is a Hit tagged with the surface it landed on.
type CylinderHit struct {
	Hit
	Part Part
}

// coneQuadratic expresses the lateral surface of a truncated cone as
// a·t² + b·t + c = 0 along r. With axis unit u, length L, w = O − A,
// h(t) = w·u + t·D·u and k = (rB − rA)/L the surface is
// |w + tD|² − h² − (rA + k·h)² = 0.
type coneQuadratic struct {
	a, b, c float64
	u       math3d.Vec3
	length  float64
	slope   float64
	hw, hd  float64
}

func newConeQuadratic(r Ray, cyl geom.Cylinder) (coneQuadratic, bool) {
	axis := cyl.Axis()
	length := axis.Len()
	if length == 0 {
		return coneQuadratic{}, false
	}
	u := axis.Scale(1 / length)
	w := r.Origin.Sub(cyl.A.Center)
	k := (cyl.B.Radius - cyl.A.Radius) / length
	hw, hd := w.Dot(u), r.Dir.Dot(u)
	kk := 1 + k*k
	ra := cyl.A.Radius

	return coneQuadratic{
		a:      r.Dir.Dot(r.Dir) - kk*hd*hd,
		b:      2 * (w.Dot(r.Dir) - kk*hw*hd - ra*k*hd),
		c:      w.Dot(w) - kk*hw*hw - 2*ra*k*hw - ra*ra,
		u:      u,
		length: length,
		slope:  k,
		hw:     hw,
		hd:     hd,
	}, true
}

// CylinderDiscriminant is the lateral-surface analogue of
// SphereDiscriminant, used for silhouette antialiasing.
func CylinderDiscriminant(r Ray, cyl geom.Cylinder) float64 {
	q, ok := newConeQuadratic(r, cyl)
	if !ok {
		return -1
	}
	return q.b*q.b - 4*q.a*q.c
}

// IntersectCylinder intersects r with the lateral surface of the truncated
// cone, restricted to the axial segment, and with both flat end caps. The
// nearest hit in front of the origin wins.
func IntersectCylinder(r Ray, cyl geom.Cylinder) (CylinderHit, bool) {
	q, ok := newConeQuadratic(r, cyl)
	if !ok {
		return CylinderHit{}, false
	}

	best := CylinderHit{Hit: Hit{T: math.Inf(1)}}
	found := false
	consider := func(h CylinderHit) {
		if h.T > minT && h.T < best.T {
			best, found = h, true
		}
	}

	if t0, t1, ok := math3d.SolveQuadratic(q.a, q.b, q.c); ok {
		for _, t := range [2]float64{t0, t1} {
			h := q.hw + t*q.hd
			if h < 0 || h > q.length {
				continue
			}
			p := r.At(t)
			radius := cyl.A.Radius + q.slope*h
			perp := p.Sub(cyl.A.Center).Sub(q.u.Scale(h))
			n := perp.Sub(q.u.Scale(radius * q.slope)).Normalize()
			consider(CylinderHit{Hit: Hit{T: t, Point: p, Normal: n}, Part: Lateral})
		}
	}

	if q.hd != 0 {
		caps := [2]struct {
			end    geom.Sphere
			offset float64
			normal math3d.Vec3
			part   Part
		}{
			{cyl.A, 0, q.u.Negate(), CapA},
			{cyl.B, q.length, q.u, CapB},
		}
		for _, c := range caps {
			t := (c.offset - q.hw) / q.hd
			p := r.At(t)
			if p.Sub(c.end.Center).LenSq() <= c.end.Radius*c.end.Radius {
				consider(CylinderHit{Hit: Hit{T: t, Point: p, Normal: c.normal}, Part: c.part})
			}
		}
	}

	return best, found
}
