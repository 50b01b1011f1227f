package render

import (
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/math3d"
)

// Plane is Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// Distance returns the signed distance to point; positive is in front.
func (p Plane) Distance(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds six inward-facing planes: left, right, bottom, top, near,
// far.
type Frustum struct {
	Planes [6]Plane
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustum extracts the planes of a projection·view matrix (Gribb and
// Hartmann). m is column-major, so row i element j is m[i+4j].
func NewFrustum(m math3d.Mat4) Frustum {
	row := func(i int) (math3d.Vec3, float64) {
		return math3d.V3(m[i], m[i+4], m[i+8]), m[i+12]
	}
	w, wd := row(3)

	var f Frustum
	for axis := range 3 {
		n, d := row(axis)
		f.Planes[2*axis] = Plane{Normal: w.Add(n), D: wd + d}
		f.Planes[2*axis+1] = Plane{Normal: w.Sub(n), D: wd - d}
	}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	return f.IntersectsSphere(geom.Sphere{Center: p})
}

// IntersectsSphere reports whether any part of s may be visible.
func (f Frustum) IntersectsSphere(s geom.Sphere) bool {
	for _, p := range f.Planes {
		if p.Distance(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether any part of b may be visible, testing
// the corner furthest along each plane normal.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for _, p := range f.Planes {
		corner := math3d.V3(
			pick(p.Normal.X >= 0, b.Max.X, b.Min.X),
			pick(p.Normal.Y >= 0, b.Max.Y, b.Min.Y),
			pick(p.Normal.Z >= 0, b.Max.Z, b.Min.Z),
		)
		if p.Distance(corner) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math3d.Vec3
}

// BoundsOf returns the box around pts. An empty slice gives the zero box.
func BoundsOf(pts []math3d.Vec3) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	b := AABB{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Center returns the centre of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Union returns the box around b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// BoundingSphere returns the sphere through the box corners.
func (b AABB) BoundingSphere() geom.Sphere {
	return geom.Sphere{Center: b.Center(), Radius: b.Max.Sub(b.Min).Len() / 2}
}
