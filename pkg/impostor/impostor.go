// Package impostor holds the analytic ray intersection used to shade sphere
// and cylinder impostors. The fragment shaders in pkg/batch evaluate the same
// expressions per pixel; this package is the reference the tests and the
// software rasterizer run against.
package impostor

import (
	"math"

	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/math3d"
)

// minT rejects hits at or behind the ray origin.
const minT = 1e-9

// Ray is an origin and a unit direction.
type Ray struct {
	Origin math3d.Vec3
	Dir    math3d.Vec3
}

// RayTowards builds the ray from eye through p.
func RayTowards(eye, p math3d.Vec3) Ray {
	return Ray{Origin: eye, Dir: p.Sub(eye).Normalize()}
}

// At returns Origin + t·Dir.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Hit describes the nearest intersection in front of the ray origin.
type Hit struct {
	T      float64
	Point  math3d.Vec3
	Normal math3d.Vec3
}

// SphereDiscriminant returns B² − 4C for |E + tD − C|² = R², written as
// t² + B·t + C = 0 with S = C − E, B = −2·D·S and C = S·S − R². Its sign
// decides coverage and its screen-space rate of change drives EdgeAlpha.
func SphereDiscriminant(r Ray, s geom.Sphere) float64 {
	sv := s.Center.Sub(r.Origin)
	b := -2 * r.Dir.Dot(sv)
	c := sv.Dot(sv) - s.Radius*s.Radius
	return b*b - 4*c
}

// IntersectSphere returns the nearest root of the ray-sphere quadratic. No
// real root, or a nearest root at or behind the origin, is a miss.
func IntersectSphere(r Ray, s geom.Sphere) (Hit, bool) {
	sv := s.Center.Sub(r.Origin)
	b := -2 * r.Dir.Dot(sv)
	c := sv.Dot(sv) - s.Radius*s.Radius
	disc := b*b - 4*c
	if disc < 0 {
		return Hit{}, false
	}
	t := (-b - math.Sqrt(disc)) / 2
	if t <= minT {
		return Hit{}, false
	}
	p := r.At(t)
	return Hit{T: t, Point: p, Normal: p.Sub(s.Center).Normalize()}, true
}

// EdgeAlpha is smoothstep(0, fwidth, disc): full coverage inside the
// silhouette, a one-pixel ramp across it.
func EdgeAlpha(disc, fwidth float64) float64 {
	return math3d.Smoothstep(0, fwidth, disc)
}

// WindowDepth projects p through projView and maps NDC z to the default
// [0,1] depth range, the value written to gl_FragDepth.
func WindowDepth(projView math3d.Mat4, p math3d.Vec3) float64 {
	clip := projView.MulVec4(math3d.V4FromV3(p, 1))
	if clip.W == 0 {
		return 1
	}
	return 0.5*(clip.Z/clip.W) + 0.5
}
