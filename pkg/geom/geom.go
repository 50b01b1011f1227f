// Package geom defines the primitive records appended to batches and the
// directional light they are shaded with.
package geom

import (
	"math"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/math3d"
)

// Sphere is a centre and radius.
type Sphere struct {
	Center math3d.Vec3
	Radius float64
}

// Bounds returns the axis-aligned box enclosing the sphere.
func (s Sphere) Bounds() (lo, hi math3d.Vec3) {
	r := math3d.V3(s.Radius, s.Radius, s.Radius)
	return s.Center.Sub(r), s.Center.Add(r)
}

// Cylinder is a truncated cone between two weighted end points. Equal radii
// give a right circular cylinder.
type Cylinder struct {
	A, B Sphere
}

// Axis returns B.Center - A.Center.
func (c Cylinder) Axis() math3d.Vec3 {
	return c.B.Center.Sub(c.A.Center)
}

// Length returns the distance between the end centres.
func (c Cylinder) Length() float64 {
	return c.Axis().Len()
}

// Midpoint returns the point halfway along the axis.
func (c Cylinder) Midpoint() math3d.Vec3 {
	return c.A.Center.Lerp(c.B.Center, 0.5)
}

// BoundingSphere returns a sphere enclosing both end caps.
func (c Cylinder) BoundingSphere() Sphere {
	return Sphere{
		Center: c.Midpoint(),
		Radius: math.Hypot(c.Length()/2, math.Max(c.A.Radius, c.B.Radius)),
	}
}

// Triangle is three vertices wound counter-clockwise when seen from the
// front.
type Triangle struct {
	V [3]math3d.Vec3
}

// Tri creates a Triangle.
func Tri(a, b, c math3d.Vec3) Triangle {
	return Triangle{V: [3]math3d.Vec3{a, b, c}}
}

// FaceNormal returns normalize((v1-v0) × (v2-v0)). Degenerate triangles
// return the zero vector.
func (t Triangle) FaceNormal() math3d.Vec3 {
	return t.V[1].Sub(t.V[0]).Cross(t.V[2].Sub(t.V[0])).Normalize()
}

// DefaultLightDirection is the light direction batches start with.
var DefaultLightDirection = math3d.V3(0.721995, 0.618853, 0.309426)

// Light is a directional light: a unit direction towards the light and an
// intensity in [0,1]. Intensity 0 renders pure albedo.
type Light struct {
	Direction math3d.Vec3
	Intensity float64
}

// DefaultLight returns the unlit default.
func DefaultLight() Light {
	return Light{Direction: DefaultLightDirection, Intensity: 0}
}

// NewLight normalizes direction and clamps intensity to [0,1]. A zero
// direction keeps the default direction.
func NewLight(direction math3d.Vec3, intensity float64) Light {
	d := direction.Normalize()
	if d.LenSq() == 0 {
		d = DefaultLightDirection
	}
	if math.IsNaN(intensity) {
		intensity = 0
	}
	return Light{Direction: d, Intensity: math3d.Clamp(intensity, 0, 1)}
}

// Factor returns (1-I) + I·max(0, n·L), the multiplier applied to albedo.
func (l Light) Factor(normal math3d.Vec3) float64 {
	lambert := math.Max(0, normal.Dot(l.Direction))
	return (1 - l.Intensity) + l.Intensity*lambert
}

// Shade applies the light to albedo. Alpha is untouched.
func (l Light) Shade(albedo colors.Color, normal math3d.Vec3) colors.Color {
	if l.Intensity == 0 {
		return albedo
	}
	return albedo.Scale(l.Factor(normal))
}

// Vec4 packs the light as (direction, intensity), the uniform layout the
// shaders read.
func (l Light) Vec4() [4]float32 {
	return math3d.V4FromV3(l.Direction, l.Intensity).F32()
}
