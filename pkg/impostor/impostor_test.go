package impostor

import (
	"math"
	"testing"

	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/math3d"
)

const tol = 1e-9

func TestIntersectSphere(t *testing.T) {
	unit := geom.Sphere{Radius: 1}
	tests := []struct {
		name   string
		ray    Ray
		sphere geom.Sphere
		wantT  float64
		hit    bool
	}{
		{"head on", Ray{math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)}, unit, 4, true},
		{"offset sphere", Ray{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0)}, geom.Sphere{Center: math3d.V3(10, 0, 0), Radius: 2}, 8, true},
		{"miss", Ray{math3d.V3(0, 3, 5), math3d.V3(0, 0, -1)}, unit, 0, false},
		{"behind", Ray{math3d.V3(0, 0, 5), math3d.V3(0, 0, 1)}, unit, 0, false},
		{"tangent", Ray{math3d.V3(1, 0, 5), math3d.V3(0, 0, -1)}, unit, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := IntersectSphere(tt.ray, tt.sphere)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if !ok {
				return
			}
			if math.Abs(h.T-tt.wantT) > tol {
				t.Errorf("t = %v, want %v", h.T, tt.wantT)
			}
			if d := h.Point.Distance(tt.sphere.Center); math.Abs(d-tt.sphere.Radius) > 1e-9 {
				t.Errorf("hit point %v is %v from centre, want %v", h.Point, d, tt.sphere.Radius)
			}
		})
	}
}

func TestSphereNormalFacesEye(t *testing.T) {
	h, ok := IntersectSphere(Ray{math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)}, geom.Sphere{Radius: 1})
	if !ok {
		t.Fatal("expected hit")
	}
	if h.Normal != math3d.V3(0, 0, 1) {
		t.Errorf("normal = %v, want +z", h.Normal)
	}
}

func TestEdgeAlpha(t *testing.T) {
	tests := []struct {
		disc, fwidth, want float64
	}{
		{-1, 0.5, 0},
		{0, 0.5, 0},
		{0.25, 0.5, 0.5},
		{2, 0.5, 1},
	}
	for _, tt := range tests {
		if got := EdgeAlpha(tt.disc, tt.fwidth); math.Abs(got-tt.want) > tol {
			t.Errorf("EdgeAlpha(%v, %v) = %v, want %v", tt.disc, tt.fwidth, got, tt.want)
		}
	}
}

func TestWindowDepth(t *testing.T) {
	near, far := 0.5, 50.0
	pv := math3d.Perspective(math.Pi/3, 1, near, far).Mul(
		math3d.LookAt(math3d.V3(0, 0, 10), math3d.Zero3(), math3d.V3(0, 1, 0)))

	if got := WindowDepth(pv, math3d.V3(0, 0, 10-near)); math.Abs(got) > 1e-9 {
		t.Errorf("depth at near plane = %v, want 0", got)
	}
	if got := WindowDepth(pv, math3d.V3(0, 0, 10-far)); math.Abs(got-1) > 1e-9 {
		t.Errorf("depth at far plane = %v, want 1", got)
	}

	front := WindowDepth(pv, math3d.V3(0, 0, 1))
	back := WindowDepth(pv, math3d.V3(0, 0, -1))
	if front >= back {
		t.Errorf("front depth %v should be less than back depth %v", front, back)
	}
}

func TestIntersectCylinderCap(t *testing.T) {
	cyl := geom.Cylinder{
		A: geom.Sphere{Center: math3d.V3(0, 0, 0), Radius: 0.5},
		B: geom.Sphere{Center: math3d.V3(0, 0, 2), Radius: 0.5},
	}
	tests := []struct {
		name   string
		ray    Ray
		part   Part
		wantT  float64
		normal math3d.Vec3
	}{
		{"along axis above B", Ray{math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)}, CapB, 3, math3d.V3(0, 0, 1)},
		{"along axis below A", Ray{math3d.V3(0, 0, -4), math3d.V3(0, 0, 1)}, CapA, 4, math3d.V3(0, 0, -1)},
		{"off axis inside cap", Ray{math3d.V3(0.2, -0.1, 7), math3d.V3(0, 0, -1)}, CapB, 5, math3d.V3(0, 0, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := IntersectCylinder(tt.ray, cyl)
			if !ok {
				t.Fatal("expected hit")
			}
			if h.Part != tt.part {
				t.Errorf("part = %v, want %v", h.Part, tt.part)
			}
			if math.Abs(h.T-tt.wantT) > tol {
				t.Errorf("t = %v, want %v", h.T, tt.wantT)
			}
			if h.Normal.Sub(tt.normal).Len() > tol {
				t.Errorf("normal = %v, want %v", h.Normal, tt.normal)
			}
		})
	}
}

func TestIntersectCylinderLateral(t *testing.T) {
	cyl := geom.Cylinder{
		A: geom.Sphere{Center: math3d.V3(0, 0, 0), Radius: 0.5},
		B: geom.Sphere{Center: math3d.V3(0, 0, 2), Radius: 0.5},
	}
	h, ok := IntersectCylinder(Ray{math3d.V3(5, 0, 1), math3d.V3(-1, 0, 0)}, cyl)
	if !ok {
		t.Fatal("expected hit")
	}
	if h.Part != Lateral {
		t.Errorf("part = %v, want lateral", h.Part)
	}
	if math.Abs(h.T-4.5) > tol {
		t.Errorf("t = %v, want 4.5", h.T)
	}
	if h.Normal.Sub(math3d.V3(1, 0, 0)).Len() > tol {
		t.Errorf("normal = %v, want +x", h.Normal)
	}

	// Beyond the axial segment the infinite surface must not count.
	if _, ok := IntersectCylinder(Ray{math3d.V3(5, 0, 3), math3d.V3(-1, 0, 0)}, cyl); ok {
		t.Error("ray above the segment should miss")
	}
}

func TestIntersectCone(t *testing.T) {
	cone := geom.Cylinder{
		A: geom.Sphere{Center: math3d.V3(0, 0, 0), Radius: 1},
		B: geom.Sphere{Center: math3d.V3(0, 0, 1), Radius: 0.5},
	}
	h, ok := IntersectCylinder(Ray{math3d.V3(5, 0, 0.5), math3d.V3(-1, 0, 0)}, cone)
	if !ok {
		t.Fatal("expected hit")
	}
	if h.Part != Lateral {
		t.Fatalf("part = %v, want lateral", h.Part)
	}
	// Radius at mid height is 0.75.
	if math.Abs(h.T-4.25) > tol {
		t.Errorf("t = %v, want 4.25", h.T)
	}
	// The surface narrows towards B so the normal tilts up.
	if h.Normal.Z <= 0 || h.Normal.X <= 0 {
		t.Errorf("normal = %v, want +x tilted towards +z", h.Normal)
	}
	if math.Abs(h.Normal.Len()-1) > tol {
		t.Errorf("normal not unit: %v", h.Normal)
	}
}

func TestIntersectCylinderDegenerate(t *testing.T) {
	c := geom.Cylinder{A: geom.Sphere{Radius: 1}, B: geom.Sphere{Radius: 1}}
	if _, ok := IntersectCylinder(Ray{math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)}, c); ok {
		t.Error("zero-length cylinder should never hit")
	}
	if got := CylinderDiscriminant(Ray{math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)}, c); got >= 0 {
		t.Errorf("discriminant = %v, want negative", got)
	}
}

func BenchmarkIntersectSphere(b *testing.B) {
	r := Ray{math3d.V3(0, 0, 5), math3d.V3(0, 0, -1)}
	s := geom.Sphere{Radius: 1}
	for b.Loop() {
		_, _ = IntersectSphere(r, s)
	}
}

func BenchmarkIntersectCylinder(b *testing.B) {
	r := Ray{math3d.V3(5, 0, 1), math3d.V3(-1, 0, 0)}
	c := geom.Cylinder{
		A: geom.Sphere{Center: math3d.V3(0, 0, 0), Radius: 0.5},
		B: geom.Sphere{Center: math3d.V3(0, 0, 2), Radius: 0.3},
	}
	for b.Loop() {
		_, _ = IntersectCylinder(r, c)
	}
}
