package geom

import (
	"math"
	"testing"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/math3d"
)

func TestFaceNormal(t *testing.T) {
	tests := []struct {
		name string
		tri  Triangle
		want math3d.Vec3
	}{
		{"xy plane", Tri(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)), math3d.V3(0, 0, 1)},
		{"flipped", Tri(math3d.V3(0, 0, 0), math3d.V3(0, 1, 0), math3d.V3(1, 0, 0)), math3d.V3(0, 0, -1)},
		{"scaled", Tri(math3d.V3(0, 0, 0), math3d.V3(0, 5, 0), math3d.V3(0, 0, 5)), math3d.V3(1, 0, 0)},
		{"degenerate", Tri(math3d.V3(1, 1, 1), math3d.V3(2, 2, 2), math3d.V3(3, 3, 3)), math3d.Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tri.FaceNormal(); got.Sub(tt.want).Len() > 1e-12 {
				t.Errorf("FaceNormal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLight(t *testing.T) {
	l := NewLight(math3d.V3(0, 0, 10), 3)
	if l.Direction != math3d.V3(0, 0, 1) {
		t.Errorf("direction = %v, want unit z", l.Direction)
	}
	if l.Intensity != 1 {
		t.Errorf("intensity = %v, want clamp to 1", l.Intensity)
	}

	l = NewLight(math3d.Vec3{}, -1)
	if l.Direction != DefaultLightDirection || l.Intensity != 0 {
		t.Errorf("NewLight(zero, -1) = %+v, want default direction and 0", l)
	}
}

func TestDefaultLightDirectionIsUnit(t *testing.T) {
	if got := DefaultLightDirection.Len(); math.Abs(got-1) > 1e-5 {
		t.Errorf("len = %v, want 1", got)
	}
}

func TestShade(t *testing.T) {
	albedo := colors.RGB(200, 100, 50)
	n := math3d.V3(0, 0, 1)

	if got := DefaultLight().Shade(albedo, n); got != albedo {
		t.Errorf("unlit shade = %v, want albedo", got)
	}

	facing := NewLight(n, 1)
	if got := facing.Shade(albedo, n); got != albedo {
		t.Errorf("facing shade = %v, want albedo", got)
	}
	if got := facing.Shade(albedo, n.Negate()); got != (colors.Color{A: 255}) {
		t.Errorf("back shade = %v, want black", got)
	}

	half := NewLight(n, 0.5)
	if got := half.Factor(n.Negate()); got != 0.5 {
		t.Errorf("half-intensity back factor = %v, want 0.5", got)
	}
}

func TestCylinderBoundingSphere(t *testing.T) {
	c := Cylinder{
		A: Sphere{Center: math3d.V3(0, 0, -3), Radius: 1},
		B: Sphere{Center: math3d.V3(0, 0, 3), Radius: 4},
	}
	bs := c.BoundingSphere()
	if bs.Center != (math3d.Vec3{}) {
		t.Errorf("center = %v, want origin", bs.Center)
	}
	if math.Abs(bs.Radius-5) > 1e-12 {
		t.Errorf("radius = %v, want 5", bs.Radius)
	}
}
