package render

import (
	"math"
	"testing"

	"github.com/taigrr/glprim/pkg/math3d"
)

func vecNear(a, b math3d.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

func TestCameraOrbit(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		eye        math3d.Vec3
		up         math3d.Vec3
	}{
		{"front", 0, 0, math3d.V3(0, 0, 5), math3d.V3(0, 1, 0)},
		{"right", math.Pi / 2, 0, math3d.V3(5, 0, 0), math3d.V3(0, 1, 0)},
		{"behind", math.Pi, 0, math3d.V3(0, 0, -5), math3d.V3(0, 1, 0)},
		{"above", 0, math.Pi / 4, math3d.V3(0, 5*math.Sqrt2/2, 5*math.Sqrt2/2), math3d.V3(0, math.Sqrt2/2, -math.Sqrt2/2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCamera()
			c.SetRotation(tt.yaw, tt.pitch)
			if got := c.Eye(); !vecNear(got, tt.eye, 1e-9) {
				t.Errorf("Eye() = %v, want %v", got, tt.eye)
			}
			if got := c.Up(); !vecNear(got, tt.up, 1e-9) {
				t.Errorf("Up() = %v, want %v", got, tt.up)
			}
			if d := c.Up().Dot(c.Forward()); math.Abs(d) > 1e-9 {
				t.Errorf("up and forward not orthogonal: dot %v", d)
			}
		})
	}
}

func TestCameraPitchClamp(t *testing.T) {
	c := NewCamera()
	c.Orbit(0, 10)
	if c.Pitch >= math.Pi/2 {
		t.Errorf("pitch %v reached the pole", c.Pitch)
	}
	c.Orbit(0, -20)
	if c.Pitch <= -math.Pi/2 {
		t.Errorf("pitch %v reached the pole", c.Pitch)
	}
}

func TestCameraZoom(t *testing.T) {
	c := NewCamera()
	c.Zoom(0.5)
	if c.Distance != 2.5 {
		t.Errorf("distance = %v, want 2.5", c.Distance)
	}
	c.Zoom(0)
	c.Zoom(-1)
	if c.Distance != 2.5 {
		t.Errorf("non-positive zoom changed distance to %v", c.Distance)
	}
	c.Zoom(1e-9)
	if c.Distance < minDistance {
		t.Errorf("distance %v below minimum", c.Distance)
	}
}

func TestProjectionViewTracksChanges(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionView()

	c.SetTarget(math3d.V3(1, 0, 0))
	_ = c.ViewMatrix()
	after := c.ProjectionView()
	if before == after {
		t.Error("ProjectionView not updated after the target moved")
	}
	if want := c.ProjectionMatrix().Mul(c.ViewMatrix()); after != want {
		t.Error("ProjectionView differs from projection·view")
	}
}

func TestWorldToScreen(t *testing.T) {
	c := NewCamera()
	x, y, depth, ok := c.WorldToScreen(math3d.Zero3(), 100, 50)
	if !ok {
		t.Fatal("target not visible")
	}
	if math.Abs(x-50) > 1e-9 || math.Abs(y-25) > 1e-9 {
		t.Errorf("target at (%v, %v), want screen centre", x, y)
	}
	if depth <= 0 || depth >= 1 {
		t.Errorf("depth %v outside (0,1)", depth)
	}
	if _, _, _, ok := c.WorldToScreen(math3d.V3(0, 0, 10), 100, 50); ok {
		t.Error("point behind the eye reported visible")
	}
}

func TestFrame(t *testing.T) {
	c := NewCamera()
	c.Frame(math3d.V3(1, 2, 3), 2)
	if c.Target != math3d.V3(1, 2, 3) {
		t.Errorf("target = %v", c.Target)
	}
	if want := 2 / math.Sin(c.FOV/2); math.Abs(c.Distance-want) > 1e-9 {
		t.Errorf("distance = %v, want %v", c.Distance, want)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		t.Errorf("clip planes %v..%v", c.Near, c.Far)
	}
}
