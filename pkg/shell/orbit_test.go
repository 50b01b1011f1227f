package shell

import (
	"math"
	"testing"

	"github.com/taigrr/glprim/pkg/render"
)

func TestAxisDecays(t *testing.T) {
	a := NewAxis(60)
	a.Velocity = 1

	total := 0.0
	for range 600 {
		total += a.Step()
	}
	if !a.Resting() {
		t.Errorf("velocity %v after ten seconds", a.Velocity)
	}
	if total <= 1 {
		t.Errorf("travelled %v, want more than one frame of motion", total)
	}
}

func TestAxisNoOvershoot(t *testing.T) {
	a := NewAxis(60)
	a.Velocity = 1
	for i := range 600 {
		a.Step()
		if a.Velocity < -1e-9 {
			t.Fatalf("frame %d: velocity %v changed sign", i, a.Velocity)
		}
	}
}

func TestOrbitApply(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float64
		zoom       float64
	}{
		{"yaw only", 0.1, 0, 0},
		{"pitch only", 0, 0.05, 0},
		{"zoom out", 0, 0, 0.1},
		{"zoom in", 0, 0, -0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := render.NewCamera()
			o := NewOrbit(60)
			o.Impulse(tt.yaw, tt.pitch)
			o.ZoomImpulse(tt.zoom)
			o.Apply(cam)

			if math.Abs(cam.Yaw-tt.yaw) > 1e-12 {
				t.Errorf("yaw = %v, want %v", cam.Yaw, tt.yaw)
			}
			if math.Abs(cam.Pitch-tt.pitch) > 1e-12 {
				t.Errorf("pitch = %v, want %v", cam.Pitch, tt.pitch)
			}
			if want := 5 * math.Exp(tt.zoom); math.Abs(cam.Distance-want) > 1e-12 {
				t.Errorf("distance = %v, want %v", cam.Distance, want)
			}
		})
	}
}

func TestOrbitReset(t *testing.T) {
	o := NewOrbit(0)
	o.Impulse(1, 1)
	o.ZoomImpulse(1)
	if o.Resting() {
		t.Fatal("resting after impulse")
	}
	o.Reset()
	if !o.Resting() {
		t.Error("not resting after Reset")
	}
}
