package main

import (
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/glprim/pkg/gpu"
	"github.com/taigrr/glprim/pkg/render"
	"github.com/taigrr/glprim/pkg/shell"
)

func newTestView(t *testing.T) *terminalView {
	t.Helper()
	s, err := buildScene(&gpu.Headless{}, sceneConfig("palette", ""))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Release)
	fb := render.NewFramebuffer(20, 20)
	return &terminalView{
		scene: s,
		fb:    fb,
		r:     render.NewRasterizer(fb),
		cam:   render.NewCamera(),
		orbit: shell.NewOrbit(60),
	}
}

func key(text string) uv.KeyPressEvent {
	return uv.KeyPressEvent{Text: text, Code: []rune(text)[0]}
}

func TestTerminalKeys(t *testing.T) {
	v := newTestView(t)

	if v.handle(key("x")) {
		t.Error("unbound key quit")
	}
	start := v.scene.palette
	v.handle(key("p"))
	if v.scene.palette == start {
		t.Error("p did not change the palette")
	}
	v.handle(key("]"))
	if v.scene.posterize != 1 {
		t.Errorf("posterize = %d after ], want 1", v.scene.posterize)
	}
	v.handle(key("d"))
	if v.orbit.Yaw.Velocity <= 0 {
		t.Error("d did not spin right")
	}
	v.handle(key("r"))
	if !v.orbit.Resting() {
		t.Error("r did not stop the orbit")
	}
	if !v.handle(key("q")) {
		t.Error("q did not quit")
	}
}

func TestTerminalMouseDrag(t *testing.T) {
	v := newTestView(t)
	v.handle(uv.MouseClickEvent{X: 10, Y: 5, Button: uv.MouseLeft})
	v.handle(uv.MouseMotionEvent{X: 14, Y: 3})
	v.handle(uv.MouseReleaseEvent{X: 14, Y: 3})
	v.handle(uv.MouseMotionEvent{X: 30, Y: 30})

	if v.orbit.Yaw.Velocity >= 0 || v.orbit.Pitch.Velocity >= 0 {
		t.Errorf("velocity yaw %v pitch %v, want both negative", v.orbit.Yaw.Velocity, v.orbit.Pitch.Velocity)
	}
	if want := -4 * 0.03; v.orbit.Yaw.Velocity != want {
		t.Errorf("motion after release counted: yaw velocity %v, want %v", v.orbit.Yaw.Velocity, want)
	}

	v.handle(uv.MouseWheelEvent{Button: uv.MouseWheelUp})
	if v.orbit.Zoom.Velocity >= 0 {
		t.Error("wheel up did not zoom in")
	}
}
