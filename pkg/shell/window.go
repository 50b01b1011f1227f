// Package shell opens an OpenGL 4.1 window with GLFW and runs the frame
// loop: it owns the camera, turns mouse input into orbit motion and hands
// each frame to the caller's draw function.
//
// GLFW must be driven from the main thread. Call runtime.LockOSThread from
// an init function of package main before Open.
package shell

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/gpu"
	"github.com/taigrr/glprim/pkg/gpu/glgpu"
	"github.com/taigrr/glprim/pkg/render"
)

// Options configures a window.
type Options struct {
	Title      string
	Width      int
	Height     int
	Samples    int
	VSync      bool
	FPS        int
	Background colors.Color
	Logger     *slog.Logger
}

// Frame describes the frame being drawn.
type Frame struct {
	Width, Height int
	Time, Delta   float64
	Count         int
}

// KeyFunc handles a key press not consumed by the shell.
type KeyFunc func(key glfw.Key, mods glfw.ModifierKey)

// Window is an open GLFW window with a current OpenGL context.
type Window struct {
	win    *glfw.Window
	dev    glgpu.Device
	cam    *render.Camera
	orbit  *Orbit
	opts   Options
	logger *slog.Logger
	onKey  KeyFunc

	dragging     bool
	lastX, lastY float64
}

// Mouse sensitivity in radians per pixel and zoom per scroll step.
const (
	dragSpeed   = 0.004
	scrollSpeed = 0.05
)

// Open creates the window and its context and loads OpenGL.
func Open(opts Options) (*Window, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if opts.Samples > 0 {
		glfw.WindowHint(glfw.Samples, opts.Samples)
	}

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	dev, version, err := glgpu.Init()
	if err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}
	logger.Info("opengl ready", "version", version)

	w := &Window{
		win:    win,
		dev:    dev,
		cam:    render.NewCamera(),
		orbit:  NewOrbit(opts.FPS),
		opts:   opts,
		logger: logger,
	}
	fw, fh := win.GetFramebufferSize()
	w.cam.SetViewport(fw, fh)

	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.cam.SetViewport(width, height)
	})
	win.SetKeyCallback(w.key)
	win.SetMouseButtonCallback(w.mouseButton)
	win.SetCursorPosCallback(w.cursor)
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.orbit.ZoomImpulse(-yoff * scrollSpeed)
	})
	return w, nil
}

// Device returns the OpenGL device for creating batches.
func (w *Window) Device() gpu.Device {
	return w.dev
}

// Camera returns the orbit camera driven by mouse input.
func (w *Window) Camera() *render.Camera {
	return w.cam
}

// Orbit returns the inertia controller feeding the camera.
func (w *Window) Orbit() *Orbit {
	return w.orbit
}

// OnKey installs a handler for key presses the shell does not consume.
// Escape always closes the window and R resets the orbit.
func (w *Window) OnKey(fn KeyFunc) {
	w.onKey = fn
}

// SetTitle changes the window title.
func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

func (w *Window) key(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}
	switch key {
	case glfw.KeyEscape:
		w.win.SetShouldClose(true)
		return
	case glfw.KeyR:
		w.orbit.Reset()
	}
	if w.onKey != nil {
		w.onKey(key, mods)
	}
}

func (w *Window) mouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}
	w.dragging = action == glfw.Press
	if w.dragging {
		w.lastX, w.lastY = w.win.GetCursorPos()
	}
}

func (w *Window) cursor(_ *glfw.Window, x, y float64) {
	if !w.dragging {
		return
	}
	dx, dy := x-w.lastX, y-w.lastY
	w.lastX, w.lastY = x, y
	w.orbit.Impulse(-dx*dragSpeed, dy*dragSpeed)
}

// Run calls draw once per frame until the window closes or ctx is done. A
// draw error stops the loop. The framebuffer is cleared before draw and
// swapped after.
func (w *Window) Run(ctx context.Context, draw func(Frame) error) error {
	bg := w.opts.Background.Normalized()
	last := glfw.GetTime()
	for count := 0; !w.win.ShouldClose(); count++ {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := glfw.GetTime()
		frame := Frame{Time: now, Delta: now - last, Count: count}
		last = now
		frame.Width, frame.Height = w.win.GetFramebufferSize()

		w.orbit.Apply(w.cam)
		w.dev.BeginFrame(frame.Width, frame.Height, bg)
		if err := draw(frame); err != nil {
			return fmt.Errorf("frame %d: %w", count, err)
		}
		w.win.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// Close destroys the window and shuts GLFW down. Batches must be released
// first while the context is still current.
func (w *Window) Close() {
	w.win.Destroy()
	glfw.Terminate()
}
