package shell

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/glprim/pkg/render"
)

// Axis is one degree of freedom with inertia: impulses add velocity, and a
// critically damped spring pulls the velocity back to zero each frame.
type Axis struct {
	Velocity float64
	spring   harmonica.Spring
	accel    float64
}

// NewAxis creates an axis stepped fps times per second.
func NewAxis(fps int) Axis {
	return Axis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// Step returns the velocity to apply this frame and decays it.
func (a *Axis) Step() float64 {
	v := a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
	return v
}

// Resting reports whether the axis has effectively stopped.
func (a *Axis) Resting() bool {
	return math.Abs(a.Velocity) < 1e-6 && math.Abs(a.accel) < 1e-6
}

// Orbit drives a camera's yaw, pitch and zoom with inertia so drags and
// scrolls glide to a stop.
type Orbit struct {
	Yaw, Pitch, Zoom Axis
	fps              int
}

// NewOrbit creates an orbit controller stepped fps times per second.
func NewOrbit(fps int) *Orbit {
	o := &Orbit{fps: max(fps, 1)}
	o.Reset()
	return o
}

// Reset stops all motion.
func (o *Orbit) Reset() {
	o.Yaw = NewAxis(o.fps)
	o.Pitch = NewAxis(o.fps)
	o.Zoom = NewAxis(o.fps)
}

// Impulse adds angular velocity in radians per frame.
func (o *Orbit) Impulse(yaw, pitch float64) {
	o.Yaw.Velocity += yaw
	o.Pitch.Velocity += pitch
}

// ZoomImpulse adds zoom velocity; positive values move away from the
// target.
func (o *Orbit) ZoomImpulse(v float64) {
	o.Zoom.Velocity += v
}

// Resting reports whether every axis has stopped.
func (o *Orbit) Resting() bool {
	return o.Yaw.Resting() && o.Pitch.Resting() && o.Zoom.Resting()
}

// Apply advances one frame and moves the camera.
func (o *Orbit) Apply(cam *render.Camera) {
	cam.Orbit(o.Yaw.Step(), o.Pitch.Step())
	if z := o.Zoom.Step(); z != 0 {
		cam.Zoom(math.Exp(z))
	}
}
