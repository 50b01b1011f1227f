package render

import (
	"math"

	"github.com/taigrr/glprim/pkg/math3d"
)

const (
	maxPitch    = math.Pi/2 - 0.01
	minDistance = 0.05
)

// Camera orbits a target point at a distance. It implements batch.Camera.
type Camera struct {
	// Target is the point the camera looks at and orbits around.
	Target   math3d.Vec3
	Distance float64

	// Orientation around the target (radians). Pitch is clamped short of
	// the poles.
	Yaw   float64
	Pitch float64

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	pvDirty        bool
}

// NewCamera returns a camera 5 units out on +Z looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Distance:    5,
		FOV:         math.Pi / 4,
		AspectRatio: 1,
		Near:        0.1,
		Far:         1000,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetTarget moves the orbit centre.
func (c *Camera) SetTarget(target math3d.Vec3) {
	c.Target = target
	c.viewDirty = true
}

// SetDistance sets the distance from the target.
func (c *Camera) SetDistance(d float64) {
	c.Distance = max(d, minDistance)
	c.viewDirty = true
}

// SetRotation sets yaw and pitch (radians).
func (c *Camera) SetRotation(yaw, pitch float64) {
	c.Yaw = yaw
	c.Pitch = math3d.Clamp(pitch, -maxPitch, maxPitch)
	c.viewDirty = true
}

// Orbit rotates the camera around the target by the given angles.
func (c *Camera) Orbit(deltaYaw, deltaPitch float64) {
	c.SetRotation(c.Yaw+deltaYaw, c.Pitch+deltaPitch)
}

// Zoom scales the distance to the target; factors below 1 move closer.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetDistance(c.Distance * factor)
}

// Frame centres the camera on a bounding sphere and backs off until it
// fills the vertical field of view.
func (c *Camera) Frame(center math3d.Vec3, radius float64) {
	c.SetTarget(center)
	if radius <= 0 {
		return
	}
	c.SetDistance(radius / math.Sin(c.FOV/2))
	// Leave room to zoom well in and out before clipping.
	c.SetClipPlanes(0.05*radius, 10*c.Distance+radius)
}

// SetFOV sets the vertical field of view (radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	if aspect <= 0 {
		return
	}
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetViewport sets the aspect ratio from a framebuffer size.
func (c *Camera) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		c.SetAspectRatio(float64(width) / float64(height))
	}
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Eye returns the camera position in world space.
func (c *Camera) Eye() math3d.Vec3 {
	offset := math3d.V3(
		math.Cos(c.Pitch)*math.Sin(c.Yaw),
		math.Sin(c.Pitch),
		math.Cos(c.Pitch)*math.Cos(c.Yaw),
	)
	return c.Target.Add(offset.Scale(c.Distance))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Eye()).Normalize()
}

// Right returns the unit right vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// Up returns the unit up vector of the view.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Eye(), c.Target, c.Up())
		c.viewDirty = false
		c.pvDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
		c.pvDirty = true
	}
	return c.projMatrix
}

// ProjectionView returns projection·view.
func (c *Camera) ProjectionView() math3d.Mat4 {
	view, proj := c.ViewMatrix(), c.ProjectionMatrix()
	if c.pvDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.pvDirty = false
	}
	return c.viewProjMatrix
}

// WorldToScreen projects a world point to pixel coordinates.
// Returns (screenX, screenY, window depth, visible).
func (c *Camera) WorldToScreen(p math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := c.ProjectionView().MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}
	x = (ndc.X + 1) * 0.5 * float64(width)
	y = (1 - ndc.Y) * 0.5 * float64(height)
	return x, y, 0.5*ndc.Z + 0.5, true
}
