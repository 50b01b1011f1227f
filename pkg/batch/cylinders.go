package batch

import (
	"fmt"

	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/gpu"
)

// Cylinders draws truncated-cone impostors with flat end caps. Each
// instance carries one colour; lighting follows the batch light.
type Cylinders struct {
	store[geom.Cylinder]
	im      *impostor
	records []cylinderRecord
}

// NewCylinders compiles the cylinder program and allocates its buffers.
func NewCylinders(dev gpu.Device) (*Cylinders, error) {
	im, err := newImpostor(dev, "cylinders", "cylinder", cylinderStream)
	if err != nil {
		return nil, err
	}
	return &Cylinders{store: newStore[geom.Cylinder](), im: im}, nil
}

// Draw uploads the cylinders if they changed since the last draw and issues
// one instanced draw. An empty batch draws nothing.
func (c *Cylinders) Draw(cam Camera) error {
	if c.im.res.released {
		return ErrReleased
	}
	if !c.consistent("cylinders") {
		return nil
	}
	if c.dirty {
		c.records = packCylinders(c.records, c.items)
		if err := c.im.res.upload(c.im.instances, gpu.ArrayBuffer, gpu.Bytes(c.records)); err != nil {
			return fmt.Errorf("upload cylinders: %w", err)
		}
		if err := c.im.res.upload(c.im.colors, gpu.ArrayBuffer, gpu.Bytes(c.colors)); err != nil {
			return fmt.Errorf("upload cylinder colors: %w", err)
		}
		c.dirty = false
	}
	if len(c.items) == 0 {
		return nil
	}
	return c.im.draw(cam, c.light.Vec4(), len(c.items))
}

// Release frees the GPU resources. It is safe to call more than once.
func (c *Cylinders) Release() {
	c.im.res.release()
}
