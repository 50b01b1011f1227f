package batch

import (
	"fmt"

	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/gpu"
)

// Spheres draws sphere impostors: one instanced proxy cube per sphere, with
// the silhouette, normal and depth solved per pixel.
type Spheres struct {
	store[geom.Sphere]
	im      *impostor
	records []sphereRecord
}

// NewSpheres compiles the sphere program and allocates its buffers.
func NewSpheres(dev gpu.Device) (*Spheres, error) {
	im, err := newImpostor(dev, "spheres", "sphere", sphereStream)
	if err != nil {
		return nil, err
	}
	return &Spheres{store: newStore[geom.Sphere](), im: im}, nil
}

// Draw uploads the spheres if they changed since the last draw and issues
// one instanced draw. An empty batch draws nothing.
func (s *Spheres) Draw(cam Camera) error {
	if s.im.res.released {
		return ErrReleased
	}
	if !s.consistent("spheres") {
		return nil
	}
	if s.dirty {
		s.records = packSpheres(s.records, s.items)
		if err := s.im.res.upload(s.im.instances, gpu.ArrayBuffer, gpu.Bytes(s.records)); err != nil {
			return fmt.Errorf("upload spheres: %w", err)
		}
		if err := s.im.res.upload(s.im.colors, gpu.ArrayBuffer, gpu.Bytes(s.colors)); err != nil {
			return fmt.Errorf("upload sphere colors: %w", err)
		}
		s.dirty = false
	}
	if len(s.items) == 0 {
		return nil
	}
	return s.im.draw(cam, s.light.Vec4(), len(s.items))
}

// Release frees the GPU resources. It is safe to call more than once.
func (s *Spheres) Release() {
	s.im.res.release()
}
