// Package batch renders collections of primitives (spheres, cylinders,
// triangles and curved patches) as GPU-resident instanced or tessellated
// geometry.
//
// A batch keeps its primitives on the CPU and marks itself dirty whenever
// they change. Draw re-uploads the whole collection once when dirty and then
// issues a single draw call (one per topology group for patches). Batches
// are not safe for concurrent use; drive them from the render thread.
package batch

import (
	"errors"
	"slices"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/gpu"
	"github.com/taigrr/glprim/pkg/math3d"
)

var (
	// ErrLengthMismatch is returned when a bulk append pairs instances with
	// a colour or value slice of a different length.
	ErrLengthMismatch = errors.New("batch: instance and color counts differ")
	// ErrModeMismatch is returned when a patch is appended in vertex-colour
	// mode to a topology group holding palette values, or vice versa.
	ErrModeMismatch = errors.New("batch: patch group uses the other coloring mode")
	// ErrReleased is returned by Draw after Release.
	ErrReleased = errors.New("batch: released")
)

// Camera supplies the per-frame view state a batch draws with.
type Camera interface {
	ProjectionView() math3d.Mat4
	Eye() math3d.Vec3
	Up() math3d.Vec3
}

// store is the CPU side shared by the instanced batches: the instances, one
// colour per instance, the default colour and the light.
type store[T any] struct {
	items  []T
	colors []colors.Color
	color  colors.Color
	light  geom.Light
	dirty  bool
}

func newStore[T any]() store[T] {
	return store[T]{color: colors.White, light: geom.DefaultLight()}
}

// Clear removes every instance. GPU storage is kept for reuse.
func (s *store[T]) Clear() {
	s.items = s.items[:0]
	s.colors = s.colors[:0]
	s.dirty = true
}

// Append adds one instance with the current default colour.
func (s *store[T]) Append(v T) {
	s.items = append(s.items, v)
	s.colors = append(s.colors, s.color)
	s.dirty = true
}

// AppendMany adds instances with the current default colour.
func (s *store[T]) AppendMany(vs []T) {
	if len(vs) == 0 {
		return
	}
	s.items = append(s.items, vs...)
	for range vs {
		s.colors = append(s.colors, s.color)
	}
	s.dirty = true
}

// AppendColored adds instances with explicit colours. It returns
// ErrLengthMismatch and leaves the batch untouched when the lengths differ.
func (s *store[T]) AppendColored(vs []T, cs []colors.Color) error {
	if len(vs) != len(cs) {
		return ErrLengthMismatch
	}
	if len(vs) == 0 {
		return nil
	}
	s.items = append(s.items, vs...)
	s.colors = append(s.colors, cs...)
	s.dirty = true
	return nil
}

// SetColor sets the colour used by later appends. Existing instances keep
// their colour.
func (s *store[T]) SetColor(c colors.Color) {
	s.color = c
}

// Color returns the current default colour.
func (s *store[T]) Color() colors.Color {
	return s.color
}

// SetLight normalizes direction and clamps intensity to [0,1].
func (s *store[T]) SetLight(direction math3d.Vec3, intensity float64) {
	s.light = geom.NewLight(direction, intensity)
}

// Light returns the batch light.
func (s *store[T]) Light() geom.Light {
	return s.light
}

// Size returns the number of instances.
func (s *store[T]) Size() int {
	return len(s.items)
}

// Dirty reports whether the CPU data differs from what was last uploaded.
func (s *store[T]) Dirty() bool {
	return s.dirty
}

// Instances returns the instances in append order. The slice is shared
// with the batch and must not be modified.
func (s *store[T]) Instances() []T {
	return s.items
}

// Colors returns the per-instance colours, parallel to Instances.
func (s *store[T]) Colors() []colors.Color {
	return s.colors
}

// consistent reports whether every instance has a colour, warning once per
// draw when not.
func (s *store[T]) consistent(kind string) bool {
	if len(s.colors) == len(s.items) {
		return true
	}
	Logger().Warn("color count does not match instances, skipping draw",
		"batch", kind, "instances", len(s.items), "colors", len(s.colors))
	return false
}

// resources owns the device objects of one batch and releases them exactly
// once.
type resources struct {
	dev      gpu.Device
	kind     string
	buffers  []gpu.Buffer
	arrays   []gpu.VertexArray
	textures []gpu.Texture
	programs []*gpu.Program
	released bool
}

func (r *resources) buffer() gpu.Buffer {
	b := r.dev.CreateBuffer()
	r.buffers = append(r.buffers, b)
	return b
}

func (r *resources) vertexArray() gpu.VertexArray {
	v := r.dev.CreateVertexArray()
	r.arrays = append(r.arrays, v)
	return v
}

func (r *resources) texture() gpu.Texture {
	t := r.dev.CreateTexture()
	r.textures = append(r.textures, t)
	return t
}

func (r *resources) program(sources ...gpu.Source) (*gpu.Program, error) {
	p, err := gpu.NewProgram(r.dev, r.kind, sources...)
	if err != nil {
		return nil, err
	}
	r.programs = append(r.programs, p)
	return p, nil
}

// upload replaces the storage of buffer b with data.
func (r *resources) upload(b gpu.Buffer, target gpu.BufferTarget, data []byte) error {
	r.dev.BindBuffer(target, b)
	if err := r.dev.BufferData(target, data); err != nil {
		return err
	}
	Logger().Debug("uploaded buffer", "batch", r.kind, "buffer", b, "bytes", len(data))
	return nil
}

func (r *resources) release() {
	if r.released {
		return
	}
	r.released = true
	for _, p := range r.programs {
		p.Delete()
	}
	for _, v := range slices.Backward(r.arrays) {
		r.dev.DeleteVertexArray(v)
	}
	for _, b := range r.buffers {
		r.dev.DeleteBuffer(b)
	}
	for _, t := range r.textures {
		r.dev.DeleteTexture(t)
	}
	Logger().Debug("released batch", "batch", r.kind,
		"buffers", len(r.buffers), "arrays", len(r.arrays), "programs", len(r.programs))
	r.buffers, r.arrays, r.textures, r.programs = nil, nil, nil, nil
}

// setCamera uploads the camera uniforms every batch program declares.
func setCamera(p *gpu.Program, cam Camera) error {
	if err := p.SetUniform("projection_view", cam.ProjectionView()); err != nil {
		return err
	}
	if err := p.SetUniform("eye", cam.Eye()); err != nil {
		return err
	}
	return p.SetUniform("up", cam.Up())
}
