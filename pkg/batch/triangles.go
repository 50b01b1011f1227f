package batch

import (
	"fmt"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/gpu"
)

// Triangles draws flat-shaded triangles. Each triangle has one colour and
// its face normal, both replicated to its three vertices.
type Triangles struct {
	store[geom.Triangle]
	res      resources
	prog     *gpu.Program
	vao      gpu.VertexArray
	vertices gpu.Buffer
	vcolors  gpu.Buffer

	packed  []triangleVertex
	pcolors []colors.Color
}

// NewTriangles compiles the triangle program and allocates its buffers.
func NewTriangles(dev gpu.Device) (*Triangles, error) {
	t := &Triangles{
		store: newStore[geom.Triangle](),
		res:   resources{dev: dev, kind: "triangles"},
	}
	prog, err := t.res.program(
		gpu.Source{Stage: gpu.VertexStage, Code: shaderSource(nil, "triangle.vert")},
		gpu.Source{Stage: gpu.FragmentStage, Code: shaderSource(nil, "lighting.glsl", "triangle.frag")},
	)
	if err != nil {
		return nil, err
	}
	t.prog = prog

	t.vao = t.res.vertexArray()
	dev.BindVertexArray(t.vao)
	t.vertices = t.res.buffer()
	dev.BindBuffer(gpu.ArrayBuffer, t.vertices)
	triangleStream.bind(prog)
	t.vcolors = t.res.buffer()
	dev.BindBuffer(gpu.ArrayBuffer, t.vcolors)
	vertexColorStream.bind(prog)
	dev.BindVertexArray(0)

	Logger().Debug("created batch", "batch", "triangles")
	return t, nil
}

// Draw uploads the triangles if they changed since the last draw and issues
// one draw of three vertices per triangle. An empty batch draws nothing.
func (t *Triangles) Draw(cam Camera) error {
	if t.res.released {
		return ErrReleased
	}
	if !t.consistent("triangles") {
		return nil
	}
	if t.dirty {
		t.packed, t.pcolors = packTriangles(t.packed, t.pcolors, t.items, t.colors)
		if err := t.res.upload(t.vertices, gpu.ArrayBuffer, gpu.Bytes(t.packed)); err != nil {
			return fmt.Errorf("upload triangles: %w", err)
		}
		if err := t.res.upload(t.vcolors, gpu.ArrayBuffer, gpu.Bytes(t.pcolors)); err != nil {
			return fmt.Errorf("upload triangle colors: %w", err)
		}
		t.dirty = false
	}
	if len(t.items) == 0 {
		return nil
	}

	t.prog.Use()
	if err := setCamera(t.prog, cam); err != nil {
		return err
	}
	if err := t.prog.SetUniform("light", t.light.Vec4()); err != nil {
		return err
	}
	t.res.dev.BindVertexArray(t.vao)
	t.res.dev.DrawArrays(gpu.Triangles, 0, 3*len(t.items))
	t.res.dev.BindVertexArray(0)
	return nil
}

// Release frees the GPU resources. It is safe to call more than once.
func (t *Triangles) Release() {
	t.res.release()
}
