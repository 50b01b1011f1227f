package batch

import "github.com/taigrr/glprim/pkg/gpu"

// The impostor proxy is a cube spanning [-1,1]³. Sphere instances scale it
// by the radius; cylinder instances stretch x along the axis and y, z across
// it.
var (
	cubeVertices = []proxyVertex{
		{[3]float32{-1, -1, 1}},
		{[3]float32{1, -1, 1}},
		{[3]float32{1, -1, -1}},
		{[3]float32{-1, -1, -1}},
		{[3]float32{-1, 1, 1}},
		{[3]float32{1, 1, 1}},
		{[3]float32{1, 1, -1}},
		{[3]float32{-1, 1, -1}},
	}
	cubeIndices = []uint32{
		1, 2, 6, 6, 5, 1,
		0, 4, 7, 7, 3, 0,
		4, 5, 6, 6, 7, 4,
		0, 3, 2, 2, 1, 0,
		0, 1, 5, 5, 4, 0,
		3, 7, 6, 6, 2, 3,
	}
)

// impostor is the GPU side shared by spheres and cylinders: a program, the
// proxy cube and two per-instance streams.
type impostor struct {
	res       resources
	prog      *gpu.Program
	vao       gpu.VertexArray
	instances gpu.Buffer
	colors    gpu.Buffer
}

// newImpostor compiles the program from the shader pair named stem and lays
// out the proxy cube followed by the instance stream and a per-instance
// colour stream.
func newImpostor(dev gpu.Device, kind, stem string, instances stream) (*impostor, error) {
	im := &impostor{res: resources{dev: dev, kind: kind}}
	prog, err := im.res.program(impostorSources(stem)...)
	if err != nil {
		return nil, err
	}
	im.prog = prog

	im.vao = im.res.vertexArray()
	dev.BindVertexArray(im.vao)

	cube, idx := im.res.buffer(), im.res.buffer()
	if err := im.res.upload(cube, gpu.ArrayBuffer, gpu.Bytes(cubeVertices)); err != nil {
		im.res.release()
		return nil, err
	}
	proxyStream.bind(prog)
	if err := im.res.upload(idx, gpu.ElementBuffer, gpu.Bytes(cubeIndices)); err != nil {
		im.res.release()
		return nil, err
	}

	im.instances = im.res.buffer()
	dev.BindBuffer(gpu.ArrayBuffer, im.instances)
	instances.bind(prog)

	im.colors = im.res.buffer()
	dev.BindBuffer(gpu.ArrayBuffer, im.colors)
	instanceColorStream.bind(prog)

	dev.BindVertexArray(0)
	Logger().Debug("created batch", "batch", kind)
	return im, nil
}

// draw issues one instanced draw of the proxy cube.
func (im *impostor) draw(cam Camera, light [4]float32, count int) error {
	im.prog.Use()
	if err := setCamera(im.prog, cam); err != nil {
		return err
	}
	if err := im.prog.SetUniform("light", light); err != nil {
		return err
	}
	im.res.dev.BindVertexArray(im.vao)
	im.res.dev.DrawElementsInstanced(gpu.Triangles, len(cubeIndices), count)
	im.res.dev.BindVertexArray(0)
	return nil
}
