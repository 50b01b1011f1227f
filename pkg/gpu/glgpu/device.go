// Package glgpu implements gpu.Device on an OpenGL 4.1 core context.
//
// The context must be current on the calling thread, and gl.Init must have
// succeeded (Init does both checks for the caller).
package glgpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/taigrr/glprim/pkg/gpu"
)

// Device issues commands to the current OpenGL context.
type Device struct{}

var _ gpu.Device = Device{}

// Init loads the OpenGL function pointers for the current context and
// returns a Device along with the driver's version string.
func Init() (Device, string, error) {
	if err := gl.Init(); err != nil {
		return Device{}, "", fmt.Errorf("init opengl: %w", err)
	}
	return Device{}, gl.GoStr(gl.GetString(gl.VERSION)), nil
}

func target(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func mode(p gpu.Primitive) uint32 {
	if p == gpu.Patches {
		return gl.PATCHES
	}
	return gl.TRIANGLES
}

func attribType(t gpu.AttribType) uint32 {
	switch t {
	case gpu.Uint8:
		return gl.UNSIGNED_BYTE
	case gpu.Uint16:
		return gl.UNSIGNED_SHORT
	case gpu.Uint32:
		return gl.UNSIGNED_INT
	}
	return gl.FLOAT
}

func stage(s gpu.Stage) uint32 {
	switch s {
	case gpu.TessControlStage:
		return gl.TESS_CONTROL_SHADER
	case gpu.TessEvalStage:
		return gl.TESS_EVALUATION_SHADER
	case gpu.FragmentStage:
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

// drainErrors clears the error queue and reports whether an allocation
// failure was among the flags.
func drainErrors() (oom bool) {
	// A lost context may report the same flag forever.
	for range 32 {
		switch gl.GetError() {
		case gl.NO_ERROR:
			return oom
		case gl.OUT_OF_MEMORY:
			oom = true
		}
	}
	return oom
}

func (Device) CreateBuffer() gpu.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return gpu.Buffer(b)
}

func (Device) DeleteBuffer(b gpu.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (Device) BindBuffer(t gpu.BufferTarget, b gpu.Buffer) {
	gl.BindBuffer(target(t), uint32(b))
}

func (Device) BufferData(t gpu.BufferTarget, data []byte) error {
	drainErrors()
	if len(data) == 0 {
		gl.BufferData(target(t), 0, nil, gl.STATIC_DRAW)
	} else {
		gl.BufferData(target(t), len(data), gl.Ptr(data), gl.STATIC_DRAW)
	}
	if drainErrors() {
		return fmt.Errorf("buffer data (%d bytes): %w", len(data), gpu.ErrOutOfMemory)
	}
	return nil
}

func (Device) CreateVertexArray() gpu.VertexArray {
	var v uint32
	gl.GenVertexArrays(1, &v)
	return gpu.VertexArray(v)
}

func (Device) DeleteVertexArray(v gpu.VertexArray) {
	id := uint32(v)
	gl.DeleteVertexArrays(1, &id)
}

func (Device) BindVertexArray(v gpu.VertexArray) {
	gl.BindVertexArray(uint32(v))
}

func (Device) VertexAttribPointer(loc, components int, typ gpu.AttribType, normalized bool, stride, offset int) {
	gl.EnableVertexAttribArray(uint32(loc))
	if !normalized && typ != gpu.Float32 {
		gl.VertexAttribIPointer(uint32(loc), int32(components), attribType(typ), int32(stride), gl.PtrOffset(offset))
		return
	}
	gl.VertexAttribPointer(uint32(loc), int32(components), attribType(typ), normalized, int32(stride), gl.PtrOffset(offset))
}

func (Device) VertexAttribDivisor(loc, divisor int) {
	gl.VertexAttribDivisor(uint32(loc), uint32(divisor))
}

func (Device) CreateTexture() gpu.Texture {
	var t uint32
	gl.GenTextures(1, &t)
	gl.BindTexture(gl.TEXTURE_1D, t)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_1D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	return gpu.Texture(t)
}

func (Device) DeleteTexture(t gpu.Texture) {
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

func (Device) TexImage1D(t gpu.Texture, rgba []byte) error {
	if len(rgba) == 0 || len(rgba)%4 != 0 {
		return fmt.Errorf("tex image 1d: %d bytes is not a whole number of RGBA texels", len(rgba))
	}
	drainErrors()
	gl.BindTexture(gl.TEXTURE_1D, uint32(t))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage1D(gl.TEXTURE_1D, 0, gl.RGBA8, int32(len(rgba)/4), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	if drainErrors() {
		return fmt.Errorf("tex image 1d: %w", gpu.ErrOutOfMemory)
	}
	return nil
}

func (Device) BindTexture1D(unit int, t gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_1D, uint32(t))
}

func (Device) CompileShader(s gpu.Stage, source string) (gpu.Shader, error) {
	shader := gl.CreateShader(stage(s))
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s", gpu.ErrCompile, strings.TrimRight(log, "\x00\n"))
	}
	return gpu.Shader(shader), nil
}

func (Device) DeleteShader(s gpu.Shader) {
	gl.DeleteShader(uint32(s))
}

func (Device) LinkProgram(shaders ...gpu.Shader) (gpu.ProgramID, error) {
	p := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(p, uint32(s))
	}
	gl.LinkProgram(p)
	for _, s := range shaders {
		gl.DetachShader(p, uint32(s))
	}

	var status int32
	gl.GetProgramiv(p, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(p, logLength, nil, gl.Str(log))
		gl.DeleteProgram(p)
		return 0, fmt.Errorf("%w: %s", gpu.ErrLink, strings.TrimRight(log, "\x00\n"))
	}
	return gpu.ProgramID(p), nil
}

func (Device) DeleteProgram(p gpu.ProgramID) {
	gl.DeleteProgram(uint32(p))
}

func (Device) UseProgram(p gpu.ProgramID) {
	gl.UseProgram(uint32(p))
}

func (Device) AttribLocation(p gpu.ProgramID, name string) int {
	return int(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (Device) UniformLocation(p gpu.ProgramID, name string) int {
	return int(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (Device) Uniform1i(loc int, v int32) {
	gl.Uniform1i(int32(loc), v)
}

func (Device) Uniform1f(loc int, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (Device) Uniform2f(loc int, v [2]float32) {
	gl.Uniform2f(int32(loc), v[0], v[1])
}

func (Device) Uniform3f(loc int, v [3]float32) {
	gl.Uniform3f(int32(loc), v[0], v[1], v[2])
}

func (Device) Uniform4f(loc int, v [4]float32) {
	gl.Uniform4f(int32(loc), v[0], v[1], v[2], v[3])
}

func (Device) UniformMatrix4(loc int, m [16]float32) {
	mat := mgl32.Mat4(m)
	gl.UniformMatrix4fv(int32(loc), 1, false, &mat[0])
}

func (Device) PatchVertices(n int) {
	gl.PatchParameteri(gl.PATCH_VERTICES, int32(n))
}

func (Device) DrawArrays(p gpu.Primitive, first, count int) {
	gl.DrawArrays(mode(p), int32(first), int32(count))
}

func (Device) DrawArraysInstanced(p gpu.Primitive, first, count, instances int) {
	gl.DrawArraysInstanced(mode(p), int32(first), int32(count), int32(instances))
}

func (Device) DrawElementsInstanced(p gpu.Primitive, count, instances int) {
	gl.DrawElementsInstanced(mode(p), int32(count), gl.UNSIGNED_INT, nil, int32(instances))
}

// BeginFrame sets the viewport, clears colour and depth and enables the
// depth test and alpha blending the batches rely on.
func (Device) BeginFrame(width, height int, background [4]float32) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(background[0], background[1], background[2], background[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
