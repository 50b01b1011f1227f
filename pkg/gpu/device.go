// Package gpu is the slice of the graphics API the primitive batches need:
// buffers, vertex arrays, 1-D lookup textures, shader programs, uniforms and
// draw calls. pkg/gpu/glgpu implements it on OpenGL 4.1 core and
// pkg/gpu/gputest records calls for tests.
package gpu

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrOutOfMemory is returned when the device cannot allocate storage
	// for an upload.
	ErrOutOfMemory = errors.New("gpu: out of memory")
	// ErrCompile reports a shader stage that failed to compile.
	ErrCompile = errors.New("gpu: shader compile failed")
	// ErrLink reports a program that failed to link.
	ErrLink = errors.New("gpu: program link failed")
)

// Handles are opaque device object names. Zero is never a live object.
type (
	Buffer      uint32
	VertexArray uint32
	Texture     uint32
	Shader      uint32
	ProgramID   uint32
)

// Stage is a programmable pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	TessControlStage
	TessEvalStage
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case TessControlStage:
		return "tessellation control"
	case TessEvalStage:
		return "tessellation evaluation"
	case FragmentStage:
		return "fragment"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// BufferTarget selects the binding point a buffer is used with.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementBuffer
)

// Primitive is the assembly mode of a draw call.
type Primitive int

const (
	Triangles Primitive = iota
	Patches
)

func (p Primitive) String() string {
	if p == Patches {
		return "patches"
	}
	return "triangles"
}

// AttribType is the component type of a vertex attribute.
type AttribType int

const (
	Float32 AttribType = iota
	Uint8
	Uint16
	Uint32
)

// Size returns the byte size of one component.
func (t AttribType) Size() int {
	switch t {
	case Uint8:
		return 1
	case Uint16:
		return 2
	default:
		return 4
	}
}

// Device issues graphics commands. Implementations are bound to a single
// thread, the one owning the context.
type Device interface {
	CreateBuffer() Buffer
	DeleteBuffer(Buffer)
	BindBuffer(BufferTarget, Buffer)
	// BufferData replaces the whole storage of the buffer bound to target.
	// It returns ErrOutOfMemory when the allocation fails.
	BufferData(target BufferTarget, data []byte) error

	CreateVertexArray() VertexArray
	DeleteVertexArray(VertexArray)
	BindVertexArray(VertexArray)
	// VertexAttribPointer describes attribute loc inside the bound array
	// buffer and enables it.
	VertexAttribPointer(loc, components int, typ AttribType, normalized bool, stride, offset int)
	VertexAttribDivisor(loc, divisor int)

	CreateTexture() Texture
	DeleteTexture(Texture)
	// TexImage1D uploads RGBA8 texels with nearest filtering and clamped
	// wrapping.
	TexImage1D(tex Texture, rgba []byte) error
	BindTexture1D(unit int, tex Texture)

	CompileShader(stage Stage, source string) (Shader, error)
	DeleteShader(Shader)
	LinkProgram(shaders ...Shader) (ProgramID, error)
	DeleteProgram(ProgramID)
	UseProgram(ProgramID)
	// AttribLocation and UniformLocation return -1 for unknown names.
	AttribLocation(p ProgramID, name string) int
	UniformLocation(p ProgramID, name string) int

	Uniform1i(loc int, v int32)
	Uniform1f(loc int, v float32)
	Uniform2f(loc int, v [2]float32)
	Uniform3f(loc int, v [3]float32)
	Uniform4f(loc int, v [4]float32)
	UniformMatrix4(loc int, m [16]float32)

	PatchVertices(n int)
	DrawArrays(mode Primitive, first, count int)
	DrawArraysInstanced(mode Primitive, first, count, instances int)
	DrawElementsInstanced(mode Primitive, count, instances int)
}

// Bytes reinterprets a slice of fixed-layout records as raw bytes without
// copying. T must not contain pointers.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}
