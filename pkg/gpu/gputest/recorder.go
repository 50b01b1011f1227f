// Package gputest provides a gpu.Device that records commands instead of
// executing them.
package gputest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/taigrr/glprim/pkg/gpu"
)

// DrawCall is one recorded draw.
type DrawCall struct {
	Mode      gpu.Primitive
	Program   gpu.ProgramID
	Indexed   bool
	First     int
	Count     int
	Instances int
	// PatchVertices is the patch size in effect for Patches draws.
	PatchVertices int
	// Textures maps texture units to the 1-D textures bound at draw time.
	Textures map[int]gpu.Texture
}

// Upload is one recorded BufferData call.
type Upload struct {
	Buffer gpu.Buffer
	Target gpu.BufferTarget
	Bytes  int
}

// Attrib is the recorded state of a vertex input within a vertex array.
type Attrib struct {
	Buffer     gpu.Buffer
	Components int
	Type       gpu.AttribType
	Normalized bool
	Stride     int
	Offset     int
	Divisor    int
}

// Recorder is a fake gpu.Device. Every call is recorded; nothing is drawn.
type Recorder struct {
	Uploads        []Upload
	TextureUploads int
	Draws          []DrawCall
	Sources        map[gpu.Stage][]string
	// Uniforms holds the last value set per uniform name of each program.
	Uniforms map[gpu.ProgramID]map[string]any

	// FailUploads makes BufferData and TexImage1D report out of memory.
	FailUploads bool
	// FailStage makes CompileShader fail for that stage when set.
	FailStage *gpu.Stage
	// FailLink makes LinkProgram fail.
	FailLink bool

	next     uint32
	live     map[string]map[uint32]bool
	bound    map[gpu.BufferTarget]gpu.Buffer
	vao      gpu.VertexArray
	program  gpu.ProgramID
	patch    int
	textures map[int]gpu.Texture
	storage  map[gpu.Buffer]int
	attribs  map[gpu.VertexArray]map[int]*Attrib
	names    map[gpu.ProgramID]map[string]int
	rev      map[gpu.ProgramID]map[int]string
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{
		Sources:  make(map[gpu.Stage][]string),
		Uniforms: make(map[gpu.ProgramID]map[string]any),
		live:     make(map[string]map[uint32]bool),
		bound:    make(map[gpu.BufferTarget]gpu.Buffer),
		textures: make(map[int]gpu.Texture),
		storage:  make(map[gpu.Buffer]int),
		attribs:  make(map[gpu.VertexArray]map[int]*Attrib),
		names:    make(map[gpu.ProgramID]map[string]int),
		rev:      make(map[gpu.ProgramID]map[int]string),
	}
}

var _ gpu.Device = (*Recorder)(nil)

func (r *Recorder) create(kind string) uint32 {
	r.next++
	if r.live[kind] == nil {
		r.live[kind] = make(map[uint32]bool)
	}
	r.live[kind][r.next] = true
	return r.next
}

func (r *Recorder) release(kind string, id uint32) {
	if !r.live[kind][id] {
		panic(fmt.Sprintf("gputest: delete of unknown %s %d", kind, id))
	}
	delete(r.live[kind], id)
}

// Live returns the number of undeleted objects of every kind.
func (r *Recorder) Live() int {
	n := 0
	for _, m := range r.live {
		n += len(m)
	}
	return n
}

// Reset forgets recorded uploads and draws, keeping object state.
func (r *Recorder) Reset() {
	r.Uploads = nil
	r.TextureUploads = 0
	r.Draws = nil
}

// StorageSize returns the byte size of the last upload to b.
func (r *Recorder) StorageSize(b gpu.Buffer) int {
	return r.storage[b]
}

// AttribState returns the recorded layout of the named input of program p
// within vertex array vao.
func (r *Recorder) AttribState(vao gpu.VertexArray, p gpu.ProgramID, name string) (Attrib, bool) {
	loc, ok := r.names[p][name]
	if !ok {
		return Attrib{}, false
	}
	a, ok := r.attribs[vao][loc]
	if !ok {
		return Attrib{}, false
	}
	return *a, true
}

func (r *Recorder) CreateBuffer() gpu.Buffer { return gpu.Buffer(r.create("buffer")) }

func (r *Recorder) DeleteBuffer(b gpu.Buffer) { r.release("buffer", uint32(b)) }

func (r *Recorder) BindBuffer(t gpu.BufferTarget, b gpu.Buffer) { r.bound[t] = b }

func (r *Recorder) BufferData(t gpu.BufferTarget, data []byte) error {
	if r.FailUploads {
		return gpu.ErrOutOfMemory
	}
	b := r.bound[t]
	r.Uploads = append(r.Uploads, Upload{Buffer: b, Target: t, Bytes: len(data)})
	r.storage[b] = len(data)
	return nil
}

func (r *Recorder) CreateVertexArray() gpu.VertexArray {
	return gpu.VertexArray(r.create("vertex array"))
}

func (r *Recorder) DeleteVertexArray(v gpu.VertexArray) {
	r.release("vertex array", uint32(v))
	delete(r.attribs, v)
}

func (r *Recorder) BindVertexArray(v gpu.VertexArray) { r.vao = v }

func (r *Recorder) attrib(loc int) *Attrib {
	if r.attribs[r.vao] == nil {
		r.attribs[r.vao] = make(map[int]*Attrib)
	}
	a := r.attribs[r.vao][loc]
	if a == nil {
		a = &Attrib{}
		r.attribs[r.vao][loc] = a
	}
	return a
}

func (r *Recorder) VertexAttribPointer(loc, components int, typ gpu.AttribType, normalized bool, stride, offset int) {
	a := r.attrib(loc)
	a.Buffer = r.bound[gpu.ArrayBuffer]
	a.Components, a.Type, a.Normalized = components, typ, normalized
	a.Stride, a.Offset = stride, offset
}

func (r *Recorder) VertexAttribDivisor(loc, divisor int) { r.attrib(loc).Divisor = divisor }

func (r *Recorder) CreateTexture() gpu.Texture { return gpu.Texture(r.create("texture")) }

func (r *Recorder) DeleteTexture(t gpu.Texture) { r.release("texture", uint32(t)) }

func (r *Recorder) TexImage1D(_ gpu.Texture, _ []byte) error {
	if r.FailUploads {
		return gpu.ErrOutOfMemory
	}
	r.TextureUploads++
	return nil
}

func (r *Recorder) BindTexture1D(unit int, t gpu.Texture) { r.textures[unit] = t }

func (r *Recorder) CompileShader(stage gpu.Stage, source string) (gpu.Shader, error) {
	if r.FailStage != nil && *r.FailStage == stage {
		return 0, fmt.Errorf("%w: 0:1: syntax error", gpu.ErrCompile)
	}
	r.Sources[stage] = append(r.Sources[stage], source)
	return gpu.Shader(r.create("shader")), nil
}

func (r *Recorder) DeleteShader(s gpu.Shader) { r.release("shader", uint32(s)) }

func (r *Recorder) LinkProgram(shaders ...gpu.Shader) (gpu.ProgramID, error) {
	if r.FailLink {
		return 0, fmt.Errorf("%w: unresolved varying", gpu.ErrLink)
	}
	p := gpu.ProgramID(r.create("program"))
	r.names[p] = make(map[string]int)
	r.rev[p] = make(map[int]string)
	r.Uniforms[p] = make(map[string]any)
	return p, nil
}

func (r *Recorder) DeleteProgram(p gpu.ProgramID) { r.release("program", uint32(p)) }

func (r *Recorder) UseProgram(p gpu.ProgramID) { r.program = p }

// location hands out stable per-program locations for any name, as if every
// input and uniform were active.
func (r *Recorder) location(p gpu.ProgramID, name string) int {
	names := r.names[p]
	if names == nil {
		return -1
	}
	if loc, ok := names[name]; ok {
		return loc
	}
	loc := len(names)
	names[name] = loc
	r.rev[p][loc] = name
	return loc
}

func (r *Recorder) AttribLocation(p gpu.ProgramID, name string) int { return r.location(p, name) }

func (r *Recorder) UniformLocation(p gpu.ProgramID, name string) int { return r.location(p, name) }

func (r *Recorder) setUniform(loc int, v any) {
	if name, ok := r.rev[r.program][loc]; ok {
		r.Uniforms[r.program][name] = v
	}
}

func (r *Recorder) Uniform1i(loc int, v int32)            { r.setUniform(loc, v) }
func (r *Recorder) Uniform1f(loc int, v float32)          { r.setUniform(loc, v) }
func (r *Recorder) Uniform2f(loc int, v [2]float32)       { r.setUniform(loc, v) }
func (r *Recorder) Uniform3f(loc int, v [3]float32)       { r.setUniform(loc, v) }
func (r *Recorder) Uniform4f(loc int, v [4]float32)       { r.setUniform(loc, v) }
func (r *Recorder) UniformMatrix4(loc int, m [16]float32) { r.setUniform(loc, m) }
func (r *Recorder) PatchVertices(n int)                   { r.patch = n }

func (r *Recorder) draw(c DrawCall) {
	c.Program = r.program
	if c.Mode == gpu.Patches {
		c.PatchVertices = r.patch
	}
	c.Textures = make(map[int]gpu.Texture, len(r.textures))
	for u, t := range r.textures {
		c.Textures[u] = t
	}
	r.Draws = append(r.Draws, c)
}

func (r *Recorder) DrawArrays(mode gpu.Primitive, first, count int) {
	r.draw(DrawCall{Mode: mode, First: first, Count: count, Instances: 1})
}

func (r *Recorder) DrawArraysInstanced(mode gpu.Primitive, first, count, instances int) {
	r.draw(DrawCall{Mode: mode, First: first, Count: count, Instances: instances})
}

func (r *Recorder) DrawElementsInstanced(mode gpu.Primitive, count, instances int) {
	r.draw(DrawCall{Mode: mode, Indexed: true, Count: count, Instances: instances})
}

// SourcesContaining returns the recorded sources of stage that contain
// every fragment.
func (r *Recorder) SourcesContaining(stage gpu.Stage, fragments ...string) []string {
	return slices.DeleteFunc(slices.Clone(r.Sources[stage]), func(src string) bool {
		for _, f := range fragments {
			if !strings.Contains(src, f) {
				return true
			}
		}
		return false
	})
}
