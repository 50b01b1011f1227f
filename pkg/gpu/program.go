package gpu

import (
	"fmt"

	"github.com/taigrr/glprim/pkg/math3d"
)

// Source is one stage of a program.
type Source struct {
	Stage Stage
	Code  string
}

// Program is a linked shader program with cached attribute and uniform
// locations.
type Program struct {
	dev      Device
	id       ProgramID
	attribs  map[string]int
	uniforms map[string]int
}

// NewProgram compiles every stage and links them. name identifies the
// program in errors, which also name the failing stage and wrap ErrCompile
// or ErrLink.
func NewProgram(dev Device, name string, sources ...Source) (*Program, error) {
	shaders := make([]Shader, 0, len(sources))
	defer func() {
		for _, s := range shaders {
			dev.DeleteShader(s)
		}
	}()

	for _, src := range sources {
		s, err := dev.CompileShader(src.Stage, src.Code)
		if err != nil {
			return nil, fmt.Errorf("compile %s shader for %s: %w", src.Stage, name, err)
		}
		shaders = append(shaders, s)
	}

	id, err := dev.LinkProgram(shaders...)
	if err != nil {
		return nil, fmt.Errorf("link program for %s: %w", name, err)
	}
	return &Program{
		dev:      dev,
		id:       id,
		attribs:  make(map[string]int),
		uniforms: make(map[string]int),
	}, nil
}

// ID returns the device handle.
func (p *Program) ID() ProgramID {
	return p.id
}

// Use makes p the current program.
func (p *Program) Use() {
	p.dev.UseProgram(p.id)
}

// Delete releases the program. It is safe to call more than once.
func (p *Program) Delete() {
	if p.id != 0 {
		p.dev.DeleteProgram(p.id)
		p.id = 0
	}
}

// Attrib returns the location of a vertex input, or -1.
func (p *Program) Attrib(name string) int {
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	loc := p.dev.AttribLocation(p.id, name)
	p.attribs[name] = loc
	return loc
}

// Uniform returns the location of a uniform, or -1.
func (p *Program) Uniform(name string) int {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.id, name)
	p.uniforms[name] = loc
	return loc
}

// SetAttribute describes a vertex input inside the currently bound array
// buffer. Inputs the linker optimized away are ignored; the return value
// reports whether the input exists.
func (p *Program) SetAttribute(name string, components int, typ AttribType, normalized bool, stride, offset int) bool {
	loc := p.Attrib(name)
	if loc < 0 {
		return false
	}
	p.dev.VertexAttribPointer(loc, components, typ, normalized, stride, offset)
	return true
}

// SetDivisor sets the instancing rate of a vertex input.
func (p *Program) SetDivisor(name string, divisor int) bool {
	loc := p.Attrib(name)
	if loc < 0 {
		return false
	}
	p.dev.VertexAttribDivisor(loc, divisor)
	return true
}

// SetUniform uploads a value to the named uniform of the current program.
// Supported types are int, int32, bool, float32, float64, [2]float32,
// [3]float32, [4]float32, math3d.Vec3, math3d.Mat4 and [16]float32.
// Unknown uniforms are ignored.
func (p *Program) SetUniform(name string, value any) error {
	loc := p.Uniform(name)
	if loc < 0 {
		return nil
	}
	switch v := value.(type) {
	case int:
		p.dev.Uniform1i(loc, int32(v))
	case int32:
		p.dev.Uniform1i(loc, v)
	case bool:
		var i int32
		if v {
			i = 1
		}
		p.dev.Uniform1i(loc, i)
	case float32:
		p.dev.Uniform1f(loc, v)
	case float64:
		p.dev.Uniform1f(loc, float32(v))
	case [2]float32:
		p.dev.Uniform2f(loc, v)
	case [3]float32:
		p.dev.Uniform3f(loc, v)
	case [4]float32:
		p.dev.Uniform4f(loc, v)
	case math3d.Vec3:
		p.dev.Uniform3f(loc, v.F32())
	case math3d.Mat4:
		p.dev.UniformMatrix4(loc, v.F32())
	case [16]float32:
		p.dev.UniformMatrix4(loc, v)
	default:
		return fmt.Errorf("set uniform %s: unsupported type %T", name, value)
	}
	return nil
}
