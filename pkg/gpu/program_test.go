package gpu_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/taigrr/glprim/pkg/gpu"
	"github.com/taigrr/glprim/pkg/gpu/gputest"
	"github.com/taigrr/glprim/pkg/math3d"
)

func sources() []gpu.Source {
	return []gpu.Source{
		{Stage: gpu.VertexStage, Code: "void main() {}"},
		{Stage: gpu.FragmentStage, Code: "void main() {}"},
	}
}

func TestNewProgram(t *testing.T) {
	rec := gputest.New()
	p, err := gpu.NewProgram(rec, "test", sources()...)
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	// Shaders are detached and deleted once linked; only the program lives.
	if got := rec.Live(); got != 1 {
		t.Errorf("live objects = %d, want 1", got)
	}
	p.Delete()
	p.Delete()
	if got := rec.Live(); got != 0 {
		t.Errorf("live objects after Delete = %d, want 0", got)
	}
}

func TestNewProgramCompileError(t *testing.T) {
	rec := gputest.New()
	stage := gpu.FragmentStage
	rec.FailStage = &stage

	_, err := gpu.NewProgram(rec, "test", sources()...)
	if !errors.Is(err, gpu.ErrCompile) {
		t.Fatalf("err = %v, want ErrCompile", err)
	}
	if !strings.Contains(err.Error(), "compile fragment shader for test") {
		t.Errorf("err = %q, want it to name the fragment stage", err)
	}
	if got := rec.Live(); got != 0 {
		t.Errorf("live objects = %d, want the vertex shader cleaned up", got)
	}
}

func TestNewProgramLinkError(t *testing.T) {
	rec := gputest.New()
	rec.FailLink = true
	if _, err := gpu.NewProgram(rec, "test", sources()...); !errors.Is(err, gpu.ErrLink) {
		t.Fatalf("err = %v, want ErrLink", err)
	}
}

func TestSetUniform(t *testing.T) {
	rec := gputest.New()
	p, err := gpu.NewProgram(rec, "test", sources()...)
	if err != nil {
		t.Fatal(err)
	}
	p.Use()

	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"level", 3, int32(3)},
		{"lit", true, int32(1)},
		{"width", 0.5, float32(0.5)},
		{"eye", math3d.V3(1, 2, 3), [3]float32{1, 2, 3}},
		{"light", [4]float32{0, 0, 1, 0.5}, [4]float32{0, 0, 1, 0.5}},
		{"projection_view", math3d.Identity(), math3d.Identity().F32()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.SetUniform(tt.name, tt.value); err != nil {
				t.Fatalf("SetUniform: %v", err)
			}
			if got := rec.Uniforms[p.ID()][tt.name]; got != tt.want {
				t.Errorf("uniform = %#v, want %#v", got, tt.want)
			}
		})
	}

	if err := p.SetUniform("bad", "string"); err == nil {
		t.Error("SetUniform(string) should fail")
	}
}

func TestBytes(t *testing.T) {
	type rec struct{ A, B float32 }
	b := gpu.Bytes([]rec{{1, 2}, {3, 4}, {5, 6}})
	if len(b) != 24 {
		t.Errorf("len = %d, want 24", len(b))
	}
	if gpu.Bytes[rec](nil) != nil {
		t.Error("Bytes(nil) should be nil")
	}
}

func TestHeadlessProgram(t *testing.T) {
	dev := &gpu.Headless{}
	p, err := gpu.NewProgram(dev, "test", sources()...)
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	if p.ID() == 0 {
		t.Error("program handle is zero")
	}
	if p.SetAttribute("position", 3, gpu.Float32, false, 12, 0) {
		t.Error("headless device reported a live attribute")
	}
	if err := p.SetUniform("color", [4]float32{1, 1, 1, 1}); err != nil {
		t.Errorf("SetUniform: %v", err)
	}
	if a, b := dev.CreateBuffer(), dev.CreateBuffer(); a == 0 || a == b {
		t.Errorf("buffer handles %d and %d not distinct and non-zero", a, b)
	}
}
