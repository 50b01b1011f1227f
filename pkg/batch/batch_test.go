package batch

import (
	"errors"
	"strings"
	"testing"
	"unsafe"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/gpu"
	"github.com/taigrr/glprim/pkg/gpu/gputest"
	"github.com/taigrr/glprim/pkg/math3d"
)

type fixedCamera struct{}

func (fixedCamera) ProjectionView() math3d.Mat4 { return math3d.Identity() }
func (fixedCamera) Eye() math3d.Vec3            { return math3d.V3(0, 0, 5) }
func (fixedCamera) Up() math3d.Vec3             { return math3d.V3(0, 1, 0) }

func sphere(x float64) geom.Sphere {
	return geom.Sphere{Center: math3d.V3(x, 0, 0), Radius: 0.5}
}

func cylinder(x float64) geom.Cylinder {
	return geom.Cylinder{
		A: geom.Sphere{Center: math3d.V3(x, 0, 0), Radius: 0.1},
		B: geom.Sphere{Center: math3d.V3(x, 1, 0), Radius: 0.2},
	}
}

func uploadsTo(rec *gputest.Recorder, b gpu.Buffer) int {
	n := 0
	for _, u := range rec.Uploads {
		if u.Buffer == b {
			n++
		}
	}
	return n
}

func newSpheres(t *testing.T) (*Spheres, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	s, err := NewSpheres(rec)
	if err != nil {
		t.Fatalf("NewSpheres: %v", err)
	}
	rec.Reset()
	return s, rec
}

func TestDirtyTracking(t *testing.T) {
	s, _ := newSpheres(t)
	if s.Dirty() {
		t.Fatal("new batch should not be dirty")
	}

	steps := []struct {
		name  string
		do    func()
		dirty bool
	}{
		{"append", func() { s.Append(sphere(0)) }, true},
		{"draw", func() { _ = s.Draw(fixedCamera{}) }, false},
		{"set color", func() { s.SetColor(colors.Red) }, false},
		{"set light", func() { s.SetLight(math3d.UnitZ(), 0.5) }, false},
		{"append many", func() { s.AppendMany([]geom.Sphere{sphere(1), sphere(2)}) }, true},
		{"redraw", func() { _ = s.Draw(fixedCamera{}) }, false},
		{"clear", func() { s.Clear() }, true},
		{"draw empty", func() { _ = s.Draw(fixedCamera{}) }, false},
	}
	for _, step := range steps {
		step.do()
		if got := s.Dirty(); got != step.dirty {
			t.Fatalf("after %s: Dirty() = %v, want %v", step.name, got, step.dirty)
		}
	}
}

func TestUploadOncePerChange(t *testing.T) {
	s, rec := newSpheres(t)
	s.AppendMany([]geom.Sphere{sphere(0), sphere(1), sphere(2)})

	for range 3 {
		if err := s.Draw(fixedCamera{}); err != nil {
			t.Fatalf("Draw: %v", err)
		}
	}
	if got := uploadsTo(rec, s.im.instances); got != 1 {
		t.Errorf("instance uploads = %d, want 1", got)
	}
	if got := uploadsTo(rec, s.im.colors); got != 1 {
		t.Errorf("color uploads = %d, want 1", got)
	}
	if got := rec.StorageSize(s.im.instances); got != 3*16 {
		t.Errorf("instance storage = %d bytes, want %d", got, 3*16)
	}
	if got := rec.StorageSize(s.im.colors); got != 3*4 {
		t.Errorf("color storage = %d bytes, want %d", got, 3*4)
	}

	if len(rec.Draws) != 3 {
		t.Fatalf("draws = %d, want 3", len(rec.Draws))
	}
	d := rec.Draws[0]
	if !d.Indexed || d.Mode != gpu.Triangles || d.Count != 36 || d.Instances != 3 {
		t.Errorf("draw = %+v, want indexed triangles, 36 indices, 3 instances", d)
	}

	s.Append(sphere(3))
	if err := s.Draw(fixedCamera{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := uploadsTo(rec, s.im.instances); got != 2 {
		t.Errorf("instance uploads after append = %d, want 2", got)
	}
	if got := rec.StorageSize(s.im.instances); got != 4*16 {
		t.Errorf("instance storage = %d bytes, want %d", got, 4*16)
	}
}

func TestEmptyBatchDrawsNothing(t *testing.T) {
	s, rec := newSpheres(t)
	if err := s.Draw(fixedCamera{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	s.Append(sphere(0))
	s.Clear()
	if err := s.Draw(fixedCamera{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(rec.Draws) != 0 {
		t.Errorf("draws = %d, want 0", len(rec.Draws))
	}
	if got := rec.StorageSize(s.im.instances); got != 0 {
		t.Errorf("instance storage = %d bytes after clear, want 0", got)
	}
}

func TestAppendColoredLengthMismatch(t *testing.T) {
	s, _ := newSpheres(t)
	err := s.AppendColored([]geom.Sphere{sphere(0), sphere(1)}, []colors.Color{colors.Red})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("AppendColored error = %v, want ErrLengthMismatch", err)
	}
	if s.Size() != 0 || s.Dirty() {
		t.Errorf("failed append mutated batch: size %d, dirty %v", s.Size(), s.Dirty())
	}
}

func TestDefaultColor(t *testing.T) {
	s, _ := newSpheres(t)
	s.Append(sphere(0))
	s.SetColor(colors.Blue)
	s.AppendMany([]geom.Sphere{sphere(1), sphere(2)})
	if err := s.AppendColored([]geom.Sphere{sphere(3)}, []colors.Color{colors.Green}); err != nil {
		t.Fatal(err)
	}

	want := []colors.Color{colors.White, colors.Blue, colors.Blue, colors.Green}
	got := s.Colors()
	if len(got) != len(want) {
		t.Fatalf("colors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("color[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUploadFailureKeepsDirty(t *testing.T) {
	s, rec := newSpheres(t)
	s.Append(sphere(0))

	rec.FailUploads = true
	err := s.Draw(fixedCamera{})
	if !errors.Is(err, gpu.ErrOutOfMemory) {
		t.Fatalf("Draw error = %v, want ErrOutOfMemory", err)
	}
	if !s.Dirty() {
		t.Error("batch should stay dirty after a failed upload")
	}
	if len(rec.Draws) != 0 {
		t.Errorf("draws = %d after failed upload, want 0", len(rec.Draws))
	}

	rec.FailUploads = false
	if err := s.Draw(fixedCamera{}); err != nil {
		t.Fatalf("Draw after recovery: %v", err)
	}
	if s.Dirty() || len(rec.Draws) != 1 {
		t.Errorf("after recovery: dirty %v, draws %d", s.Dirty(), len(rec.Draws))
	}
}

func TestInconsistentBatchSkipsDraw(t *testing.T) {
	s, rec := newSpheres(t)
	s.AppendMany([]geom.Sphere{sphere(0), sphere(1)})
	s.colors = s.colors[:1]

	if err := s.Draw(fixedCamera{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if len(rec.Uploads) != 0 || len(rec.Draws) != 0 {
		t.Errorf("inconsistent batch uploaded %d buffers and drew %d times", len(rec.Uploads), len(rec.Draws))
	}
	if !s.Dirty() {
		t.Error("skipped batch should stay dirty")
	}
}

func TestCompileErrorNamesBatch(t *testing.T) {
	tests := []struct {
		name  string
		stage gpu.Stage
		build func(gpu.Device) error
		want  string
	}{
		{
			name:  "spheres",
			stage: gpu.FragmentStage,
			build: func(d gpu.Device) error { _, err := NewSpheres(d); return err },
			want:  "compile fragment shader for spheres",
		},
		{
			name:  "cylinders",
			stage: gpu.VertexStage,
			build: func(d gpu.Device) error { _, err := NewCylinders(d); return err },
			want:  "compile vertex shader for cylinders",
		},
		{
			name:  "triangles",
			stage: gpu.FragmentStage,
			build: func(d gpu.Device) error { _, err := NewTriangles(d); return err },
			want:  "compile fragment shader for triangles",
		},
		{
			name:  "patches",
			stage: gpu.TessEvalStage,
			build: func(d gpu.Device) error { _, err := NewPatches(d); return err },
			want:  "compile tessellation evaluation shader for patches",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gputest.New()
			rec.FailStage = &tt.stage
			err := tt.build(rec)
			if !errors.Is(err, gpu.ErrCompile) {
				t.Fatalf("error = %v, want ErrCompile", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
			if n := rec.Live(); n != 0 {
				t.Errorf("%d objects leaked by failed construction", n)
			}
		})
	}
}

func TestRelease(t *testing.T) {
	rec := gputest.New()
	s, err := NewSpheres(rec)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewCylinders(rec)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := NewTriangles(rec)
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPatches(rec)
	if err != nil {
		t.Fatal(err)
	}

	type drawer interface {
		Draw(Camera) error
		Release()
	}
	for _, b := range []drawer{s, c, tr, p} {
		b.Release()
		b.Release()
		if err := b.Draw(fixedCamera{}); !errors.Is(err, ErrReleased) {
			t.Errorf("%T.Draw after Release = %v, want ErrReleased", b, err)
		}
	}
	if n := rec.Live(); n != 0 {
		t.Errorf("%d objects still live after Release", n)
	}
}

func TestRecordLayout(t *testing.T) {
	tests := []struct {
		name   string
		size   uintptr
		stream stream
	}{
		{"proxy", unsafe.Sizeof(proxyVertex{}), proxyStream},
		{"sphere", unsafe.Sizeof(sphereRecord{}), sphereStream},
		{"cylinder", unsafe.Sizeof(cylinderRecord{}), cylinderStream},
		{"triangle", unsafe.Sizeof(triangleVertex{}), triangleStream},
		{"patch", unsafe.Sizeof(patchVertex{}), patchStream},
		{"color", unsafe.Sizeof(colors.Color{}), vertexColorStream},
		{"value", unsafe.Sizeof(float32(0)), patchValueStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if int(tt.size) != tt.stream.stride {
				t.Errorf("record size %d, stream stride %d", tt.size, tt.stream.stride)
			}
		})
	}

	if off := unsafe.Offsetof(cylinderRecord{}.End); int(off) != cylinderStream.attribs[1].offset {
		t.Errorf("cyl_end offset %d, stream says %d", off, cylinderStream.attribs[1].offset)
	}
	if off := unsafe.Offsetof(triangleVertex{}.Normal); int(off) != triangleStream.attribs[1].offset {
		t.Errorf("normal offset %d, stream says %d", off, triangleStream.attribs[1].offset)
	}
}

func TestInstanceAttributes(t *testing.T) {
	rec := gputest.New()
	c, err := NewCylinders(rec)
	if err != nil {
		t.Fatal(err)
	}
	im := c.im
	tests := []struct {
		name   string
		buffer gpu.Buffer
		want   gputest.Attrib
	}{
		{"cyl_start", im.instances, gputest.Attrib{Components: 4, Type: gpu.Float32, Stride: 32, Divisor: 1}},
		{"cyl_end", im.instances, gputest.Attrib{Components: 4, Type: gpu.Float32, Stride: 32, Offset: 16, Divisor: 1}},
		{"color", im.colors, gputest.Attrib{Components: 4, Type: gpu.Uint8, Normalized: true, Stride: 4, Divisor: 1}},
		{"position", 0, gputest.Attrib{Components: 3, Type: gpu.Float32, Stride: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rec.AttribState(im.vao, im.prog.ID(), tt.name)
			if !ok {
				t.Fatalf("input %q not bound", tt.name)
			}
			if tt.buffer != 0 && got.Buffer != tt.buffer {
				t.Errorf("buffer = %d, want %d", got.Buffer, tt.buffer)
			}
			got.Buffer = 0
			if got != tt.want {
				t.Errorf("attrib = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCylinderPacking(t *testing.T) {
	recs := packCylinders(nil, []geom.Cylinder{cylinder(2)})
	want := cylinderRecord{Start: [4]float32{2, 0, 0, 0.1}, End: [4]float32{2, 1, 0, 0.2}}
	if len(recs) != 1 || recs[0] != want {
		t.Errorf("packCylinders = %+v, want %+v", recs, want)
	}
}

func TestTriangles(t *testing.T) {
	rec := gputest.New()
	tr, err := NewTriangles(rec)
	if err != nil {
		t.Fatal(err)
	}
	tris := []geom.Triangle{
		geom.Tri(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)),
		geom.Tri(math3d.V3(0, 0, 1), math3d.V3(1, 0, 1), math3d.V3(0, 1, 1)),
	}
	if err := tr.AppendColored(tris, []colors.Color{colors.Red, colors.Blue}); err != nil {
		t.Fatal(err)
	}
	if err := tr.Draw(fixedCamera{}); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if got := rec.StorageSize(tr.vertices); got != 6*24 {
		t.Errorf("vertex storage = %d, want %d", got, 6*24)
	}
	if got := rec.StorageSize(tr.vcolors); got != 6*4 {
		t.Errorf("color storage = %d, want %d", got, 6*4)
	}
	if len(rec.Draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(rec.Draws))
	}
	if d := rec.Draws[0]; d.Indexed || d.Mode != gpu.Triangles || d.Count != 6 {
		t.Errorf("draw = %+v, want 6 non-indexed triangle vertices", d)
	}

	for i, v := range tr.packed {
		if v.Normal != [3]float32{0, 0, 1} {
			t.Errorf("vertex %d normal = %v, want +z", i, v.Normal)
		}
	}
	if tr.pcolors[2] != colors.Red || tr.pcolors[3] != colors.Blue {
		t.Errorf("colors not replicated per vertex: %v", tr.pcolors)
	}
}

func TestLightUniform(t *testing.T) {
	s, rec := newSpheres(t)
	s.Append(sphere(0))
	s.SetLight(math3d.V3(0, 0, 2), 0.25)
	if err := s.Draw(fixedCamera{}); err != nil {
		t.Fatal(err)
	}
	got := rec.Uniforms[s.im.prog.ID()]["light"]
	want := [4]float32{0, 0, 1, 0.25}
	if got != want {
		t.Errorf("light uniform = %v, want %v", got, want)
	}
	if rec.Uniforms[s.im.prog.ID()]["eye"] != [3]float32{0, 0, 5} {
		t.Errorf("eye uniform = %v", rec.Uniforms[s.im.prog.ID()]["eye"])
	}
}

// Edge antialiasing reads fwidth, which is undefined once fragments of a
// quad diverge, so it must come before the first branch or discard.
func TestImpostorDerivativesBeforeBranches(t *testing.T) {
	for _, stem := range []string{"sphere", "cylinder"} {
		t.Run(stem, func(t *testing.T) {
			src := shaderSource(nil, stem+".frag")
			body := src[strings.Index(src, "void main()"):]
			fw := strings.Index(body, "fwidth(")
			if fw < 0 {
				t.Fatal("no fwidth in fragment shader")
			}
			if n := strings.Count(body, "fwidth("); n != 1 {
				t.Errorf("fwidth called %d times, want 1", n)
			}
			for _, tok := range []string{"if (", "discard", "for ("} {
				if i := strings.Index(body, tok); i >= 0 && i < fw {
					t.Errorf("%q at %d precedes fwidth at %d", tok, i, fw)
				}
			}
		})
	}
}

func BenchmarkSphereUpload(b *testing.B) {
	rec := gputest.New()
	s, err := NewSpheres(rec)
	if err != nil {
		b.Fatal(err)
	}
	spheres := make([]geom.Sphere, 10000)
	for i := range spheres {
		spheres[i] = sphere(float64(i))
	}
	for b.Loop() {
		s.Clear()
		s.AppendMany(spheres)
		if err := s.Draw(fixedCamera{}); err != nil {
			b.Fatal(err)
		}
		rec.Reset()
	}
}
