package render

import (
	"math"
	"testing"

	"github.com/taigrr/glprim/pkg/batch"
	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/gpu/gputest"
	"github.com/taigrr/glprim/pkg/impostor"
	"github.com/taigrr/glprim/pkg/math3d"
	"github.com/taigrr/glprim/pkg/patch"
)

var background = colors.RGB(30, 30, 40)

// The odd size puts the centre of the middle pixel on the view axis.
const testSize = 65

func newTestRasterizer() (*Rasterizer, *Camera) {
	fb := NewFramebuffer(testSize, testSize)
	fb.Clear(background)
	return NewRasterizer(fb), NewCamera()
}

func TestEdgeCoeffs(t *testing.T) {
	a, b, c := edgeCoeffs(0, 0, 1, 0)
	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"on edge", 0.5, 0, 0},
		{"left side", 0, 1, 1},
		{"right side", 0, -2, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a*tt.x + b*tt.y + c; math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("edge(%v,%v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestSphereImpostorCoverage(t *testing.T) {
	r, cam := newTestRasterizer()
	s, err := batch.NewSpheres(gputest.New())
	if err != nil {
		t.Fatal(err)
	}
	s.Append(geom.Sphere{Center: math3d.Zero3(), Radius: 1})
	r.DrawSpheres(cam, s)

	mid := testSize / 2
	if got := r.fb.GetPixel(mid, mid); got != colors.White {
		t.Errorf("centre pixel = %v, want unlit white", got)
	}
	want := impostor.WindowDepth(cam.ProjectionView(), math3d.V3(0, 0, 1))
	if got := r.fb.DepthAt(mid, mid); math.Abs(got-want) > 1e-6 {
		t.Errorf("centre depth = %v, want analytic %v", got, want)
	}

	// The silhouette spans about 16 pixels from the centre.
	covered := []struct{ x, y int }{{mid + 10, mid}, {mid, mid - 10}, {mid - 7, mid + 7}}
	for _, p := range covered {
		if r.fb.GetPixel(p.x, p.y) == background {
			t.Errorf("pixel %v inside the silhouette not drawn", p)
		}
	}
	empty := []struct{ x, y int }{{0, 0}, {mid + 20, mid}, {mid, mid + 20}, {mid + 14, mid + 14}}
	for _, p := range empty {
		if got := r.fb.GetPixel(p.x, p.y); got != background {
			t.Errorf("pixel %v outside the silhouette = %v", p, got)
		}
		if r.fb.DepthAt(p.x, p.y) != 1 {
			t.Errorf("pixel %v outside the silhouette wrote depth", p)
		}
	}
}

func TestSphereLighting(t *testing.T) {
	r, cam := newTestRasterizer()
	s, err := batch.NewSpheres(gputest.New())
	if err != nil {
		t.Fatal(err)
	}
	s.SetColor(colors.RGB(200, 200, 200))
	s.Append(geom.Sphere{Radius: 1})
	s.SetLight(math3d.V3(0, 0, 1), 1)
	r.DrawSpheres(cam, s)

	mid := testSize / 2
	if got := r.fb.GetPixel(mid, mid); got != colors.RGB(200, 200, 200) {
		t.Errorf("centre facing the light = %v, want full albedo", got)
	}
	edge := r.fb.GetPixel(mid+14, mid)
	if edge == background || edge.R >= 200 {
		t.Errorf("grazing pixel = %v, want darker than albedo", edge)
	}
}

func TestCylinderImpostor(t *testing.T) {
	r, cam := newTestRasterizer()
	c, err := batch.NewCylinders(gputest.New())
	if err != nil {
		t.Fatal(err)
	}
	c.SetColor(colors.Red)
	c.Append(geom.Cylinder{
		A: geom.Sphere{Center: math3d.V3(-1.5, 0, 0), Radius: 0.3},
		B: geom.Sphere{Center: math3d.V3(1.5, 0, 0), Radius: 0.3},
	})
	r.DrawCylinders(cam, c)

	mid := testSize / 2
	if got := r.fb.GetPixel(mid, mid); got != colors.Red {
		t.Errorf("centre pixel = %v, want red", got)
	}
	want := impostor.WindowDepth(cam.ProjectionView(), math3d.V3(0, 0, 0.3))
	if got := r.fb.DepthAt(mid, mid); math.Abs(got-want) > 1e-6 {
		t.Errorf("centre depth = %v, want %v", got, want)
	}
	if got := r.fb.GetPixel(mid, mid-12); got != background {
		t.Errorf("pixel above the cylinder = %v", got)
	}
}

func TestTrianglesAndOcclusion(t *testing.T) {
	r, cam := newTestRasterizer()
	dev := gputest.New()
	tr, err := batch.NewTriangles(dev)
	if err != nil {
		t.Fatal(err)
	}
	s, err := batch.NewSpheres(dev)
	if err != nil {
		t.Fatal(err)
	}

	// A large clockwise triangle behind the sphere.
	tr.SetColor(colors.Green)
	tr.Append(geom.Tri(math3d.V3(-5, -5, -2), math3d.V3(0, 5, -2), math3d.V3(5, -5, -2)))
	s.Append(geom.Sphere{Radius: 1})

	// Draw the sphere first so the triangle has to lose the depth test.
	r.DrawSpheres(cam, s)
	r.DrawTriangles(cam, tr)

	mid := testSize / 2
	if got := r.fb.GetPixel(mid, mid); got != colors.White {
		t.Errorf("occluded centre = %v, want the sphere", got)
	}
	if got := r.fb.GetPixel(mid, mid+20); got != colors.Green {
		t.Errorf("triangle pixel = %v, want green", got)
	}
	// The pixel ray meets the plane z=-2 at distance 7 from the eye.
	ndcY := 1 - 2*(float64(mid+20)+0.5)/testSize
	hit := math3d.V3(0, ndcY*7*math.Tan(cam.FOV/2), -2)
	want := impostor.WindowDepth(cam.ProjectionView(), hit)
	if got := r.fb.DepthAt(mid, mid+20); got <= r.fb.DepthAt(mid, mid) || math.Abs(got-want) > 1e-6 {
		t.Errorf("triangle depth = %v, want %v behind the sphere", got, want)
	}
}

func TestPatchPalette(t *testing.T) {
	r, cam := newTestRasterizer()
	p, err := batch.NewPatches(gputest.New())
	if err != nil {
		t.Fatal(err)
	}
	p.SetPalette([]colors.Color{colors.Black, colors.White})
	p.SetValueBounds(0, 1)
	quad := geom.Patch{Topology: patch.Quad4, Points: []math3d.Vec3{
		math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0),
	}}
	if err := p.AppendValues(quad, []float64{0, 0, 1, 1}); err != nil {
		t.Fatal(err)
	}
	r.DrawPatches(cam, p)

	mid := testSize / 2
	centre := r.fb.GetPixel(mid, mid)
	if math.Abs(float64(centre.R)-128) > 2 {
		t.Errorf("centre = %v, want mid grey", centre)
	}
	top, bottom := r.fb.GetPixel(mid, mid-10), r.fb.GetPixel(mid, mid+10)
	if top.R <= centre.R || bottom.R >= centre.R {
		t.Errorf("value gradient wrong: top %v centre %v bottom %v", top, centre, bottom)
	}

	p.Posterization(1)
	r.fb.Clear(background)
	r.DrawPatches(cam, p)
	if got := r.fb.GetPixel(mid, mid-10); got != colors.White {
		t.Errorf("posterized top = %v, want white", got)
	}
	if got := r.fb.GetPixel(mid, mid+10); got != colors.Black {
		t.Errorf("posterized bottom = %v, want black", got)
	}
}

func TestPatchVertexColors(t *testing.T) {
	r, cam := newTestRasterizer()
	p, err := batch.NewPatches(gputest.New())
	if err != nil {
		t.Fatal(err)
	}
	nodes := patch.Tri6.Nodes()
	pts := make([]math3d.Vec3, len(nodes))
	cs := make([]colors.Color, len(nodes))
	for i, n := range nodes {
		pts[i] = math3d.V3(2*n.X-0.5, 2*n.Y-0.5, 0)
		cs[i] = colors.Blue
	}
	if err := p.AppendColored(geom.Patch{Topology: patch.Tri6, Points: pts}, cs); err != nil {
		t.Fatal(err)
	}
	r.DrawPatches(cam, p)
	if got := r.fb.GetPixel(testSize/2, testSize/2); got != colors.Blue {
		t.Errorf("inside pixel = %v, want blue", got)
	}
}

func TestCullingStats(t *testing.T) {
	r, cam := newTestRasterizer()
	s, err := batch.NewSpheres(gputest.New())
	if err != nil {
		t.Fatal(err)
	}
	s.AppendMany([]geom.Sphere{
		{Center: math3d.Zero3(), Radius: 1},
		{Center: math3d.V3(0, 0, 20), Radius: 1},
		{Center: math3d.V3(100, 0, 0), Radius: 1},
	})
	r.ResetStats()
	r.DrawSpheres(cam, s)
	if r.Stats != (Stats{Tested: 3, Culled: 2, Drawn: 1}) {
		t.Errorf("stats = %+v", r.Stats)
	}
}

func TestWeightedColorClamps(t *testing.T) {
	got := weightedColor([]float64{1.5, -0.5}, []colors.Color{colors.White, colors.White})
	if got != colors.White {
		t.Errorf("weights summing to one = %v, want white", got)
	}
	got = weightedColor([]float64{-0.5, 1.5}, []colors.Color{colors.White, colors.Black})
	if got != colors.Black {
		t.Errorf("negative result = %v, want channels clamped to zero", got)
	}
}

func BenchmarkDrawSpheres(b *testing.B) {
	fb := NewFramebuffer(160, 90)
	r := NewRasterizer(fb)
	cam := NewCamera()
	cam.SetViewport(160, 90)
	s, err := batch.NewSpheres(gputest.New())
	if err != nil {
		b.Fatal(err)
	}
	for i := range 20 {
		s.Append(geom.Sphere{Center: math3d.V3(float64(i%5)-2, float64(i/5)-2, 0), Radius: 0.4})
	}
	for b.Loop() {
		fb.Clear(background)
		r.DrawSpheres(cam, s)
	}
}
