package render

import (
	"math"

	"github.com/taigrr/glprim/pkg/batch"
	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/impostor"
	"github.com/taigrr/glprim/pkg/math3d"
	"github.com/taigrr/glprim/pkg/patch"
)

// Stats counts culling decisions since the last ResetStats.
type Stats struct {
	Tested int // primitives tested against the frustum
	Culled int // primitives outside the frustum
	Drawn  int // primitives rasterized
}

type gridKey struct {
	topology patch.Topology
	level    int
}

// Rasterizer draws batches into a Framebuffer. Impostors are ray cast per
// pixel with the same math the fragment shaders use; triangles and
// tessellated patches are scan converted with a depth test.
type Rasterizer struct {
	fb    *Framebuffer
	Stats Stats

	grids map[gridKey]patch.Grid

	// per-draw camera state
	pv      math3d.Mat4
	inv     math3d.Mat4
	eye     math3d.Vec3
	frustum Frustum
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	return &Rasterizer{fb: fb, grids: make(map[gridKey]patch.Grid)}
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// ResetStats zeroes the culling statistics (call once per frame).
func (r *Rasterizer) ResetStats() {
	r.Stats = Stats{}
}

func (r *Rasterizer) begin(cam batch.Camera) {
	r.pv = cam.ProjectionView()
	r.inv = r.pv.Inverse()
	r.eye = cam.Eye()
	r.frustum = NewFrustum(r.pv)
}

func (r *Rasterizer) visible(s geom.Sphere) bool {
	r.Stats.Tested++
	if !r.frustum.IntersectsSphere(s) {
		r.Stats.Culled++
		return false
	}
	r.Stats.Drawn++
	return true
}

// screenVertex is a projected point: pixel coordinates, window depth and
// 1/w for perspective-correct interpolation.
type screenVertex struct {
	X, Y, Z float64
	InvW    float64
}

func (r *Rasterizer) project(p math3d.Vec3) (screenVertex, bool) {
	clip := r.pv.MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 1e-9 {
		return screenVertex{}, false
	}
	ndc := clip.PerspectiveDivide()
	return screenVertex{
		X:    (ndc.X + 1) * 0.5 * float64(r.fb.Width),
		Y:    (1 - ndc.Y) * 0.5 * float64(r.fb.Height),
		Z:    0.5*ndc.Z + 0.5,
		InvW: 1 / clip.W,
	}, true
}

// pixelRay returns the eye ray through pixel coordinates (px, py).
func (r *Rasterizer) pixelRay(px, py float64) impostor.Ray {
	ndcX := 2*px/float64(r.fb.Width) - 1
	ndcY := 1 - 2*py/float64(r.fb.Height)
	far := r.inv.MulVec4(math3d.V4(ndcX, ndcY, 1, 1)).PerspectiveDivide()
	return impostor.RayTowards(r.eye, far)
}

// screenRect returns the clamped pixel rectangle covering the projection
// of s. When s reaches behind the eye the whole screen is returned.
func (r *Rasterizer) screenRect(s geom.Sphere) (x0, y0, x1, y1 int, ok bool) {
	w, h := r.fb.Width, r.fb.Height
	if w == 0 || h == 0 {
		return 0, 0, 0, 0, false
	}
	lo, hi := s.Bounds()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range 8 {
		corner := math3d.V3(
			pick(i&1 != 0, hi.X, lo.X),
			pick(i&2 != 0, hi.Y, lo.Y),
			pick(i&4 != 0, hi.Z, lo.Z),
		)
		sv, ok := r.project(corner)
		if !ok {
			return 0, 0, w - 1, h - 1, true
		}
		minX, maxX = min(minX, sv.X), max(maxX, sv.X)
		minY, maxY = min(minY, sv.Y), max(maxY, sv.Y)
	}
	x0 = max(0, int(math.Floor(minX)))
	y0 = max(0, int(math.Floor(minY)))
	x1 = min(w-1, int(math.Ceil(maxX)))
	y1 = min(h-1, int(math.Ceil(maxY)))
	return x0, y0, x1, y1, x0 <= x1 && y0 <= y1
}

// DrawSpheres ray casts every sphere of the batch. Silhouettes are
// antialiased from the screen-space change of the discriminant.
func (r *Rasterizer) DrawSpheres(cam batch.Camera, s *batch.Spheres) {
	items, cols := s.Instances(), s.Colors()
	if len(items) != len(cols) {
		return
	}
	r.begin(cam)
	light := s.Light()
	for i, sp := range items {
		if !r.visible(sp) {
			continue
		}
		x0, y0, x1, y1, ok := r.screenRect(sp)
		if !ok {
			continue
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				px, py := float64(x)+0.5, float64(y)+0.5
				ray := r.pixelRay(px, py)
				hit, ok := impostor.IntersectSphere(ray, sp)
				if !ok {
					continue
				}
				disc := impostor.SphereDiscriminant(ray, sp)
				fw := math.Abs(impostor.SphereDiscriminant(r.pixelRay(px+1, py), sp)-disc) +
					math.Abs(impostor.SphereDiscriminant(r.pixelRay(px, py+1), sp)-disc)
				r.fb.plot(x, y, impostor.WindowDepth(r.pv, hit.Point),
					light.Shade(cols[i], hit.Normal), impostor.EdgeAlpha(disc, fw))
			}
		}
	}
}

// DrawCylinders ray casts every cylinder of the batch: lateral surface and
// both caps.
func (r *Rasterizer) DrawCylinders(cam batch.Camera, c *batch.Cylinders) {
	items, cols := c.Instances(), c.Colors()
	if len(items) != len(cols) {
		return
	}
	r.begin(cam)
	light := c.Light()
	for i, cyl := range items {
		bound := cyl.BoundingSphere()
		if !r.visible(bound) {
			continue
		}
		x0, y0, x1, y1, ok := r.screenRect(bound)
		if !ok {
			continue
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				px, py := float64(x)+0.5, float64(y)+0.5
				ray := r.pixelRay(px, py)
				hit, ok := impostor.IntersectCylinder(ray, cyl)
				if !ok {
					continue
				}
				alpha := 1.0
				if hit.Part == impostor.Lateral {
					disc := impostor.CylinderDiscriminant(ray, cyl)
					fw := math.Abs(impostor.CylinderDiscriminant(r.pixelRay(px+1, py), cyl)-disc) +
						math.Abs(impostor.CylinderDiscriminant(r.pixelRay(px, py+1), cyl)-disc)
					alpha = impostor.EdgeAlpha(disc, fw)
				}
				r.fb.plot(x, y, impostor.WindowDepth(r.pv, hit.Point),
					light.Shade(cols[i], hit.Normal), alpha)
			}
		}
	}
}

// DrawTriangles scan converts every triangle, flat shaded by its face
// normal. Triangles crossing the eye plane are dropped.
func (r *Rasterizer) DrawTriangles(cam batch.Camera, t *batch.Triangles) {
	items, cols := t.Instances(), t.Colors()
	if len(items) != len(cols) {
		return
	}
	r.begin(cam)
	light := t.Light()
	for i, tri := range items {
		if !r.visible(BoundsOf(tri.V[:]).BoundingSphere()) {
			continue
		}
		sv, ok := r.projectAll(tri.V[:])
		if !ok {
			continue
		}
		c := light.Shade(cols[i], tri.FaceNormal())
		r.rasterize([3]screenVertex(sv), func([3]float64) colors.Color { return c })
	}
}

func (r *Rasterizer) projectAll(pts []math3d.Vec3) ([]screenVertex, bool) {
	sv := make([]screenVertex, len(pts))
	for i, p := range pts {
		v, ok := r.project(p)
		if !ok {
			return nil, false
		}
		sv[i] = v
	}
	return sv, true
}

func (r *Rasterizer) grid(t patch.Topology, level int) patch.Grid {
	key := gridKey{t, level}
	g, ok := r.grids[key]
	if !ok {
		g = patch.Tessellate(t, level)
		r.grids[key] = g
	}
	return g
}

// patchSample is one tessellated point with its interpolated attributes.
type patchSample struct {
	pos    math3d.Vec3
	normal math3d.Vec3
	color  colors.Color
	value  float64
}

// DrawPatches tessellates every patch at its topology's subdivision level
// and scan converts the grid. Normals come from the shape-function
// derivatives; palette values are interpolated and mapped per pixel.
func (r *Rasterizer) DrawPatches(cam batch.Camera, p *batch.Patches) {
	r.begin(cam)
	light := p.Light()
	var samples []patchSample
	var sv []screenVertex

	p.Each(func(v batch.PatchView) {
		topo, pts := v.Patch.Topology, v.Patch.Points
		bound := BoundsOf(pts).BoundingSphere()
		bound.Radius *= 1.5
		if !r.visible(bound) {
			return
		}

		g := r.grid(topo, p.Subdivision(topo))
		samples, sv = samples[:0], sv[:0]
		for _, st := range g.Samples {
			w := topo.Weights(st.X, st.Y)
			s := patchSample{
				pos:    patch.Interpolate(w, pts),
				normal: topo.Normal(pts, st.X, st.Y),
			}
			if v.Values != nil {
				s.value = patch.InterpolateScalar(w, v.Values)
			} else {
				s.color = weightedColor(w, v.Colors)
			}
			samples = append(samples, s)
		}
		for _, s := range samples {
			proj, ok := r.project(s.pos)
			if !ok {
				return
			}
			sv = append(sv, proj)
		}

		for _, tri := range g.Triangles {
			a, b, c := samples[tri[0]], samples[tri[1]], samples[tri[2]]
			r.rasterize([3]screenVertex{sv[tri[0]], sv[tri[1]], sv[tri[2]]}, func(w [3]float64) colors.Color {
				n := a.normal.Scale(w[0]).Add(b.normal.Scale(w[1])).Add(c.normal.Scale(w[2])).Normalize()
				var base colors.Color
				if v.Values != nil {
					base = p.MapValue(w[0]*a.value + w[1]*b.value + w[2]*c.value)
				} else {
					base = blend3(a.color, b.color, c.color, w)
				}
				return light.Shade(base, n)
			})
		}
	})
}

// weightedColor combines node colours with shape-function weights,
// clamping each channel since quadratic weights go negative.
func weightedColor(w []float64, cs []colors.Color) colors.Color {
	var r, g, b, a float64
	for i, c := range cs {
		r += w[i] * float64(c.R)
		g += w[i] * float64(c.G)
		b += w[i] * float64(c.B)
		a += w[i] * float64(c.A)
	}
	return colors.Color{R: channel(r), G: channel(g), B: channel(b), A: channel(a)}
}

func blend3(c0, c1, c2 colors.Color, w [3]float64) colors.Color {
	return weightedColor(w[:], []colors.Color{c0, c1, c2})
}

func channel(v float64) uint8 {
	return uint8(math3d.Clamp(math.Round(v), 0, 255))
}

// edgeCoeffs returns A, B, C with edge(x,y) = A*x + B*y + C, the signed
// doubled area of (x0,y0), (x1,y1), (x,y).
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// rasterize fills a screen triangle of either winding. shade receives
// perspective-correct barycentric weights and runs only for pixels that
// pass the depth test.
func (r *Rasterizer) rasterize(sv [3]screenVertex, shade func(w [3]float64) colors.Color) {
	a0, b0, c0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	a1, b1, c1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	a2, b2, c2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	area := a0*sv[0].X + b0*sv[0].Y + c0
	if area == 0 {
		return
	}
	inv := 1 / area

	minX := max(0, int(math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := min(r.fb.Width-1, int(math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := max(0, int(math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := min(r.fb.Height-1, int(math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	px, py := float64(minX)+0.5, float64(minY)+0.5
	w0Row := (a0*px + b0*py + c0) * inv
	w1Row := (a1*px + b1*py + c1) * inv
	w2Row := (a2*px + b2*py + c2) * inv
	a0, a1, a2 = a0*inv, a1*inv, a2*inv
	b0, b1, b2 = b0*inv, b1*inv, b2*inv

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				z := w0*sv[0].Z + w1*sv[1].Z + w2*sv[2].Z
				if z < r.fb.DepthAt(x, y) {
					p0, p1, p2 := w0*sv[0].InvW, w1*sv[1].InvW, w2*sv[2].InvW
					s := 1 / (p0 + p1 + p2)
					r.fb.plot(x, y, z, shade([3]float64{p0 * s, p1 * s, p2 * s}), 1)
				}
			}
			w0 += a0
			w1 += a1
			w2 += a2
		}
		w0Row += b0
		w1Row += b1
		w2Row += b2
	}
}
