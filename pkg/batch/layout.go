package batch

import (
	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/gpu"
)

// GPU records. Every field is a float32 array or a byte, so the Go layout
// has no padding and matches the attribute tables below byte for byte.

// proxyVertex is one corner of the unit proxy cube.
// Layout: position vec3 @0, 12 bytes.
type proxyVertex struct {
	Position [3]float32
}

// sphereRecord is one sphere instance.
// Layout: sphere vec4 (centre.xyz, radius) @0, 16 bytes.
type sphereRecord struct {
	Center [3]float32
	Radius float32
}

// cylinderRecord is one cylinder instance.
// Layout: cyl_start vec4 @0, cyl_end vec4 @16, 32 bytes.
type cylinderRecord struct {
	Start [4]float32
	End   [4]float32
}

// triangleVertex is one triangle corner with its face normal.
// Layout: position vec3 @0, normal vec3 @12, 24 bytes.
type triangleVertex struct {
	Position [3]float32
	Normal   [3]float32
}

// patchVertex is one patch control point.
// Layout: position vec3 @0, 12 bytes.
type patchVertex struct {
	Position [3]float32
}

// Colours are uploaded as colors.Color: 4 normalized unsigned bytes, RGBA.
// Palette values are uploaded as one float32 each.

// attribute describes one vertex input inside a stream.
type attribute struct {
	name       string
	components int
	typ        gpu.AttribType
	normalized bool
	offset     int
}

// stream is one GPU buffer: its record stride, instancing divisor and the
// inputs it feeds.
type stream struct {
	stride  int
	divisor int
	attribs []attribute
}

var (
	proxyStream = stream{
		stride: 12,
		attribs: []attribute{
			{name: "position", components: 3, typ: gpu.Float32},
		},
	}
	sphereStream = stream{
		stride:  16,
		divisor: 1,
		attribs: []attribute{
			{name: "sphere", components: 4, typ: gpu.Float32},
		},
	}
	cylinderStream = stream{
		stride:  32,
		divisor: 1,
		attribs: []attribute{
			{name: "cyl_start", components: 4, typ: gpu.Float32},
			{name: "cyl_end", components: 4, typ: gpu.Float32, offset: 16},
		},
	}
	instanceColorStream = stream{
		stride:  4,
		divisor: 1,
		attribs: []attribute{
			{name: "color", components: 4, typ: gpu.Uint8, normalized: true},
		},
	}
	triangleStream = stream{
		stride: 24,
		attribs: []attribute{
			{name: "position", components: 3, typ: gpu.Float32},
			{name: "normal", components: 3, typ: gpu.Float32, offset: 12},
		},
	}
	vertexColorStream = stream{
		stride: 4,
		attribs: []attribute{
			{name: "color", components: 4, typ: gpu.Uint8, normalized: true},
		},
	}
	patchStream = stream{
		stride: 12,
		attribs: []attribute{
			{name: "position", components: 3, typ: gpu.Float32},
		},
	}
	patchValueStream = stream{
		stride: 4,
		attribs: []attribute{
			{name: "value", components: 1, typ: gpu.Float32},
		},
	}
)

// bind points every input of s at the currently bound array buffer.
func (s stream) bind(p *gpu.Program) {
	for _, a := range s.attribs {
		if !p.SetAttribute(a.name, a.components, a.typ, a.normalized, s.stride, a.offset) {
			Logger().Debug("vertex input inactive", "name", a.name)
			continue
		}
		p.SetDivisor(a.name, s.divisor)
	}
}

func packSpheres(dst []sphereRecord, src []geom.Sphere) []sphereRecord {
	dst = dst[:0]
	for _, s := range src {
		dst = append(dst, sphereRecord{Center: s.Center.F32(), Radius: float32(s.Radius)})
	}
	return dst
}

func packCylinders(dst []cylinderRecord, src []geom.Cylinder) []cylinderRecord {
	dst = dst[:0]
	for _, c := range src {
		a, b := c.A.Center.F32(), c.B.Center.F32()
		dst = append(dst, cylinderRecord{
			Start: [4]float32{a[0], a[1], a[2], float32(c.A.Radius)},
			End:   [4]float32{b[0], b[1], b[2], float32(c.B.Radius)},
		})
	}
	return dst
}

// packTriangles emits three vertices per triangle carrying its face normal,
// and replicates each triangle colour to its vertices.
func packTriangles(verts []triangleVertex, cols []colors.Color, src []geom.Triangle, srcColors []colors.Color) ([]triangleVertex, []colors.Color) {
	verts, cols = verts[:0], cols[:0]
	for i, t := range src {
		n := t.FaceNormal().F32()
		for _, v := range t.V {
			verts = append(verts, triangleVertex{Position: v.F32(), Normal: n})
			cols = append(cols, srcColors[i])
		}
	}
	return verts, cols
}
