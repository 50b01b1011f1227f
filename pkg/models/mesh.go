// Package models builds batch geometry from files and procedural shapes:
// glTF meshes as triangles, molecule JSON as atom spheres and bond
// cylinders, and icospheres as curved Tri6 patches.
package models

import (
	"math"

	"github.com/taigrr/glprim/pkg/colors"
	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/math3d"
)

// Mesh is an indexed triangle mesh with flat per-face materials.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Faces     []Face
	Materials []Material
}

// Face is one triangle. Material indexes Mesh.Materials, -1 for none.
type Face struct {
	V        [3]int
	Material int
}

// Material is the part of a glTF material a flat-shaded batch can show.
type Material struct {
	Name      string
	BaseColor colors.Color
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Bounds returns the axis-aligned bounding box.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	if len(m.Positions) == 0 {
		return math3d.Zero3(), math3d.Zero3()
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		lo, hi = lo.Min(p), hi.Max(p)
	}
	return lo, hi
}

// Center returns the centre of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	lo, hi := m.Bounds()
	return lo.Add(hi).Scale(0.5)
}

// Radius returns the largest distance from Center to a vertex.
func (m *Mesh) Radius() float64 {
	c := m.Center()
	r := 0.0
	for _, p := range m.Positions {
		r = math.Max(r, p.Distance(c))
	}
	return r
}

// Recenter translates the mesh so its bounding box is centred on the
// origin.
func (m *Mesh) Recenter() {
	c := m.Center()
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Sub(c)
	}
}

// FitTo recentres the mesh and scales it uniformly to the given radius.
func (m *Mesh) FitTo(radius float64) {
	m.Recenter()
	r := m.Radius()
	if r == 0 {
		return
	}
	k := radius / r
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Scale(k)
	}
}

// FaceColor returns the base colour of face i, or fallback when it has no
// material.
func (m *Mesh) FaceColor(i int, fallback colors.Color) colors.Color {
	mat := m.Faces[i].Material
	if mat < 0 || mat >= len(m.Materials) {
		return fallback
	}
	return m.Materials[mat].BaseColor
}

// Triangles expands the faces into triangles with one colour each, ready
// for batch.Triangles.AppendColored.
func (m *Mesh) Triangles(fallback colors.Color) ([]geom.Triangle, []colors.Color) {
	tris := make([]geom.Triangle, len(m.Faces))
	cols := make([]colors.Color, len(m.Faces))
	for i, f := range m.Faces {
		tris[i] = geom.Tri(m.Positions[f.V[0]], m.Positions[f.V[1]], m.Positions[f.V[2]])
		cols[i] = m.FaceColor(i, fallback)
	}
	return tris, cols
}
