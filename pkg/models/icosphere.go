package models

import (
	"math"

	"github.com/taigrr/glprim/pkg/geom"
	"github.com/taigrr/glprim/pkg/math3d"
	"github.com/taigrr/glprim/pkg/patch"
)

var icosahedronFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// NewIcosphere returns a unit sphere built from an icosahedron whose faces
// are split in four subdivisions times. Faces wind counter-clockwise seen
// from outside.
func NewIcosphere(subdivisions int) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	m := NewMesh("icosphere")
	for _, v := range []math3d.Vec3{
		math3d.V3(-1, t, 0), math3d.V3(1, t, 0), math3d.V3(-1, -t, 0), math3d.V3(1, -t, 0),
		math3d.V3(0, -1, t), math3d.V3(0, 1, t), math3d.V3(0, -1, -t), math3d.V3(0, 1, -t),
		math3d.V3(t, 0, -1), math3d.V3(t, 0, 1), math3d.V3(-t, 0, -1), math3d.V3(-t, 0, 1),
	} {
		m.Positions = append(m.Positions, v.Normalize())
	}
	for _, f := range icosahedronFaces {
		m.Faces = append(m.Faces, Face{V: f, Material: -1})
	}

	for range max(subdivisions, 0) {
		mids := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{min(a, b), max(a, b)}
			if i, ok := mids[key]; ok {
				return i
			}
			i := len(m.Positions)
			m.Positions = append(m.Positions, m.Positions[a].Add(m.Positions[b]).Normalize())
			mids[key] = i
			return i
		}
		faces := make([]Face, 0, 4*len(m.Faces))
		for _, f := range m.Faces {
			a, b, c := f.V[0], f.V[1], f.V[2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			faces = append(faces,
				Face{V: [3]int{a, ab, ca}, Material: -1},
				Face{V: [3]int{b, bc, ab}, Material: -1},
				Face{V: [3]int{c, ca, bc}, Material: -1},
				Face{V: [3]int{ab, bc, ca}, Material: -1},
			)
		}
		m.Faces = faces
	}
	return m
}

// SpherePatches turns each face of a unit sphere mesh into a Tri6 patch of
// the given radius. Mid-edge nodes are pushed onto the sphere so the
// quadratic patch bulges with it. The value at each node is its height z,
// for palette colouring.
func SpherePatches(m *Mesh, radius float64) ([]geom.Patch, [][]float64) {
	patches := make([]geom.Patch, len(m.Faces))
	values := make([][]float64, len(m.Faces))
	for i, f := range m.Faces {
		a, b, c := m.Positions[f.V[0]], m.Positions[f.V[1]], m.Positions[f.V[2]]
		dirs := [6]math3d.Vec3{
			a, b, c,
			a.Add(b).Normalize(),
			b.Add(c).Normalize(),
			c.Add(a).Normalize(),
		}
		pts := make([]math3d.Vec3, len(dirs))
		vals := make([]float64, len(dirs))
		for j, d := range dirs {
			pts[j] = d.Normalize().Scale(radius)
			vals[j] = pts[j].Z
		}
		patches[i] = geom.Patch{Topology: patch.Tri6, Points: pts}
		values[i] = vals
	}
	return patches, values
}
