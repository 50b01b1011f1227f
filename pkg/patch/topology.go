// Package patch evaluates the shape functions of the curved patch
// topologies and builds the regular parametric grids they are tessellated
// on.
//
// Node ordering is fixed for every topology.
//
// Quads live on (ξ,η) ∈ [0,1]². Corners run counter-clockwise from the
// origin, then the mid-edges in the same order, then the centre:
//
//	3 ── 6 ── 2
//	|         |
//	7    8    5
//	|         |
//	0 ── 4 ── 1
//
// Tri6 lives on ξ,η ≥ 0, ξ+η ≤ 1 with corners 0=(0,0), 1=(1,0), 2=(0,1)
// followed by the mid-edges 3=mid(0,1), 4=mid(1,2), 5=mid(2,0):
//
//	2
//	| \
//	5   4
//	|     \
//	0 ─ 3 ─ 1
package patch

import (
	"fmt"
	"slices"

	"github.com/taigrr/glprim/pkg/math3d"
)

// Subdivision bounds accepted by the tessellator.
const (
	MinLevel = 1
	MaxLevel = 16
)

// Topology selects a patch shape.
type Topology int

const (
	Tri6 Topology = iota
	Quad4
	Quad8
	Quad9
)

// Topologies lists every topology in draw order.
var Topologies = [...]Topology{Tri6, Quad4, Quad8, Quad9}

func (t Topology) String() string {
	switch t {
	case Tri6:
		return "tri6"
	case Quad4:
		return "quad4"
	case Quad8:
		return "quad8"
	case Quad9:
		return "quad9"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// Valid reports whether t is one of the known topologies.
func (t Topology) Valid() bool {
	return t >= Tri6 && t <= Quad9
}

// NodeCount returns the number of control points: 6, 4, 8 or 9.
func (t Topology) NodeCount() int {
	switch t {
	case Tri6:
		return 6
	case Quad4:
		return 4
	case Quad8:
		return 8
	case Quad9:
		return 9
	}
	return 0
}

// IsTriangle reports whether the parametric domain is the unit triangle.
func (t Topology) IsTriangle() bool {
	return t == Tri6
}

var (
	quadNodes = [9]math3d.Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		{X: 0.5, Y: 0}, {X: 1, Y: 0.5}, {X: 0.5, Y: 1}, {X: 0, Y: 0.5},
		{X: 0.5, Y: 0.5},
	}
	triNodes = [6]math3d.Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
		{X: 0.5, Y: 0}, {X: 0.5, Y: 0.5}, {X: 0, Y: 0.5},
	}
)

// Nodes returns the parametric position of every control point.
func (t Topology) Nodes() []math3d.Vec2 {
	if t == Tri6 {
		return slices.Clone(triNodes[:])
	}
	return slices.Clone(quadNodes[:t.NodeCount()])
}

// domainSlack absorbs rounding on the Tri6 hypotenuse.
const domainSlack = 1e-12

// InDomain reports whether (ξ,η) lies in the parametric domain.
func (t Topology) InDomain(xi, eta float64) bool {
	if xi < 0 || eta < 0 {
		return false
	}
	if t.IsTriangle() {
		return xi+eta <= 1+domainSlack
	}
	return xi <= 1 && eta <= 1
}

// ClampLevel limits a subdivision level to [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	return max(MinLevel, min(MaxLevel, level))
}
