package patch

import "github.com/taigrr/glprim/pkg/math3d"

// Grid is a regular tessellation of a parametric domain. Triangles index
// into Samples and wind counter-clockwise in (ξ,η).
type Grid struct {
	Level     int
	Samples   []math3d.Vec2
	Triangles [][3]int
}

// Tessellate samples t's domain with level subdivisions per edge, the same
// equal-spacing grid the GPU tessellator generates for that level. Quads
// give (level+1)² samples and 2·level² triangles; Tri6 gives
// (level+1)(level+2)/2 samples and level² triangles. level is clamped to
// [MinLevel, MaxLevel].
func Tessellate(t Topology, level int) Grid {
	level = ClampLevel(level)
	if t.IsTriangle() {
		return tessellateTri(level)
	}
	return tessellateQuad(level)
}

func tessellateQuad(level int) Grid {
	n := level + 1
	g := Grid{
		Level:     level,
		Samples:   make([]math3d.Vec2, 0, n*n),
		Triangles: make([][3]int, 0, 2*level*level),
	}
	for j := range n {
		for i := range n {
			g.Samples = append(g.Samples, gridPoint(i, j, level))
		}
	}
	for j := range level {
		for i := range level {
			a := j*n + i
			b, c, d := a+1, a+n+1, a+n
			g.Triangles = append(g.Triangles, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	return g
}

func tessellateTri(level int) Grid {
	g := Grid{
		Level:     level,
		Samples:   make([]math3d.Vec2, 0, (level+1)*(level+2)/2),
		Triangles: make([][3]int, 0, level*level),
	}
	// rowStart[j] is the index of sample (0, j).
	rowStart := make([]int, level+2)
	for j := 0; j <= level; j++ {
		rowStart[j+1] = rowStart[j] + level + 1 - j
		for i := 0; i <= level-j; i++ {
			g.Samples = append(g.Samples, gridPoint(i, j, level))
		}
	}
	at := func(i, j int) int { return rowStart[j] + i }
	for j := range level {
		for i := 0; i < level-j; i++ {
			g.Triangles = append(g.Triangles, [3]int{at(i, j), at(i+1, j), at(i, j+1)})
			if i < level-j-1 {
				g.Triangles = append(g.Triangles, [3]int{at(i+1, j), at(i+1, j+1), at(i, j+1)})
			}
		}
	}
	return g
}

func gridPoint(i, j, level int) math3d.Vec2 {
	return math3d.V2(float64(i)/float64(level), float64(j)/float64(level))
}
