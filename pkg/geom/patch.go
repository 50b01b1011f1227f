package geom

import (
	"fmt"

	"github.com/taigrr/glprim/pkg/math3d"
	"github.com/taigrr/glprim/pkg/patch"
)

// Patch is a curved surface element: a topology and its control points in
// the node order documented by pkg/patch.
type Patch struct {
	Topology patch.Topology
	Points   []math3d.Vec3
}

// Validate checks the topology and the number of control points.
func (p Patch) Validate() error {
	if !p.Topology.Valid() {
		return fmt.Errorf("patch: unknown topology %v", p.Topology)
	}
	if want := p.Topology.NodeCount(); len(p.Points) != want {
		return fmt.Errorf("patch: %v needs %d control points, got %d", p.Topology, want, len(p.Points))
	}
	return nil
}

// At evaluates the surface position at (ξ,η).
func (p Patch) At(xi, eta float64) math3d.Vec3 {
	return patch.Interpolate(p.Topology.Weights(xi, eta), p.Points)
}

// Normal evaluates the unit surface normal at (ξ,η).
func (p Patch) Normal(xi, eta float64) math3d.Vec3 {
	return p.Topology.Normal(p.Points, xi, eta)
}
