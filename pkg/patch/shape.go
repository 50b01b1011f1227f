package patch

import "github.com/taigrr/glprim/pkg/math3d"

// Per-node axis selectors for the tensor-product quads: node i uses the 1-D
// basis function quadXi[i] along ξ and quadEta[i] along η.
var (
	quadXi  = [9]int{0, 2, 2, 0, 1, 2, 1, 0, 1}
	quadEta = [9]int{0, 0, 2, 2, 0, 1, 2, 1, 1}
)

// lagrange2 evaluates the quadratic Lagrange basis on nodes 0, ½, 1 and its
// derivative.
func lagrange2(s float64) (l, dl [3]float64) {
	l = [3]float64{(s - 1) * (2*s - 1), -4 * (s - 1) * s, s * (2*s - 1)}
	dl = [3]float64{4*s - 3, 4 - 8*s, 4*s - 1}
	return l, dl
}

// Weights returns N_i(ξ,η) for every node of t. The weights sum to one and
// node i's weight is one at node i and zero at the others.
func (t Topology) Weights(xi, eta float64) []float64 {
	w := make([]float64, t.NodeCount())
	t.eval(xi, eta, w, nil, nil)
	return w
}

// Derivatives returns ∂N_i/∂ξ and ∂N_i/∂η for every node of t.
func (t Topology) Derivatives(xi, eta float64) (dxi, deta []float64) {
	n := t.NodeCount()
	dxi, deta = make([]float64, n), make([]float64, n)
	t.eval(xi, eta, nil, dxi, deta)
	return dxi, deta
}

// eval fills whichever of w, dxi and deta are non-nil.
func (t Topology) eval(xi, eta float64, w, dxi, deta []float64) {
	switch t {
	case Tri6:
		evalTri6(xi, eta, w, dxi, deta)
	case Quad4:
		evalQuad4(xi, eta, w, dxi, deta)
	case Quad8:
		evalQuad8(xi, eta, w, dxi, deta)
	case Quad9:
		evalQuad9(xi, eta, w, dxi, deta)
	}
}

func evalTri6(xi, eta float64, w, dxi, deta []float64) {
	z := 1 - xi - eta
	if w != nil {
		w[0] = z * (2*z - 1)
		w[1] = xi * (2*xi - 1)
		w[2] = eta * (2*eta - 1)
		w[3] = 4 * xi * z
		w[4] = 4 * xi * eta
		w[5] = 4 * eta * z
	}
	if dxi != nil {
		dxi[0], deta[0] = 1-4*z, 1-4*z
		dxi[1], deta[1] = 4*xi-1, 0
		dxi[2], deta[2] = 0, 4*eta-1
		dxi[3], deta[3] = 4*(z-xi), -4*xi
		dxi[4], deta[4] = 4*eta, 4*xi
		dxi[5], deta[5] = -4*eta, 4*(z-eta)
	}
}

func evalQuad4(xi, eta float64, w, dxi, deta []float64) {
	lx := [2]float64{1 - xi, xi}
	ly := [2]float64{1 - eta, eta}
	d := [2]float64{-1, 1}
	// Corners only, so the quadratic selectors collapse 2 → 1.
	for i := range 4 {
		a, b := quadXi[i]/2, quadEta[i]/2
		if w != nil {
			w[i] = lx[a] * ly[b]
		}
		if dxi != nil {
			dxi[i] = d[a] * ly[b]
			deta[i] = lx[a] * d[b]
		}
	}
}

func evalQuad8(xi, eta float64, w, dxi, deta []float64) {
	if w != nil {
		w[0] = -((eta - 1) * (xi - 1) * (2*eta + 2*xi - 1))
		w[1] = (eta - 1) * (1 + 2*eta - 2*xi) * xi
		w[2] = eta * xi * (2*eta + 2*xi - 3)
		w[3] = -(eta * (2*eta - 2*xi - 1) * (xi - 1))
		w[4] = 4 * (eta - 1) * (xi - 1) * xi
		w[5] = -4 * (eta - 1) * eta * xi
		w[6] = -4 * eta * (xi - 1) * xi
		w[7] = 4 * (eta - 1) * eta * (xi - 1)
	}
	if dxi != nil {
		dxi[0] = -(eta - 1) * (2*eta + 4*xi - 3)
		deta[0] = -(xi - 1) * (4*eta + 2*xi - 3)
		dxi[1] = (eta - 1) * (1 + 2*eta - 4*xi)
		deta[1] = xi * (4*eta - 2*xi - 1)
		dxi[2] = eta * (2*eta + 4*xi - 3)
		deta[2] = xi * (4*eta + 2*xi - 3)
		dxi[3] = -eta * (2*eta - 4*xi + 1)
		deta[3] = -(xi - 1) * (4*eta - 2*xi - 1)
		dxi[4] = 4 * (eta - 1) * (2*xi - 1)
		deta[4] = 4 * (xi - 1) * xi
		dxi[5] = -4 * (eta - 1) * eta
		deta[5] = -4 * xi * (2*eta - 1)
		dxi[6] = -4 * eta * (2*xi - 1)
		deta[6] = -4 * (xi - 1) * xi
		dxi[7] = 4 * (eta - 1) * eta
		deta[7] = 4 * (xi - 1) * (2*eta - 1)
	}
}

func evalQuad9(xi, eta float64, w, dxi, deta []float64) {
	lx, dlx := lagrange2(xi)
	ly, dly := lagrange2(eta)
	for i := range 9 {
		a, b := quadXi[i], quadEta[i]
		if w != nil {
			w[i] = lx[a] * ly[b]
		}
		if dxi != nil {
			dxi[i] = dlx[a] * ly[b]
			deta[i] = lx[a] * dly[b]
		}
	}
}

// Interpolate returns Σ w_i·p_i.
func Interpolate(w []float64, pts []math3d.Vec3) math3d.Vec3 {
	var out math3d.Vec3
	for i := range min(len(w), len(pts)) {
		out = out.Add(pts[i].Scale(w[i]))
	}
	return out
}

// InterpolateScalar returns Σ w_i·v_i.
func InterpolateScalar(w, v []float64) float64 {
	var out float64
	for i := range min(len(w), len(v)) {
		out += w[i] * v[i]
	}
	return out
}

// Normal returns the unit surface normal ∂P/∂ξ × ∂P/∂η at (ξ,η) for the
// given control points. Degenerate parametrizations yield the zero vector.
func (t Topology) Normal(pts []math3d.Vec3, xi, eta float64) math3d.Vec3 {
	dxi, deta := t.Derivatives(xi, eta)
	return Interpolate(dxi, pts).Cross(Interpolate(deta, pts)).Normalize()
}
