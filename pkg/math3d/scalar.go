package math3d

import "math"

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Smoothstep mirrors the GLSL builtin: 0 below edge0, 1 above edge1 and a
// cubic Hermite ramp in between. A zero-width ramp degrades to a step at
// edge0.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Mix linearly interpolates between a and b.
func Mix(a, b, t float64) float64 {
	return a + (b-a)*t
}

// SolveQuadratic returns the real roots of a·t² + b·t + c = 0 in ascending
// order. ok is false when there is no real root or the equation is
// degenerate.
func SolveQuadratic(a, b, c float64) (t0, t1 float64, ok bool) {
	if a == 0 {
		if b == 0 {
			return 0, 0, false
		}
		t := -c / b
		return t, t, true
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	// Numerically stable form avoids cancellation when b ≈ ±sq.
	var q float64
	if b < 0 {
		q = -0.5 * (b - sq)
	} else {
		q = -0.5 * (b + sq)
	}
	t0 = q / a
	if q != 0 {
		t1 = c / q
	} else {
		t1 = t0
	}
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}
