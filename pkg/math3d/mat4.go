package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order, the layout OpenGL
// expects for uniform uploads.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Rotate creates a rotation matrix around an arbitrary axis.
func Rotate(axis Vec3, angle float64) Mat4 {
	axis = axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// LookAt creates a view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective creates a perspective projection matrix.
// fovy is the vertical field of view in radians, aspect is width/height.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Mul multiplies two matrices: a * b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms v as a point (w=1) and applies the perspective divide.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// Inverse returns the inverse of the matrix, computed from the 2x2
// sub-determinants of the upper and lower row pairs. A singular matrix
// yields the identity.
func (m Mat4) Inverse() Mat4 {
	// Row-major aliases keep the cofactor expressions readable.
	a00, a01, a02, a03 := m[0], m[4], m[8], m[12]
	a10, a11, a12, a13 := m[1], m[5], m[9], m[13]
	a20, a21, a22, a23 := m[2], m[6], m[10], m[14]
	a30, a31, a32, a33 := m[3], m[7], m[11], m[15]

	s0 := a00*a11 - a10*a01
	s1 := a00*a12 - a10*a02
	s2 := a00*a13 - a10*a03
	s3 := a01*a12 - a11*a02
	s4 := a01*a13 - a11*a03
	s5 := a02*a13 - a12*a03

	c5 := a22*a33 - a32*a23
	c4 := a21*a33 - a31*a23
	c3 := a21*a32 - a31*a22
	c2 := a20*a33 - a30*a23
	c1 := a20*a32 - a30*a22
	c0 := a20*a31 - a30*a21

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Identity()
	}
	inv := 1 / det

	var r Mat4
	set := func(row, col int, v float64) { r[row+col*4] = v * inv }

	set(0, 0, a11*c5-a12*c4+a13*c3)
	set(0, 1, -a01*c5+a02*c4-a03*c3)
	set(0, 2, a31*s5-a32*s4+a33*s3)
	set(0, 3, -a21*s5+a22*s4-a23*s3)

	set(1, 0, -a10*c5+a12*c2-a13*c1)
	set(1, 1, a00*c5-a02*c2+a03*c1)
	set(1, 2, -a30*s5+a32*s2-a33*s1)
	set(1, 3, a20*s5-a22*s2+a23*s1)

	set(2, 0, a10*c4-a11*c2+a13*c0)
	set(2, 1, -a00*c4+a01*c2-a03*c0)
	set(2, 2, a30*s4-a31*s2+a33*s0)
	set(2, 3, -a20*s4+a21*s2-a23*s0)

	set(3, 0, -a10*c3+a11*c1-a12*c0)
	set(3, 1, a00*c3-a01*c1+a02*c0)
	set(3, 2, -a30*s3+a31*s1-a32*s0)
	set(3, 3, a20*s3-a21*s1+a22*s0)

	return r
}

// F32 returns the matrix as float32, still column-major.
func (m Mat4) F32() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
