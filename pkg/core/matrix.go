package core

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix4 is a 4x4 transform acting on column vectors: p' = M * p.
// Elements are indexed [row][column].
type Matrix4 [4][4]float64

// Identity returns the identity transform
func Identity() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate returns a translation by offset
func Translate(offset Vec3) Matrix4 {
	m := Identity()
	m[0][3] = offset.X
	m[1][3] = offset.Y
	m[2][3] = offset.Z
	return m
}

// Scale returns a non-uniform scale
func Scale(factors Vec3) Matrix4 {
	m := Identity()
	m[0][0] = factors.X
	m[1][1] = factors.Y
	m[2][2] = factors.Z
	return m
}

// RotateX returns a rotation around the X axis by angle radians
func RotateX(angle float64) Matrix4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[1][1], m[1][2] = c, -s
	m[2][1], m[2][2] = s, c
	return m
}

// RotateY returns a rotation around the Y axis by angle radians
func RotateY(angle float64) Matrix4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[0][0], m[0][2] = c, s
	m[2][0], m[2][2] = -s, c
	return m
}

// RotateZ returns a rotation around the Z axis by angle radians
func RotateZ(angle float64) Matrix4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[0][0], m[0][1] = c, -s
	m[1][0], m[1][1] = s, c
	return m
}

// LookAt builds a right-handed view matrix with the camera at eye looking at target
func LookAt(eye, target, up Vec3) Matrix4 {
	forward := target.Subtract(eye).Normalize()
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward)

	return Matrix4{
		{right.X, right.Y, right.Z, -right.Dot(eye)},
		{trueUp.X, trueUp.Y, trueUp.Z, -trueUp.Dot(eye)},
		{-forward.X, -forward.Y, -forward.Z, forward.Dot(eye)},
		{0, 0, 0, 1},
	}
}

// Perspective builds an OpenGL-style projection (clip z in [-1, 1]).
// fovY is the vertical field of view in radians.
func Perspective(fovY, aspect, near, far float64) Matrix4 {
	f := 1.0 / math.Tan(fovY/2)
	return Matrix4{
		{f / aspect, 0, 0, 0},
		{0, f, 0, 0},
		{0, 0, (far + near) / (near - far), 2 * far * near / (near - far)},
		{0, 0, -1, 0},
	}
}

// Multiply returns m * other (other is applied first)
func (m Matrix4) Multiply(other Matrix4) Matrix4 {
	var result Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * other[k][j]
			}
			result[i][j] = sum
		}
	}
	return result
}

// Transpose returns the transposed matrix
func (m Matrix4) Transpose() Matrix4 {
	var result Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			result[i][j] = m[j][i]
		}
	}
	return result
}

// MultiplyVec4 returns m * v
func (m Matrix4) MultiplyVec4(v Vec4) Vec4 {
	return Vec4{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z + m[0][3]*v.W,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z + m[1][3]*v.W,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z + m[2][3]*v.W,
		W: m[3][0]*v.X + m[3][1]*v.Y + m[3][2]*v.Z + m[3][3]*v.W,
	}
}

// TransformPoint applies the transform to a position, dividing by w when projective
func (m Matrix4) TransformPoint(p Vec3) Vec3 {
	h := m.MultiplyVec4(Vec4{p.X, p.Y, p.Z, 1})
	if h.W != 1 && h.W != 0 {
		return Vec3{h.X / h.W, h.Y / h.W, h.Z / h.W}
	}
	return Vec3{h.X, h.Y, h.Z}
}

// TransformDirection applies the linear part of the transform (no translation)
func (m Matrix4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*d.X + m[0][1]*d.Y + m[0][2]*d.Z,
		Y: m[1][0]*d.X + m[1][1]*d.Y + m[1][2]*d.Z,
		Z: m[2][0]*d.X + m[2][1]*d.Y + m[2][2]*d.Z,
	}
}

// TransformNormal maps a normal through the transform whose inverse is m,
// i.e. it multiplies by the transpose of m. Pass the world-to-local matrix to
// move a local normal into world space.
func (m Matrix4) TransformNormal(n Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*n.X + m[1][0]*n.Y + m[2][0]*n.Z,
		Y: m[0][1]*n.X + m[1][1]*n.Y + m[2][1]*n.Z,
		Z: m[0][2]*n.X + m[1][2]*n.Y + m[2][2]*n.Z,
	}
}

// Inverse returns the inverse matrix. ok is false when m is singular.
func (m Matrix4) Inverse() (inverse Matrix4, ok bool) {
	data := make([]float64, 0, 16)
	for i := 0; i < 4; i++ {
		data = append(data, m[i][:]...)
	}

	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(4, 4, data)); err != nil {
		return Matrix4{}, false
	}

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			inverse[i][j] = inv.At(i, j)
		}
	}
	return inverse, true
}
