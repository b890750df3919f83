package xform

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ortho returns the orthographic projection used by the tile scene. The box
// [left,right]×[bottom,top] is mapped so that (left, bottom) lands on the NDC
// corner (-1, 1), with Y flipped (screen-down is world-up).
//
// This is not the textbook glOrtho matrix: the translation column is fixed to
// (-1, 1, 0, 1) and carries no near/far term. Callers must pass right != left,
// top != bottom and far != near; nothing is validated.
func Ortho(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	m00 := 2 / (right - left)
	m11 := -2 / (top - bottom)
	m22 := -(2 / (far - near))
	return mgl32.Mat4{
		m00, 0, 0, 0,
		0, m11, 0, 0,
		0, 0, m22, 0,
		-1, 1, 0, 1,
	}
}

// LookAt builds a view matrix for a camera at eye looking along dir, with up as
// the up hint. dir and up × dir must be non-zero; degenerate input divides by
// zero and yields NaNs.
func LookAt(eye, dir, up mgl32.Vec3) mgl32.Mat4 {
	f := normalize(dir)
	s := normalize(up.Cross(f))
	u := f.Cross(s)

	return mgl32.Mat4{
		s[0], u[0], f[0], 0,
		s[1], u[1], f[1], 0,
		s[2], u[2], f[2], 0,
		-eye.Dot(s), -eye.Dot(u), -eye.Dot(f), 1,
	}
}

// Identity returns the 4×4 identity matrix.
func Identity() mgl32.Mat4 {
	return mgl32.Ident4()
}

// UniformScale scales x, y and z by k and leaves w alone.
func UniformScale(k float32) mgl32.Mat4 {
	return mgl32.Mat4{
		k, 0, 0, 0,
		0, k, 0, 0,
		0, 0, k, 0,
		0, 0, 0, 1,
	}
}

// Apply multiplies the column-major matrix m by the column vector p.
func Apply(m mgl32.Mat4, p mgl32.Vec4) mgl32.Vec4 {
	var out mgl32.Vec4
	for row := 0; row < 4; row++ {
		out[row] = m[row]*p[0] + m[4+row]*p[1] + m[8+row]*p[2] + m[12+row]*p[3]
	}
	return out
}

// normalize divides each component by the vector length.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	return mgl32.Vec3{v[0] / l, v[1] / l, v[2] / l}
}
