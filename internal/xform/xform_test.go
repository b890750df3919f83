package xform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-6

func TestOrthoTerms(t *testing.T) {
	m := Ortho(0, 1920, 0, 1080, -100, 100)

	assert.Equal(t, float32(2)/1920, m.At(0, 0))
	assert.Equal(t, float32(-2)/1080, m.At(1, 1))
	assert.Equal(t, -(float32(2) / 200), m.At(2, 2))
	assert.Equal(t, float32(1), m.At(3, 3))

	// translation column, column-major slots 12..15
	assert.Equal(t, []float32{-1, 1, 0, 1}, m[12:16])

	for _, i := range []int{1, 2, 3, 4, 6, 7, 8, 9, 11} {
		assert.Zero(t, m[i], "slot %d", i)
	}
}

func TestOrthoOriginMapsToTopLeft(t *testing.T) {
	proj := Ortho(0, 1920, 0, 1080, -100, 100)
	model := Identity()
	view := Identity()

	clip := Apply(proj.Mul4(view).Mul4(model), mgl32.Vec4{0, 0, 0, 1})
	assert.Equal(t, float32(-1), clip[0])
	assert.Equal(t, float32(1), clip[1])
	assert.Equal(t, float32(1), clip[3])

	far := Apply(proj, mgl32.Vec4{1920, 1080, 0, 1})
	assert.InDelta(t, 1, far[0], tol)
	assert.InDelta(t, -1, far[1], tol)
}

func TestOrthoMatchesFormula(t *testing.T) {
	cases := []struct {
		l, r, b, tp, n, f float32
	}{
		{0, 1920, 0, 1080, -100, 100},
		{0, 800, 0, 600, 0, 1},
		{-10, 10, -5, 5, 1, 50},
	}
	for _, c := range cases {
		m := Ortho(c.l, c.r, c.b, c.tp, c.n, c.f)
		p := mgl32.Vec4{3, 7, 2, 1}
		got := Apply(m, p)
		want := mgl32.Vec4{
			p[0]*2/(c.r-c.l) - 1,
			p[1]*-2/(c.tp-c.b) + 1,
			p[2] * -(2 / (c.f - c.n)),
			1,
		}
		for i := range want {
			assert.InDelta(t, want[i], got[i], tol)
		}
	}
}

func TestOrthoIdempotent(t *testing.T) {
	a := Ortho(0, 1920, 0, 1080, -100, 100)
	b := Ortho(0, 1920, 0, 1080, -100, 100)
	assert.Equal(t, a, b)
}

func TestApplyAgreesWithMathgl(t *testing.T) {
	m := Ortho(-3, 9, 2, 14, -1, 7).Mul4(UniformScale(10))
	p := mgl32.Vec4{1.5, -2, 0.25, 1}
	want := m.Mul4x1(p)
	got := Apply(m, p)
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol)
	}
}

func TestUniformScale(t *testing.T) {
	got := Apply(UniformScale(10), mgl32.Vec4{1, 2, 3, 1})
	assert.Equal(t, mgl32.Vec4{10, 20, 30, 1}, got)
}

func TestLookAtIsOrthonormal(t *testing.T) {
	eye := mgl32.Vec3{0.5, 0.2, -3}
	m := LookAt(eye, mgl32.Vec3{-0.5, -0.2, 3}, mgl32.Vec3{0, 1, 0})

	rows := [3]mgl32.Vec3{
		{m[0], m[4], m[8]},
		{m[1], m[5], m[9]},
		{m[2], m[6], m[10]},
	}
	for i := range rows {
		assert.InDelta(t, 1, rows[i].Len(), 1e-5)
		for j := i + 1; j < 3; j++ {
			assert.InDelta(t, 0, rows[i].Dot(rows[j]), 1e-5)
		}
	}

	// the eye itself ends up at the view-space origin
	origin := Apply(m, eye.Vec4(1))
	assert.InDelta(t, 0, origin[0], 1e-5)
	assert.InDelta(t, 0, origin[1], 1e-5)
	assert.InDelta(t, 0, origin[2], 1e-5)
}

func TestLookAtForwardAxis(t *testing.T) {
	m := LookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 1, 0})
	// looking down +z with y up: s = +x, u = +y, f = +z
	assert.Equal(t, Identity(), m)
}

func TestLookAtDegenerate(t *testing.T) {
	m := LookAt(mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	require.True(t, math.IsNaN(float64(m[2])))
}
