package scene

import (
	"isogrid/internal/xform"

	"github.com/go-gl/mathgl/mgl32"
)

// DepthFunc is the comparison applied to incoming fragment depth.
type DepthFunc int

const (
	DepthAlways DepthFunc = iota
	DepthLess
	DepthLessOrEqual
)

// BlendMode selects how fragment colour is combined with the target.
type BlendMode int

const (
	BlendNone BlendMode = iota
	// BlendAlpha is "over" compositing of straight-alpha colour: src*src.a + dst*(1-src.a).
	BlendAlpha
)

// Filter is a texture sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// DrawParams is the fixed-function state for one draw call.
type DrawParams struct {
	DepthTest  DepthFunc
	DepthWrite bool
	Blend      BlendMode
}

// Frame is everything the renderer needs for one redraw. It is rebuilt every
// frame and never kept.
type Frame struct {
	ClearColor [4]float32
	ClearDepth float32

	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4

	Params    DrawParams
	MinFilter Filter
	MagFilter Filter
}

// Camera is an optional look-at view. When set it replaces the uniform-scale view.
type Camera struct {
	Eye mgl32.Vec3
	Dir mgl32.Vec3
	Up  mgl32.Vec3
}

// Options describe the static scene: the orthographic box, the view and the clear colour.
type Options struct {
	Left, Right float32
	Bottom, Top float32
	Near, Far   float32

	ViewScale  float32
	Camera     *Camera
	ClearColor [4]float32
}

// DefaultOptions returns a 1920×1080 box with depth [-100, 100], a view that
// scales the world by 10, and a light grey background.
func DefaultOptions() Options {
	return Options{
		Left:       0,
		Right:      1920,
		Bottom:     0,
		Top:        1080,
		Near:       -100,
		Far:        100,
		ViewScale:  10,
		ClearColor: [4]float32{0.7, 0.7, 0.7, 1.0},
	}
}

// Scene holds the camera setup for the tile grid. Nothing moves, so every
// Frame is identical.
type Scene struct {
	opts Options
}

// New returns a scene for the given options.
func New(opts Options) *Scene {
	return &Scene{opts: opts}
}

// Frame computes the transforms and draw state for the next redraw.
// Depth test passes on less, depth writes are on, alpha blending is on, and
// the texture is sampled nearest-neighbour.
func (s *Scene) Frame() Frame {
	o := s.opts
	return Frame{
		ClearColor: o.ClearColor,
		ClearDepth: 1.0,
		Model:      xform.Identity(),
		View:       s.view(),
		Projection: xform.Ortho(o.Left, o.Right, o.Bottom, o.Top, o.Near, o.Far),
		Params: DrawParams{
			DepthTest:  DepthLess,
			DepthWrite: true,
			Blend:      BlendAlpha,
		},
		MinFilter: FilterNearest,
		MagFilter: FilterNearest,
	}
}

func (s *Scene) view() mgl32.Mat4 {
	if c := s.opts.Camera; c != nil {
		return xform.LookAt(c.Eye, c.Dir, c.Up)
	}
	return xform.UniformScale(s.opts.ViewScale)
}

// ToNDC runs a world-space point through projection·view·model and returns
// its normalised device coordinates.
func (f Frame) ToNDC(p mgl32.Vec3) mgl32.Vec3 {
	clip := xform.Apply(f.Projection.Mul4(f.View).Mul4(f.Model), p.Vec4(1))
	return mgl32.Vec3{clip[0] / clip[3], clip[1] / clip[3], clip[2] / clip[3]}
}
