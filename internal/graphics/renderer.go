package graphics

import (
	"fmt"
	"image"
	"log/slog"

	"isogrid/internal/loop"
	"isogrid/internal/mapgen"
	"isogrid/internal/scene"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Renderer owns every GPU resource of the tile scene. The mesh, texture and
// program are created by NewRenderer and never change afterwards, so each
// frame only binds them. It implements loop.FrameRenderer.
type Renderer struct {
	win *Window
	log *slog.Logger

	program    uint32
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	texture    uint32

	uModel       int32
	uView        int32
	uPerspective int32
	uDiffuse     int32
}

// RendererOptions are the upload-time settings.
type RendererOptions struct {
	// SRGB stores the texture as sRGB and enables sRGB framebuffer writes.
	SRGB bool
}

// NewRenderer compiles the tile program and uploads mesh and img. img rows
// must already be bottom-up. Any failure releases what was created.
func NewRenderer(win *Window, mesh mapgen.Mesh, img *image.NRGBA, opts RendererOptions, log *slog.Logger) (*Renderer, error) {
	r := &Renderer{win: win, log: log}
	if err := r.init(mesh, img, opts); err != nil {
		r.Close()
		return nil, err
	}
	log.Info("gpu resources ready",
		"tiles", mesh.TileCount(), "vertices", len(mesh.Vertices), "indices", len(mesh.Indices),
		"texture", img.Bounds().Size().String(), "srgb", opts.SRGB)
	return r, nil
}

func (r *Renderer) init(mesh mapgen.Mesh, img *image.NRGBA, opts RendererOptions) error {
	prog, err := newProgram(VertexShader, FragmentShader)
	if err != nil {
		return err
	}
	r.program = prog

	for _, u := range []struct {
		name string
		dst  *int32
	}{
		{"model", &r.uModel},
		{"view", &r.uView},
		{"perspective", &r.uPerspective},
		{"diffuse_tex", &r.uDiffuse},
	} {
		loc, err := uniformLocation(prog, u.name)
		if err != nil {
			return err
		}
		*u.dst = loc
	}

	if err := r.uploadMesh(mesh); err != nil {
		return err
	}
	if err := r.uploadTexture(img, opts.SRGB); err != nil {
		return err
	}
	if opts.SRGB {
		gl.Enable(gl.FRAMEBUFFER_SRGB)
	}
	return glError("setup")
}

func (r *Renderer) uploadMesh(mesh mapgen.Mesh) error {
	if len(mesh.Indices) == 0 {
		return fmt.Errorf("graphics: mesh is empty")
	}
	posLoc, err := attribLocation(r.program, "position")
	if err != nil {
		return err
	}
	texLoc, err := attribLocation(r.program, "tex_coords")
	if err != nil {
		return err
	}

	floats := mesh.Floats()
	stride := int32(mapgen.FloatsPerVertex * 4)

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(floats)*4, gl.Ptr(floats), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(posLoc)
	gl.VertexAttribPointer(posLoc, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(texLoc)
	gl.VertexAttribPointer(texLoc, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))

	gl.GenBuffers(1, &r.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	r.indexCount = int32(len(mesh.Indices))

	gl.BindVertexArray(0)
	return glError("upload mesh")
}

func (r *Renderer) uploadTexture(img *image.NRGBA, srgb bool) error {
	size := img.Bounds().Size()
	if img.Stride != size.X*4 {
		return fmt.Errorf("graphics: texture stride %d does not match width %d", img.Stride, size.X)
	}
	internal := int32(gl.RGBA8)
	if srgb {
		internal = gl.SRGB8_ALPHA8
	}

	gl.GenTextures(1, &r.texture)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return glError("upload texture")
}

// RenderFrame clears the window, issues the single indexed draw call with the
// frame's uniforms and draw parameters, and presents.
func (r *Renderer) RenderFrame(f scene.Frame) error {
	w, h := r.win.FramebufferSize()
	gl.Viewport(0, 0, int32(w), int32(h))

	gl.ClearColor(f.ClearColor[0], f.ClearColor[1], f.ClearColor[2], f.ClearColor[3])
	gl.ClearDepth(float64(f.ClearDepth))
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	applyParams(f.Params)

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.uModel, 1, false, &f.Model[0])
	gl.UniformMatrix4fv(r.uView, 1, false, &f.View[0])
	gl.UniformMatrix4fv(r.uPerspective, 1, false, &f.Projection[0])

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(f.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(f.MagFilter))
	gl.Uniform1i(r.uDiffuse, 0)

	gl.BindVertexArray(r.vao)
	gl.DrawElements(gl.TRIANGLES, r.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	if err := glError("draw"); err != nil {
		return err
	}
	return r.win.present()
}

func applyParams(p scene.DrawParams) {
	switch p.DepthTest {
	case scene.DepthAlways:
		gl.Disable(gl.DEPTH_TEST)
	case scene.DepthLess:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	case scene.DepthLessOrEqual:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
	}
	gl.DepthMask(p.DepthWrite)

	switch p.Blend {
	case scene.BlendAlpha:
		gl.Enable(gl.BLEND)
		// texture colour is straight alpha
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}
}

func glFilter(f scene.Filter) int32 {
	if f == scene.FilterLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

// Close deletes the GPU resources. It does not close the window.
func (r *Renderer) Close() {
	if r.texture != 0 {
		gl.DeleteTextures(1, &r.texture)
		r.texture = 0
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}

var (
	_ loop.EventSource   = (*Window)(nil)
	_ loop.FrameRenderer = (*Renderer)(nil)
)
