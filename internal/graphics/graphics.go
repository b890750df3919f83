// Package graphics is the window and OpenGL side of the renderer: it opens a
// GLFW window with a core-profile context, turns window callbacks into
// loop events, uploads the grid mesh and texture once, and draws frames.
//
// Everything here must run on the main OS thread.
package graphics

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func init() {
	// GLFW and the GL context are bound to the thread that created them.
	runtime.LockOSThread()
}

// Guard runs fn and turns a panic carrying an error, which is how GLFW reports
// failures, into a returned error prefixed with step. Runtime errors and
// non-error panics are re-raised.
func Guard(step string, fn func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var rerr runtime.Error
		e, ok := r.(error)
		if !ok || errors.As(e, &rerr) {
			panic(r)
		}
		err = fmt.Errorf("graphics: %s: %w", step, e)
	}()
	return fn()
}

// glError returns the first pending OpenGL error, draining the rest.
func glError(step string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	for i := 0; i < 16 && gl.GetError() != gl.NO_ERROR; i++ {
	}
	return fmt.Errorf("graphics: %s: %s", step, glErrorName(code))
}

func glErrorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	}
	return fmt.Sprintf("GL error 0x%04x", code)
}
