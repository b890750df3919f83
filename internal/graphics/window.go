package graphics

import (
	"fmt"
	"log/slog"
	"time"

	"isogrid/internal/loop"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowOptions describe the window to open.
type WindowOptions struct {
	Width  int
	Height int
	Title  string
	VSync  bool
	SRGB   bool
}

// Window is a GLFW window with a current OpenGL context. It implements
// loop.EventSource.
type Window struct {
	win    *glfw.Window
	log    *slog.Logger
	events eventQueue
}

// Open initialises GLFW, creates the window and its 4.1 core context with a
// 24-bit depth buffer, and loads the GL function pointers.
func Open(opts WindowOptions, log *slog.Logger) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("graphics: glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	if opts.SRGB {
		glfw.WindowHint(glfw.SRGBCapable, glfw.True)
	}

	win, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("graphics: create window: %w", err)
	}
	win.MakeContextCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("graphics: gl init: %w", err)
	}

	w := &Window{win: win, log: log}
	w.events = eventQueue{wait: glfwWait, now: time.Now, shouldClose: win.ShouldClose}
	win.SetCloseCallback(func(*glfw.Window) {
		w.events.requestClose()
	})
	win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.push("resize", "width", width, "height", height)
	})
	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.push("focus", "focused", focused)
	})
	win.SetRefreshCallback(func(*glfw.Window) {
		w.push("refresh")
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		w.push("key", "key", key, "action", action)
	})

	log.Info("window opened",
		"width", opts.Width, "height", opts.Height,
		"gl_version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	return w, nil
}

func (w *Window) push(detail string, attrs ...any) {
	w.log.Debug("window event", append([]any{"event", detail}, attrs...)...)
	w.events.push(loop.Event{Kind: loop.EventOther, Detail: detail})
}

// Wait blocks in glfwWaitEventsTimeout until an event arrives or deadline
// passes. The first call returns loop.EventInit without blocking. A close
// request is reported ahead of any other queued event.
func (w *Window) Wait(deadline time.Time) loop.Event {
	return w.events.Wait(deadline)
}

// SetTitle replaces the window title.
func (w *Window) SetTitle(title string) {
	w.win.SetTitle(title)
}

// FramebufferSize returns the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.win.GetFramebufferSize()
}

// present swaps the back buffer to the screen.
func (w *Window) present() error {
	return Guard("swap buffers", func() error {
		w.win.SwapBuffers()
		return nil
	})
}

// Close destroys the window and shuts GLFW down.
func (w *Window) Close() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
	glfw.Terminate()
}
