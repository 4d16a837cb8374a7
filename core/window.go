// Package core owns the GLFW window and its OpenGL context.
package core

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/go-gl/glfw/v3.3/glfw"

	"scene-renderer/input"
	"scene-renderer/logging"
)

func init() {
	// GLFW and the context must stay on the main thread.
	runtime.LockOSThread()
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Samples    int
	Fullscreen bool
	VSync      bool
	Logger     *log.Logger
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:   800,
		Height:  600,
		Title:   "Scene Renderer",
		Samples: 4,
		VSync:   true,
	}
}

// Window is a GLFW window with a current OpenGL 3.3 core context.
type Window struct {
	Handle *glfw.Window
	Title  string

	logger   *log.Logger
	onResize []func(width, height int)
}

func NewWindow(config WindowConfig) (*Window, error) {
	logger := config.Logger
	if logger == nil {
		logger = logging.New("window")
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Samples, config.Samples)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	}

	w := &Window{Handle: handle, Title: config.Title, logger: logger}
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		for _, fn := range w.onResize {
			fn(width, height)
		}
	})

	logger.Info("window created",
		"width", config.Width, "height", config.Height,
		"samples", config.Samples, "fullscreen", config.Fullscreen)
	return w, nil
}

// Attach forwards keyboard, mouse button and cursor events to d.
func (w *Window) Attach(d *input.DispatchTable) {
	w.Handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		d.HandleKey(input.Key(key), input.Action(action), input.ModifierKey(mods))
	})
	w.Handle.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		d.HandleMouseButton(input.MouseButton(b), input.Action(action), input.ModifierKey(mods))
	})
	w.Handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		d.HandleCursor(x, y)
	})
}

// OnResize registers fn for framebuffer size changes.
func (w *Window) OnResize(fn func(width, height int)) {
	w.onResize = append(w.onResize, fn)
}

func (w *Window) FramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

// SetCursorLocked hides and captures the cursor, or frees it.
func (w *Window) SetCursorLocked(locked bool) {
	mode := glfw.CursorNormal
	if locked {
		mode = glfw.CursorDisabled
	}
	w.Handle.SetInputMode(glfw.CursorMode, mode)
}

func (w *Window) SetCursorPos(x, y float64) {
	w.Handle.SetCursorPos(x, y)
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
	w.logger.Debug("window destroyed")
}
