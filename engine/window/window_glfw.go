package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/go-gl/glfw/v3.3/glfw"
)

type glfwPlatform struct {
	window *glfw.Window
}

var _ platform = &glfwPlatform{}

// newGLFWPlatform creates the GLFW window and routes its events to w.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func newGLFWPlatform(w *engineWindow) (*glfwPlatform, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// Rendering goes through WebGPU, so no OpenGL context is created.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}

	maxW, maxH := glfw.DontCare, glfw.DontCare
	if w.maxWidth > 0 && w.maxHeight > 0 {
		maxW, maxH = w.maxWidth, w.maxHeight
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, maxW, maxH)

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.handleKey(uint32(key), true)
		case glfw.Release:
			w.handleKey(uint32(key), false)
		}
	})

	// Framebuffer size is in pixels, which differs from the window size on high-DPI displays.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.handleResize(width, height)
	})

	win.SetRefreshCallback(func(_ *glfw.Window) {
		w.handleExpose()
	})

	w.width, w.height = win.GetFramebufferSize()
	common.Logger().Info("window created", "title", w.title, "width", w.width, "height", w.height)
	return &glfwPlatform{window: win}, nil
}

func (p *glfwPlatform) pollEvents() {
	glfw.PollEvents()
}

func (p *glfwPlatform) shouldClose() bool {
	return p.window.ShouldClose()
}

func (p *glfwPlatform) requestClose() {
	p.window.SetShouldClose(true)
}

// wake unblocks a pending event wait so a requested refresh runs promptly.
func (p *glfwPlatform) wake() {
	glfw.PostEmptyEvent()
}

func (p *glfwPlatform) destroy() {
	p.window.Destroy()
	glfw.Terminate()
}
