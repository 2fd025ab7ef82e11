package window

import (
	"fmt"
)

// Window provides a platform window whose refresh events drive the engine.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetRefreshCallback sets the function called when the window needs to be redrawn, either
	// because the platform exposed it or because Refresh was called.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetRefreshCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the function called for key presses and releases.
	//
	// Parameters:
	//   - callback: function receiving the key code and whether it is down
	SetKeyCallback(callback func(keyCode uint32, down bool))

	// Refresh asks for the refresh callback to run on the next loop iteration.
	Refresh()

	// RequestClose asks the message loop to exit after the current iteration.
	RequestClose()

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was already closed
	Close() error

	// ProcessMessages runs the window message loop until the window is closed.
	ProcessMessages()

	Title() string
	Width() int
	Height() int
}

// platform is the windowing system behind an engineWindow.
type platform interface {
	pollEvents()
	shouldClose() bool
	requestClose()
	wake()
	destroy()
}

type engineWindow struct {
	title               string
	width, height       int
	minWidth, minHeight int
	maxWidth, maxHeight int

	platform       platform
	closed         bool
	refreshPending bool

	onUpdate  func()
	onRefresh func()
	onResize  func(width, height int)
	onKey     func(keyCode uint32, down bool)
}

var _ Window = &engineWindow{}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:          "oxy",
		width:          1280,
		height:         720,
		minWidth:       200,
		minHeight:      200,
		refreshPending: true,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// NewWindow creates and shows a GLFW window. It must be called from the main goroutine, which
// must also run ProcessMessages.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: an error if GLFW cannot create the window
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	p, err := newGLFWPlatform(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	w.platform = p
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetRefreshCallback(callback func()) {
	w.onRefresh = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyCallback(callback func(keyCode uint32, down bool)) {
	w.onKey = callback
}

func (w *engineWindow) Refresh() {
	w.refreshPending = true
	if !w.closed {
		w.platform.wake()
	}
}

func (w *engineWindow) RequestClose() {
	if !w.closed {
		w.platform.requestClose()
	}
}

func (w *engineWindow) IsRunning() bool {
	return !w.closed && !w.platform.shouldClose()
}

func (w *engineWindow) Close() error {
	if w.closed {
		return fmt.Errorf("window is already closed")
	}
	w.closed = true
	w.platform.destroy()
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		w.platform.pollEvents()
		if w.closed {
			return
		}
		if w.refreshPending {
			w.refreshPending = false
			if w.onRefresh != nil {
				w.onRefresh()
			}
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// The handle* methods are called by the platform from inside pollEvents.

func (w *engineWindow) handleResize(width, height int) {
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
	w.refreshPending = true
}

func (w *engineWindow) handleExpose() {
	w.refreshPending = true
}

func (w *engineWindow) handleKey(keyCode uint32, down bool) {
	if w.onKey != nil {
		w.onKey(keyCode, down)
	}
}
