package window

// Runtime runs one frame of the engine.
type Runtime interface {
	Invoke()
}

// RuntimeFunc adapts a function to Runtime.
type RuntimeFunc func()

func (f RuntimeFunc) Invoke() {
	f()
}

// ViewCallback connects a Window's refresh events to a Runtime. Each call runs one frame and
// then asks the window for another refresh, so the runtime keeps stepping while the window is
// open.
type ViewCallback interface {
	// Initialize sets the runtime to step. Calls before Initialize do nothing.
	//
	// Parameters:
	//   - rt: the runtime
	Initialize(rt Runtime)

	// Call runs one runtime frame and requests the next refresh.
	Call()

	// Frames returns how many frames Call has run.
	Frames() uint64
}

type viewCallback struct {
	view    Window
	runtime Runtime
	frames  uint64
}

var _ ViewCallback = &viewCallback{}

// NewViewCallback creates a ViewCallback for view and installs it as the view's refresh callback.
//
// Parameters:
//   - view: the window to drive
//
// Returns:
//   - ViewCallback: the callback
func NewViewCallback(view Window) ViewCallback {
	if view == nil {
		panic("window: NewViewCallback requires a window")
	}
	cb := &viewCallback{view: view}
	view.SetRefreshCallback(cb.Call)
	return cb
}

func (c *viewCallback) Initialize(rt Runtime) {
	c.runtime = rt
}

func (c *viewCallback) Call() {
	if c.runtime == nil {
		return
	}
	c.runtime.Invoke()
	c.frames++
	if c.view.IsRunning() {
		c.view.Refresh()
	}
}

func (c *viewCallback) Frames() uint64 {
	return c.frames
}
