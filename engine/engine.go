// Package engine ties the window, the scenes and their renderers into a frame loop. The window's
// refresh events drive the engine through a window.ViewCallback, and each frame synchronizes the
// shader data of every active scene in ascending key order.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
)

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	window       window.Window
	viewCallback window.ViewCallback

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback func(deltaTime float32)
	frameLimit   time.Duration
	lastFrame    time.Time

	scenes map[int]scene.Scene
}

// Engine is the main entry point for the engine.
// It runs one frame per window refresh over the registered scenes.
type Engine interface {
	window.Runtime

	// Window returns the window driving the engine, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables periodic frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables periodic frame statistics.
	DisableProfiler()

	// SetTickCallback registers the function called at the start of each frame, before any scene
	// is synchronized. Use it for game logic and script updates.
	//
	// Parameters:
	//   - callback: function receiving the time since the previous frame in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// AddScene registers a scene at the given key. Scenes run in ascending key order.
	//
	// Parameters:
	//   - key: the order key (lower runs first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key.
	//
	// Parameters:
	//   - key: the key of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key, or nil.
	//
	// Parameters:
	//   - key: the key of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by order key.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Frame runs one frame and returns the combined statistics of the active scenes.
	// Scene errors do not stop the frame; they are joined into the returned error.
	//
	// Returns:
	//   - scene.FrameStats: the summed statistics
	//   - error: the joined scene errors, or nil
	Frame() (scene.FrameStats, error)

	// Run drives the engine from the window's refresh events until the window closes.
	//
	// Returns:
	//   - error: an error if the engine has no window
	Run() error

	// Quit asks the window loop to exit. Safe to call multiple times.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:       &sync.Mutex{},
		scenes:   make(map[int]scene.Scene),
		profiler: profiler.NewProfiler(),
	}

	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() error {
	if e.window == nil {
		return fmt.Errorf("engine has no window")
	}
	if e.viewCallback == nil {
		e.viewCallback = window.NewViewCallback(e.window)
		e.viewCallback.Initialize(e)
	}
	e.window.ProcessMessages()
	return nil
}

func (e *engine) Quit() {
	if e.window != nil && e.window.IsRunning() {
		e.window.RequestClose()
	}
}

// Invoke runs one frame for the window's view callback. Errors are logged.
func (e *engine) Invoke() {
	if _, err := e.Frame(); err != nil {
		common.Logger().Warn("frame completed with errors", "error", err)
	}
}

func (e *engine) Frame() (scene.FrameStats, error) {
	start := time.Now()
	e.mu.Lock()
	dt := float32(0)
	if !e.lastFrame.IsZero() {
		dt = float32(start.Sub(e.lastFrame).Seconds())
	}
	e.lastFrame = start
	tick := e.tickCallback
	active := e.activeScenesLocked()
	e.mu.Unlock()

	if tick != nil {
		tick(dt)
	}

	var total scene.FrameStats
	var errs []error
	for _, s := range active {
		stats, err := s.Frame()
		if err != nil {
			errs = append(errs, fmt.Errorf("scene %s: %w", s.Name(), err))
		}
		total.Synced += stats.Synced
		total.Uploaded += stats.Uploaded
		total.Fallback += stats.Fallback
		total.Released += stats.Released
	}

	e.mu.Lock()
	profiling, limit := e.profilingEnabled, e.frameLimit
	e.mu.Unlock()
	if profiling {
		e.profiler.Record(total)
		e.profiler.Tick()
	}

	if limit > 0 {
		if remaining := limit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return total, errors.Join(errs...)
}

func (e *engine) activeScenesLocked() []scene.Scene {
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// EnableProfiler enables periodic frame statistics in the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables periodic frame statistics.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

// SetFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
