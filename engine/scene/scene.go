package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_data"
)

// FrameStats summarizes one call to Scene.Frame.
type FrameStats struct {
	// Synced is the number of objects whose shader data was synchronized.
	Synced int
	// Uploaded is the number of uniform slots written to the GPU.
	Uploaded int
	// Fallback is the number of objects drawn with the fallback appearance because their
	// shader resource no longer exists.
	Fallback int
	// Released is the number of ShaderData released by the end-of-frame flush.
	Released int
}

// Scene manages the renderable GameObjects of a view and drives the per-frame synchronization
// of their shader data: every enabled object with an effect is synced through the Renderer,
// then the scene's release queue is flushed so ShaderData replaced during the frame is freed
// only once nothing can still be reading it.
// Scenes can be hot-swapped via the Active flag to switch between different views or levels.
// Thread-safe for concurrent access; Frame itself must run on the frame thread.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// SetRenderer replaces the scene's renderer.
	//
	// Parameters:
	//   - r: the new renderer
	SetRenderer(r renderer.Renderer)

	// ReleaseQueue returns the queue flushed at the end of every frame.
	//
	// Returns:
	//   - shader_data.ReleaseQueue: the scene's release queue
	ReleaseQueue() shader_data.ReleaseQueue

	// Count returns the number of persisted GameObjects in the scene's registry. Does not include ephemeral objects.
	//
	// Returns:
	//   - int: count of non-ephemeral GameObjects in the registry
	Count() int

	// CountEphemeral returns the number of ephemeral GameObjects waiting for the next frame.
	//
	// Returns:
	//   - int: count of pending ephemeral GameObjects
	CountEphemeral() int

	// Add adds a GameObject to the scene and installs the scene's release queue on it. Objects
	// without an ID are assigned one. Ephemeral objects are drawn by the next frame only; other
	// objects are persisted in the registry for later lookup or removal by ID.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the assigned object ID
	Add(obj game_object.GameObject) uint64

	// Get retrieves a non-ephemeral GameObject by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove removes a non-ephemeral GameObject from the registry and destroys it. Its shader data
	// is released by the next end-of-frame flush.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Clear removes and destroys every object in the scene.
	Clear()

	// LastSync returns the renderer result of the object's most recent frame.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - renderer.SyncResult: the result
	//   - bool: false if the object was not synced by the last frame
	LastSync(id uint64) (renderer.SyncResult, bool)

	// Frame synchronizes the shader data of every enabled object with an effect, in ID order,
	// then flushes the release queue. Sync errors do not stop the frame; they are joined into
	// the returned error.
	//
	// Returns:
	//   - FrameStats: what the frame did
	//   - error: the joined sync errors, or nil
	Frame() (FrameStats, error)
}

type scene struct {
	mu     *sync.RWMutex
	name   string
	active bool
	r      renderer.Renderer

	registry  map[uint64]game_object.GameObject
	ephemeral []game_object.GameObject
	nextID    uint64

	releaseQueue shader_data.ReleaseQueue
	lastSync     map[uint64]renderer.SyncResult
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene drawing through r.
//
// Parameters:
//   - name: the name of the scene
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	s := &scene{
		mu:           &sync.RWMutex{},
		name:         name,
		r:            r,
		registry:     make(map[uint64]game_object.GameObject),
		nextID:       1,
		releaseQueue: shader_data.NewReleaseQueue(),
		lastSync:     make(map[uint64]renderer.SyncResult),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) SetRenderer(r renderer.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r = r
}

func (s *scene) ReleaseQueue() shader_data.ReleaseQueue {
	return s.releaseQueue
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) CountEphemeral() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ephemeral)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(obj)
}

func (s *scene) addLocked(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}
	obj.SetReleaseQueue(s.releaseQueue)
	if obj.Ephemeral() {
		s.ephemeral = append(s.ephemeral, obj)
	} else {
		s.registry[obj.ID()] = obj
	}
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.registry[id]
	if !ok {
		return
	}
	delete(s.registry, id)
	delete(s.lastSync, id)
	obj.Destroy()
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, obj := range s.registry {
		obj.Destroy()
		delete(s.registry, id)
	}
	for _, obj := range s.ephemeral {
		obj.Destroy()
	}
	s.ephemeral = nil
	s.lastSync = make(map[uint64]renderer.SyncResult)
}

func (s *scene) LastSync(id uint64) (renderer.SyncResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.lastSync[id]
	return result, ok
}

func (s *scene) Frame() (FrameStats, error) {
	s.mu.Lock()
	objects := make([]game_object.GameObject, 0, len(s.registry)+len(s.ephemeral))
	for _, obj := range s.registry {
		objects = append(objects, obj)
	}
	objects = append(objects, s.ephemeral...)
	ephemeral := s.ephemeral
	s.ephemeral = nil
	r := s.r
	s.mu.Unlock()

	sort.Slice(objects, func(i, j int) bool { return objects[i].ID() < objects[j].ID() })

	var stats FrameStats
	var errs []error
	results := make(map[uint64]renderer.SyncResult, len(objects))
	for _, obj := range objects {
		fx := obj.Effect()
		if !obj.Enabled() || fx == nil {
			continue
		}
		result, err := r.SyncShaderData(fx.Data())
		if err != nil {
			errs = append(errs, fmt.Errorf("object %d: %w", obj.ID(), err))
		}
		stats.Synced++
		stats.Uploaded += len(result.Uploaded.Indices())
		if result.Fallback {
			stats.Fallback++
		}
		results[obj.ID()] = result
	}

	// ephemeral objects are gone after the frame that drew them
	for _, obj := range ephemeral {
		obj.Destroy()
	}
	stats.Released = s.releaseQueue.Flush()

	s.mu.Lock()
	s.lastSync = results
	s.mu.Unlock()

	if stats.Fallback > 0 {
		common.Logger().Debug("scene frame used fallback appearance", "scene", s.Name(), "count", stats.Fallback)
	}
	return stats, errors.Join(errs...)
}
