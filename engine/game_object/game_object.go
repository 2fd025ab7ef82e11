package game_object

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_data"
)

type gameObject struct {
	id        uint64
	enabled   atomic.Bool
	ephemeral bool
	position  [3]float32
	fill      common.Color
	fx        effect.Effect

	releaseQueue    shader_data.ReleaseQueue
	pendingReleases int
}

// GameObject defines the interface for a renderable scene entity. A GameObject is painted with
// a fill color and optionally runs a shader Effect whose per-instance ShaderData it owns.
// Replacing the effect queues the previous ShaderData for release after the current frame.
type GameObject interface {
	shader_data.ReleaseObserver

	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Ephemeral returns whether this object is ephemeral.
	// Ephemeral objects are not persisted in the scene's registry when added.
	//
	// Returns:
	//   - bool: true if ephemeral
	Ephemeral() bool

	// Position returns the object's position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Fill returns the object's fill color.
	//
	// Returns:
	//   - common.Color: the fill color
	Fill() common.Color

	// Effect returns the shader instance painting this object, or nil.
	//
	// Returns:
	//   - effect.Effect: the effect or nil
	Effect() effect.Effect

	// PendingReleases returns the number of replaced ShaderData still waiting for the release
	// queue to flush.
	//
	// Returns:
	//   - int: the pending count
	PendingReleases() int

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetPosition sets the object's position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetFill sets the object's fill color.
	//
	// Parameters:
	//   - c: the fill color
	SetFill(c common.Color)

	// SetEffect replaces the object's shader instance. The previous instance's ShaderData is
	// queued for release on the object's release queue, or released immediately when the
	// object has none. Installing an effect whose data is still queued takes it back out of the
	// queue; an effect whose data was already released panics. Pass nil to remove the effect.
	//
	// Parameters:
	//   - e: the new effect, or nil
	SetEffect(e effect.Effect)

	// SetReleaseQueue sets the queue replaced ShaderData is deferred to. Scenes install their
	// frame queue when the object is added.
	//
	// Parameters:
	//   - q: the release queue, may be nil
	SetReleaseQueue(q shader_data.ReleaseQueue)

	// Destroy removes the effect, releasing its ShaderData the same way SetEffect does.
	Destroy()
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		fill: common.Opaque,
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Ephemeral() bool {
	return g.ephemeral
}

func (g *gameObject) Position() (x, y, z float32) {
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Fill() common.Color {
	return g.fill
}

func (g *gameObject) Effect() effect.Effect {
	return g.fx
}

func (g *gameObject) PendingReleases() int {
	return g.pendingReleases
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) SetFill(c common.Color) {
	g.fill = c
}

func (g *gameObject) SetEffect(e effect.Effect) {
	if g.fx == e {
		return
	}
	if e != nil {
		data := e.Data()
		if data.IsReleased() {
			panic(fmt.Sprintf("game_object: effect %s has released shader data", e.Name()))
		}
		if observer, ok := data.CancelRelease(); ok && observer == shader_data.ReleaseObserver(g) {
			g.pendingReleases--
		}
		data.SetOwner(e)
	}
	old := g.fx
	g.fx = e
	if old == nil {
		return
	}
	data := old.Data()
	data.SetOwner(nil)
	if g.releaseQueue == nil {
		data.Release()
		return
	}
	g.pendingReleases++
	data.QueueRelease(g.releaseQueue, g)
}

func (g *gameObject) SetReleaseQueue(q shader_data.ReleaseQueue) {
	g.releaseQueue = q
}

func (g *gameObject) Destroy() {
	g.SetEffect(nil)
}

func (g *gameObject) DidReleaseShaderData(d shader_data.ShaderData) {
	g.pendingReleases--
	common.Logger().Debug("game object shader data released", "id", g.id, "pending", g.pendingReleases)
}
