package game_object

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_data"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject is enabled for rendering. Objects are enabled by default.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithEphemeral marks the GameObject as ephemeral. Ephemeral objects are drawn for the frame
// they are added in and are not kept in the scene's registry.
//
// Parameters:
//   - ephemeral: true to mark as ephemeral
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Ephemeral flag
func WithEphemeral(ephemeral bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.ephemeral = ephemeral
	}
}

// WithPosition sets the position of the GameObject.
//
// Parameters:
//   - x, y, z: the position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = [3]float32{x, y, z}
	}
}

// WithFill sets the fill color. Defaults to common.Opaque.
func WithFill(c common.Color) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.fill = c
	}
}

// WithEffect sets the shader instance painting the GameObject.
//
// Parameters:
//   - e: the effect
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the effect
func WithEffect(e effect.Effect) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.fx = e
	}
}

// WithReleaseQueue sets the queue replaced ShaderData is deferred to.
func WithReleaseQueue(q shader_data.ReleaseQueue) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.releaseQueue = q
	}
}
