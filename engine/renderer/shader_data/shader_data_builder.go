package shader_data

import "github.com/go-gl/mathgl/mgl32"

// ShaderDataBuilderOption is a functional option for configuring a ShaderData.
type ShaderDataBuilderOption func(*shaderData)

// WithOwner sets the shader instance that uses the data.
//
// Parameters:
//   - owner: the owner
//
// Returns:
//   - ShaderDataBuilderOption: a function that applies the owner option
func WithOwner(owner Owner) ShaderDataBuilderOption {
	return func(d *shaderData) {
		d.owner = owner
	}
}

// WithSlotValues overrides the initial slot values after the resource defaults are applied.
//
// Parameters:
//   - values: one value per slot, starting at Data0
//
// Returns:
//   - ShaderDataBuilderOption: a function that applies the values
func WithSlotValues(values ...mgl32.Vec4) ShaderDataBuilderOption {
	if len(values) > NumData {
		panic("shader_data: WithSlotValues accepts at most 4 values")
	}
	return func(d *shaderData) {
		for i, v := range values {
			d.slots[i].value = v
		}
	}
}
