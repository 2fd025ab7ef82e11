package effect

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_data"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_resource"
)

type effect struct {
	name     string
	resource shader_resource.Ref
	data     shader_data.ShaderData
	alloc    common.Allocator
}

// Effect is a shader instance: a shared ShaderResource plus the ShaderData holding this
// instance's parameters. The Effect is the owner of its ShaderData.
type Effect interface {
	// Name returns the effect name, which is the resource name at creation time.
	//
	// Returns:
	//   - string: the effect name
	Name() string

	// Resource returns the reference to the effect's shader resource.
	//
	// Returns:
	//   - shader_resource.Ref: the resource reference
	Resource() shader_resource.Ref

	// Data returns the effect's per-instance parameters.
	//
	// Returns:
	//   - shader_data.ShaderData: the shader data
	Data() shader_data.ShaderData

	// Clone creates a new Effect sharing the resource with a clone of the shader data.
	//
	// Returns:
	//   - Effect: the clone, or nil on failure
	//   - error: an error wrapping common.ErrAllocationFailed
	Clone() (Effect, error)
}

var _ Effect = &effect{}

// NewEffect creates a shader instance for the resource behind ref. Uniforms are bound for every
// slot the resource's data layout declares as a uniform.
//
// Parameters:
//   - alloc: the allocator used for the shader data and its uniforms
//   - ref: the shader resource reference, must resolve
//   - options: functional options to further configure the effect
//
// Returns:
//   - Effect: the new effect
//   - error: an error if ref is absent or an allocation fails
func NewEffect(alloc common.Allocator, ref shader_resource.Ref, options ...EffectBuilderOption) (Effect, error) {
	res, ok := ref.Resolve()
	if !ok {
		return nil, fmt.Errorf("effect: shader resource is not registered")
	}
	e := &effect{
		name:     res.Name(),
		resource: ref,
		alloc:    alloc,
	}
	for _, option := range options {
		option(e)
	}

	data, err := shader_data.NewShaderData(alloc, ref, shader_data.WithOwner(e))
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", e.name, err)
	}
	for _, b := range res.DataBindings() {
		if !b.IsUniform() {
			continue
		}
		if _, err := data.BindUniform(alloc, shader_data.DataIndex(b.Index), b.Type); err != nil {
			data.Release()
			return nil, fmt.Errorf("effect %s: %w", e.name, err)
		}
	}
	e.data = data
	return e, nil
}

func (e *effect) Name() string {
	return e.name
}

func (e *effect) Resource() shader_resource.Ref {
	return e.resource
}

func (e *effect) Data() shader_data.ShaderData {
	return e.data
}

func (e *effect) Clone() (Effect, error) {
	data, err := e.data.Clone(e.alloc)
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", e.name, err)
	}
	c := &effect{
		name:     e.name,
		resource: e.resource,
		data:     data,
		alloc:    e.alloc,
	}
	data.SetOwner(c)
	return c, nil
}
