package shader_resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

// ShaderResourceBuilderOption is a function that configures a shaderResource during construction.
type ShaderResourceBuilderOption func(*shaderResource)

// WithCategory sets the effect category.
//
// Parameters:
//   - category: the category
//
// Returns:
//   - ShaderResourceBuilderOption: a function that applies the category option
func WithCategory(category Category) ShaderResourceBuilderOption {
	return func(r *shaderResource) {
		r.category = category
	}
}

// WithSource sets the WGSL source and reads the data layout from its @oxy:data annotations.
// Bindings declared by annotations replace any declared earlier with WithVertexData or WithUniformData
// for the same index. A malformed annotation panics.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - ShaderResourceBuilderOption: a function that applies the source option
func WithSource(source string) ShaderResourceBuilderOption {
	return func(r *shaderResource) {
		bindings, err := ParseDataLayout(source)
		if err != nil {
			panic(fmt.Sprintf("shader_resource: %s: %v", r.name, err))
		}
		r.source = source
		for _, b := range bindings {
			r.bindings[b.Index] = nil
			r.setBinding(b)
		}
	}
}

// WithVertexData declares a data slot fed to the program as vertex data.
//
// Parameters:
//   - index: the data slot
//   - name: the parameter name
//   - defaultValue: the initial scalar value
//
// Returns:
//   - ShaderResourceBuilderOption: a function that applies the binding
func WithVertexData(index int, name string, defaultValue float32) ShaderResourceBuilderOption {
	return func(r *shaderResource) {
		r.setBinding(DataBinding{Index: index, Name: name, Default: mgl32.Vec4{defaultValue}})
	}
}

// WithUniformData declares a data slot uploaded to the program as a uniform.
//
// Parameters:
//   - index: the data slot
//   - name: the parameter name
//   - dataType: the uniform type, must be valid
//   - defaultValue: the initial value
//
// Returns:
//   - ShaderResourceBuilderOption: a function that applies the binding
func WithUniformData(index int, name string, dataType uniform.DataType, defaultValue mgl32.Vec4) ShaderResourceBuilderOption {
	return func(r *shaderResource) {
		if !dataType.IsValid() {
			panic(fmt.Sprintf("shader_resource: %s uniform %q has invalid type %s", r.name, name, dataType))
		}
		r.setBinding(DataBinding{Index: index, Name: name, Type: dataType, Default: defaultValue})
	}
}
