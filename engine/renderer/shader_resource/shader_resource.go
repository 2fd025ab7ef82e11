package shader_resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxDataBindings is the number of per-instance data slots an effect program can read.
const MaxDataBindings = 4

// Category groups effect programs by how they are applied to a paint.
type Category int

const (
	// CategoryDefault is the plain fill/stroke program.
	CategoryDefault Category = iota

	// CategoryFilter programs read a single input texture.
	CategoryFilter

	// CategoryComposite programs blend two input textures.
	CategoryComposite

	// CategoryGenerator programs produce output without input textures.
	CategoryGenerator
)

func (c Category) String() string {
	switch c {
	case CategoryDefault:
		return "default"
	case CategoryFilter:
		return "filter"
	case CategoryComposite:
		return "composite"
	case CategoryGenerator:
		return "generator"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// DataBinding describes how an effect program reads one per-instance data slot.
type DataBinding struct {
	// Index is the data slot in [0, MaxDataBindings).
	Index int

	// Name is the parameter name scripts use to address the slot (e.g. "intensity").
	Name string

	// Type is the uniform type of the slot, or uniform.DataTypeUnknown when the slot is fed as vertex data.
	Type uniform.DataType

	// Default is the slot's initial value.
	Default mgl32.Vec4
}

// IsUniform reports whether the slot is uploaded as a uniform.
func (b DataBinding) IsUniform() bool {
	return b.Type.IsValid()
}

// shaderResource is the implementation of the ShaderResource interface.
type shaderResource struct {
	name     string
	category Category
	source   string
	bindings [MaxDataBindings]*DataBinding
}

// ShaderResource is the shared, immutable description of an effect program: its identity,
// its WGSL source and the layout of the per-instance data it reads. Many ShaderData
// containers reference the same ShaderResource through a Ref.
type ShaderResource interface {
	// Name returns the unique effect name, e.g. "filter.blur".
	//
	// Returns:
	//   - string: the effect name
	Name() string

	// Category returns the effect category.
	//
	// Returns:
	//   - Category: the category
	Category() Category

	// Source returns the WGSL source of the program. The resource never compiles it.
	//
	// Returns:
	//   - string: the WGSL source, or an empty string if none was provided
	Source() string

	// DataBinding returns the binding declared for a data slot.
	//
	// Parameters:
	//   - index: the data slot
	//
	// Returns:
	//   - DataBinding: the binding
	//   - bool: false if the slot is not read by the program or the index is out of range
	DataBinding(index int) (DataBinding, bool)

	// DataBindings returns all declared bindings ordered by index.
	//
	// Returns:
	//   - []DataBinding: the bindings
	DataBindings() []DataBinding

	// DataIndexForName resolves a parameter name to its data slot.
	//
	// Parameters:
	//   - name: the parameter name
	//
	// Returns:
	//   - int: the slot index, or -1 if the name is not declared
	DataIndexForName(name string) int

	// UsesUniforms reports whether at least one slot is uploaded as a uniform.
	//
	// Returns:
	//   - bool: true if any binding is a uniform
	UsesUniforms() bool
}

var _ ShaderResource = &shaderResource{}

// NewShaderResource creates a ShaderResource with all specified options applied.
// An empty name or an invalid data layout is a programming error and panics.
//
// Parameters:
//   - name: the unique effect name
//   - options: functional options configuring the resource
//
// Returns:
//   - ShaderResource: the new resource
func NewShaderResource(name string, options ...ShaderResourceBuilderOption) ShaderResource {
	if name == "" {
		panic("shader_resource: NewShaderResource requires a non-empty name")
	}
	r := &shaderResource{name: name}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *shaderResource) Name() string {
	return r.name
}

func (r *shaderResource) Category() Category {
	return r.category
}

func (r *shaderResource) Source() string {
	return r.source
}

func (r *shaderResource) DataBinding(index int) (DataBinding, bool) {
	if index < 0 || index >= MaxDataBindings || r.bindings[index] == nil {
		return DataBinding{}, false
	}
	return *r.bindings[index], true
}

func (r *shaderResource) DataBindings() []DataBinding {
	out := make([]DataBinding, 0, MaxDataBindings)
	for _, b := range r.bindings {
		if b != nil {
			out = append(out, *b)
		}
	}
	return out
}

func (r *shaderResource) DataIndexForName(name string) int {
	for _, b := range r.bindings {
		if b != nil && b.Name == name {
			return b.Index
		}
	}
	return -1
}

func (r *shaderResource) UsesUniforms() bool {
	for _, b := range r.bindings {
		if b != nil && b.IsUniform() {
			return true
		}
	}
	return false
}

// setBinding validates and stores a single binding.
func (r *shaderResource) setBinding(b DataBinding) {
	if b.Index < 0 || b.Index >= MaxDataBindings {
		panic(fmt.Sprintf("shader_resource: %s data index %d outside [0, %d]", r.name, b.Index, MaxDataBindings-1))
	}
	if b.Name == "" {
		panic(fmt.Sprintf("shader_resource: %s data index %d has no name", r.name, b.Index))
	}
	if existing := r.DataIndexForName(b.Name); existing >= 0 && existing != b.Index {
		panic(fmt.Sprintf("shader_resource: %s data name %q already bound to index %d", r.name, b.Name, existing))
	}
	r.bindings[b.Index] = &b
}
