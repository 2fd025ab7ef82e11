package renderer

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the graphics API a backend is built on.
type RendererBackendType int

const (
	// BackendTypeWGPU uses WebGPU through cogentcore/webgpu.
	BackendTypeWGPU RendererBackendType = iota
)

// RendererBackend is the graphics API side of the Renderer. The Renderer decides what to upload;
// the backend owns the device and performs the uploads.
type RendererBackend interface {
	// RegisterShaderModule creates the GPU shader module described by descriptor. Modules are
	// keyed by the descriptor label.
	//
	// Parameters:
	//   - descriptor: the shader module descriptor
	//
	// Returns:
	//   - error: an error if the module could not be created
	RegisterShaderModule(descriptor *wgpu.ShaderModuleDescriptor) error

	// ReleaseShaderModule releases the module registered under label. Unknown labels are ignored.
	//
	// Parameters:
	//   - label: the module label
	ReleaseShaderModule(label string)

	// InitUniformBuffer creates a uniform buffer of size bytes for binding, together with a bind
	// group exposing it, and stores them on provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created resources on
	//   - binding: the binding index
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if the resources could not be created
	InitUniformBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// Release releases the device and every module still registered.
	Release()
}
