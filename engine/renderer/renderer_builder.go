package renderer

import "github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend supplies the backend instead of creating one from the backend type.
//
// Parameters:
//   - backend: the RendererBackend to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(backend RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithPreProcessor sets the pre-processor applied to shader sources before module creation.
//
// Parameters:
//   - pp: the pre-processor, defaults to shader.NewPreProcessor()
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPreProcessor(pp shader.PreProcessor) RendererBuilderOption {
	return func(r *renderer) {
		r.preProcessor = pp
	}
}
