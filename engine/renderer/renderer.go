package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_data"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_resource"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	modules map[string]bool

	backendType RendererBackendType
	backend     RendererBackend

	preProcessor shader.PreProcessor

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
}

// SyncResult reports what SyncShaderData did for one ShaderData.
type SyncResult struct {
	// Fallback is true when the shader resource no longer exists. Nothing was uploaded and the
	// object should be drawn with the default appearance.
	Fallback bool

	// VertexData holds the scalar value of every slot, packed for the vertex stream.
	VertexData [shader_data.NumData]float32

	// VertexDirty has the bits of the vertex data slots consumed by this sync.
	VertexDirty shader_data.DirtyMask

	// Uploaded has the bits of the uniform slots written to the GPU by this sync.
	Uploaded shader_data.DirtyMask
}

// Renderer is the consumer side of ShaderData. Each frame it reads the dirty mask of every
// visible ShaderData, uploads the uniforms that changed and clears exactly the bits it consumed.
type Renderer interface {
	// RegisterShaderResource creates the GPU shader module for a resource's WGSL source.
	// Resources without source and already registered resources are skipped.
	//
	// Parameters:
	//   - res: the shader resource
	//
	// Returns:
	//   - error: an error if module creation fails
	RegisterShaderResource(res shader_resource.ShaderResource) error

	// UnregisterShaderResource releases the module created for the named resource.
	//
	// Parameters:
	//   - name: the resource name
	UnregisterShaderResource(name string)

	// SyncShaderData consumes the dirty slots of d. Dirty uniform slots are uploaded through the
	// backend in a single batch; dirty vertex data slots are reported in the result. When the
	// shader resource is absent nothing is consumed and the result reports Fallback.
	//
	// Parameters:
	//   - d: the shader data to synchronize
	//
	// Returns:
	//   - SyncResult: what was consumed
	//   - error: an error if a uniform buffer could not be created; the affected bits stay dirty
	SyncShaderData(d shader_data.ShaderData) (SyncResult, error)

	// Release releases the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer. Unless a backend is supplied with WithBackend, a headless
// backend of backendType is created, which requires a GPU adapter.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if the backend could not acquire a device
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		modules:     make(map[string]bool),
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}
	if r.preProcessor == nil {
		r.preProcessor = shader.NewPreProcessor()
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(r.forceFallbackAdapter)
			if err != nil {
				return nil, err
			}
			r.backend = b
		}
	}
	return r, nil
}

// ShaderModuleDescriptor pre-processes a resource's source and builds its WGSL module descriptor.
//
// Parameters:
//   - res: the shader resource
//   - pp: the pre-processor expanding the source's annotations
//
// Returns:
//   - *wgpu.ShaderModuleDescriptor: the descriptor, labelled with the resource name
//   - error: an error if the source cannot be pre-processed
func ShaderModuleDescriptor(res shader_resource.ShaderResource, pp shader.PreProcessor) (*wgpu.ShaderModuleDescriptor, error) {
	code, err := pp.Process(res.Source())
	if err != nil {
		return nil, fmt.Errorf("shader resource %q: %w", res.Name(), err)
	}
	return &wgpu.ShaderModuleDescriptor{
		Label: res.Name(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: code,
		},
	}, nil
}

func (r *renderer) RegisterShaderResource(res shader_resource.ShaderResource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.Source() == "" || r.modules[res.Name()] {
		return nil
	}
	desc, err := ShaderModuleDescriptor(res, r.preProcessor)
	if err != nil {
		return err
	}
	if err := r.backend.RegisterShaderModule(desc); err != nil {
		return fmt.Errorf("shader resource %q: %w", res.Name(), err)
	}
	r.modules[res.Name()] = true
	return nil
}

func (r *renderer) UnregisterShaderResource(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.modules[name] {
		return
	}
	r.backend.ReleaseShaderModule(name)
	delete(r.modules, name)
}

func (r *renderer) SyncShaderData(d shader_data.ShaderData) (SyncResult, error) {
	var result SyncResult
	result.VertexData[0], result.VertexData[1], result.VertexData[2], result.VertexData[3] = d.CopyVertexData()

	res, ok := d.Resource().Resolve()
	if !ok {
		result.Fallback = true
		common.Logger().Warn("shader resource absent, drawing with fallback appearance")
		return result, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var writes []bind_group_provider.BufferWrite
	var syncErr error
	for _, i := range d.DirtyMask().Indices() {
		u, bound := d.Uniform(i)
		if !bound {
			result.VertexDirty |= 1 << uint(i)
			continue
		}
		provider, err := r.uniformProvider(res.Name(), i, u)
		if err != nil {
			syncErr = fmt.Errorf("%s %s: %w", res.Name(), i, err)
			break
		}
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: provider,
			Binding:  int(i),
			Data:     u.Marshal(),
		})
		result.Uploaded |= 1 << uint(i)
	}

	if len(writes) > 0 {
		r.backend.WriteBuffers(writes)
	}
	for _, i := range (result.Uploaded | result.VertexDirty).Indices() {
		d.DidUpdateUniform(i)
	}
	return result, syncErr
}

// uniformProvider returns the provider installed on u, creating its GPU buffer on first use.
func (r *renderer) uniformProvider(effectName string, index shader_data.DataIndex, u uniform.Uniform) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := u.Resource().(bind_group_provider.BindGroupProvider); ok && !p.IsReleased() {
		return p, nil
	}
	p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s %s", effectName, index))
	if err := r.backend.InitUniformBuffer(p, int(index), u.Size()); err != nil {
		p.Release()
		return nil, err
	}
	u.SetResource(p)
	return p, nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
	r.modules = make(map[string]bool)
}
