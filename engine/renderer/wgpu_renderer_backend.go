package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuRendererBackendImpl is a headless WebGPU backend. It never configures a surface: effect
// uniforms only need a device and a queue.
type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter

	modules map[string]*wgpu.ShaderModule
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(forceFallbackAdapter bool) (RendererBackend, error) {
	runtime.LockOSThread()
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("failed to get GPU adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Effect Device",
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("failed to get GPU device: %w", err)
	}

	info := adapter.GetInfo()
	common.Logger().Info("wgpu device ready",
		"adapter", info.Name,
		"backend", info.BackendType.String(),
		"fallback", forceFallbackAdapter,
	)

	return &wgpuRendererBackendImpl{
		mu:       &sync.Mutex{},
		device:   device,
		queue:    device.GetQueue(),
		instance: instance,
		adapter:  adapter,
		modules:  make(map[string]*wgpu.ShaderModule),
	}, nil
}

func (b *wgpuRendererBackendImpl) RegisterShaderModule(descriptor *wgpu.ShaderModuleDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.modules[descriptor.Label]; exists {
		return nil
	}
	module, err := b.device.CreateShaderModule(descriptor)
	if err != nil {
		return err
	}
	b.modules[descriptor.Label] = module
	return nil
}

func (b *wgpuRendererBackendImpl) ReleaseShaderModule(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if module, ok := b.modules[label]; ok {
		module.Release()
		delete(b.modules, label)
	}
}

func (b *wgpuRendererBackendImpl) InitUniformBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := provider.Buffer(binding)
	if buf == nil {
		var err error
		buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: provider.Label() + " Uniform Buffer",
			Size:  size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		provider.SetBuffer(binding, buf)
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: provider.Label() + " Bind Group Layout",
			Entries: []wgpu.BindGroupLayoutEntry{{
				Binding:    uint32(binding),
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			}},
		})
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  provider.Label() + " Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: uint32(binding),
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for label, module := range b.modules {
		module.Release()
		delete(b.modules, label)
	}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}
