package renderer

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_data"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_resource"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeBackend records calls instead of touching a GPU.
type fakeBackend struct {
	modules  map[string]string
	inits    int
	initErr  error
	writes   []bind_group_provider.BufferWrite
	released bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{modules: make(map[string]string)}
}

func (f *fakeBackend) RegisterShaderModule(descriptor *wgpu.ShaderModuleDescriptor) error {
	f.modules[descriptor.Label] = descriptor.WGSLDescriptor.Code
	return nil
}

func (f *fakeBackend) ReleaseShaderModule(label string) {
	delete(f.modules, label)
}

func (f *fakeBackend) InitUniformBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error {
	if f.initErr != nil {
		return f.initErr
	}
	f.inits++
	return nil
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeBackend) Release() {
	f.released = true
}

const blurSource = `
//@oxy:data 0 radius vertex 2
//@oxy:data 1 weights vec3
@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`

func setup(t *testing.T) (*fakeBackend, Renderer, shader_resource.Registry, shader_data.ShaderData) {
	t.Helper()
	backend := newFakeBackend()
	r, err := NewRenderer(BackendTypeWGPU, WithBackend(backend))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	reg := shader_resource.NewRegistry()
	ref, err := reg.Register(shader_resource.NewShaderResource("filter.blur", shader_resource.WithSource(blurSource)))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	alloc := common.NewHeapAllocator()
	d, err := shader_data.NewShaderData(alloc, ref)
	if err != nil {
		t.Fatalf("NewShaderData: %v", err)
	}
	if _, err := d.BindUniform(alloc, shader_data.Data1, uniform.DataTypeVec3); err != nil {
		t.Fatalf("BindUniform: %v", err)
	}
	return backend, r, reg, d
}

func TestSyncConsumesAllDirtySlots(t *testing.T) {
	backend, r, _, d := setup(t)
	d.SetSlotValue(shader_data.Data1, mgl32.Vec4{1, 2, 3, 0})

	result, err := r.SyncShaderData(d)
	if err != nil {
		t.Fatalf("SyncShaderData: %v", err)
	}
	if result.Fallback {
		t.Fatal("unexpected fallback")
	}
	if result.Uploaded != 1<<1 {
		t.Fatalf("Uploaded = %s, want {1}", result.Uploaded)
	}
	if result.VertexDirty != 0b1101 {
		t.Fatalf("VertexDirty = %s, want {0,2,3}", result.VertexDirty)
	}
	if result.VertexData[0] != 2 {
		t.Fatalf("VertexData[0] = %v, want the radius default", result.VertexData[0])
	}
	if !d.DirtyMask().IsEmpty() {
		t.Fatalf("DirtyMask() = %s after sync", d.DirtyMask())
	}
	if backend.inits != 1 || len(backend.writes) != 1 {
		t.Fatalf("inits = %d, writes = %d", backend.inits, len(backend.writes))
	}
	w := backend.writes[0]
	if w.Binding != 1 || len(w.Data) != 16 || w.Provider.Label() != "filter.blur Data1" {
		t.Fatalf("unexpected write %+v", w)
	}
	u, _ := d.Uniform(shader_data.Data1)
	if u.Resource() != w.Provider {
		t.Fatal("provider not installed as the uniform resource")
	}
}

func TestSyncUploadsOnlyChangedSlots(t *testing.T) {
	backend, r, _, d := setup(t)
	r.SyncShaderData(d)
	backend.writes = nil

	result, _ := r.SyncShaderData(d)
	if result.Uploaded != 0 || result.VertexDirty != 0 || len(backend.writes) != 0 {
		t.Fatal("clean data was uploaded again")
	}

	d.SetVertexData(shader_data.Data0, 5)
	d.SetVertexData(shader_data.Data1, 7)
	d.SetVertexData(shader_data.Data1, 8)
	result, _ = r.SyncShaderData(d)
	if result.Uploaded != 1<<1 || result.VertexDirty != 1<<0 {
		t.Fatalf("Uploaded = %s, VertexDirty = %s", result.Uploaded, result.VertexDirty)
	}
	if len(backend.writes) != 1 || backend.inits != 1 {
		t.Fatalf("writes = %d, inits = %d; want one write and no new buffer", len(backend.writes), backend.inits)
	}
}

func TestSyncFallbackWhenResourceDestroyed(t *testing.T) {
	backend, r, reg, d := setup(t)
	reg.Destroy(d.Resource())

	result, err := r.SyncShaderData(d)
	if err != nil || !result.Fallback {
		t.Fatalf("result = %+v, err = %v", result, err)
	}
	if len(backend.writes) != 0 || d.DirtyMask() != shader_data.DirtyAll {
		t.Fatal("absent resource still consumed dirty slots")
	}
}

func TestSyncBufferFailureKeepsSlotDirty(t *testing.T) {
	backend, r, _, d := setup(t)
	backend.initErr = errors.New("out of device memory")

	if _, err := r.SyncShaderData(d); err == nil {
		t.Fatal("expected an error")
	}
	if !d.IsDirty(shader_data.Data1) {
		t.Fatal("failed upload cleared the dirty bit")
	}

	backend.initErr = nil
	if _, err := r.SyncShaderData(d); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !d.DirtyMask().IsEmpty() {
		t.Fatal("retry did not consume the slots")
	}
}

func TestReleasedUniformReleasesProvider(t *testing.T) {
	_, r, _, d := setup(t)
	r.SyncShaderData(d)
	u, _ := d.Uniform(shader_data.Data1)
	provider := u.Resource().(bind_group_provider.BindGroupProvider)

	d.Release()
	if !provider.IsReleased() {
		t.Fatal("releasing the data did not release the GPU provider")
	}
}

func TestRegisterShaderResource(t *testing.T) {
	backend, r, _, _ := setup(t)
	res := shader_resource.NewShaderResource("filter.blur", shader_resource.WithSource(blurSource))
	if err := r.RegisterShaderResource(res); err != nil {
		t.Fatalf("RegisterShaderResource: %v", err)
	}
	if err := r.RegisterShaderResource(res); err != nil {
		t.Fatalf("second RegisterShaderResource: %v", err)
	}
	if !strings.Contains(backend.modules["filter.blur"], "@group(1) @binding(1) var<uniform> weights: vec3<f32>;") {
		t.Fatalf("module not created from the processed source:\n%s", backend.modules["filter.blur"])
	}
	if err := r.RegisterShaderResource(shader_resource.NewShaderResource("empty")); err != nil || len(backend.modules) != 1 {
		t.Fatal("resource without source created a module")
	}

	r.UnregisterShaderResource("filter.blur")
	if len(backend.modules) != 0 {
		t.Fatal("module not released")
	}
	r.Release()
	if !backend.released {
		t.Fatal("backend not released")
	}
}

func TestShaderModuleDescriptor(t *testing.T) {
	res := shader_resource.NewShaderResource("filter.blur", shader_resource.WithSource(blurSource))
	pp := shader.NewPreProcessor(shader.WithBindGroup(2))
	desc, err := ShaderModuleDescriptor(res, pp)
	if err != nil {
		t.Fatalf("ShaderModuleDescriptor: %v", err)
	}
	want, _ := shader.NewPreProcessor(shader.WithBindGroup(2)).Process(blurSource)
	if desc.Label != "filter.blur" || desc.WGSLDescriptor == nil || desc.WGSLDescriptor.Code != want {
		t.Fatalf("unexpected descriptor %+v", desc)
	}

	bad := shader_resource.NewShaderResource("filter.bad", shader_resource.WithSource("//@oxy:include nothing"))
	if _, err := ShaderModuleDescriptor(bad, pp); err == nil {
		t.Fatal("expected pre-processing error")
	}
}

func TestRegisterShaderResourcePreProcessError(t *testing.T) {
	backend, r, _, _ := setup(t)
	bad := shader_resource.NewShaderResource("filter.bad", shader_resource.WithSource("//@oxy:include nothing"))
	if err := r.RegisterShaderResource(bad); err == nil {
		t.Fatal("expected error")
	}
	if len(backend.modules) != 0 {
		t.Fatal("module created from an invalid source")
	}
}
