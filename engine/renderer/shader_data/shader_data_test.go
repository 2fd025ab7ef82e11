package shader_data

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_resource"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

type testOwner string

func (o testOwner) Name() string { return string(o) }

func newRef(t *testing.T, options ...shader_resource.ShaderResourceBuilderOption) (shader_resource.Registry, shader_resource.Ref) {
	t.Helper()
	reg := shader_resource.NewRegistry()
	ref, err := reg.Register(shader_resource.NewShaderResource("filter.test", options...))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg, ref
}

func newData(t *testing.T, alloc common.Allocator, ref shader_resource.Ref) ShaderData {
	t.Helper()
	d, err := NewShaderData(alloc, ref)
	if err != nil {
		t.Fatalf("NewShaderData: %v", err)
	}
	return d
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestNewShaderDataAllDirty(t *testing.T) {
	_, ref := newRef(t)
	d := newData(t, common.NewHeapAllocator(), ref)
	if d.DirtyMask() != DirtyAll {
		t.Fatalf("DirtyMask() = %s, want all", d.DirtyMask())
	}
	a, b, c, e := d.CopyVertexData()
	if a != 0 || b != 0 || c != 0 || e != 0 {
		t.Fatalf("fresh data has values %v %v %v %v", a, b, c, e)
	}
	if !d.Resource().Equal(ref) {
		t.Fatal("Resource() does not return the creation ref")
	}
}

func TestNewShaderDataAppliesResourceDefaults(t *testing.T) {
	_, ref := newRef(t,
		shader_resource.WithVertexData(0, "intensity", 0.5),
		shader_resource.WithUniformData(2, "tint", uniform.DataTypeVec4, mgl32.Vec4{1, 0, 0, 1}),
	)
	d := newData(t, common.NewHeapAllocator(), ref)
	if got := d.VertexData(Data0); got != 0.5 {
		t.Fatalf("VertexData(0) = %v, want 0.5", got)
	}
	if got := d.SlotValue(Data2); got != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Fatalf("SlotValue(2) = %v", got)
	}
}

func TestVertexDataRoundTrip(t *testing.T) {
	_, ref := newRef(t)
	d := newData(t, common.NewHeapAllocator(), ref)
	values := []float32{0, 1, -3.25, 1e6}
	for i := DataMin; i <= DataMax; i++ {
		d.SetVertexData(i, values[i])
	}
	for i := DataMin; i <= DataMax; i++ {
		if got := d.VertexData(i); got != values[i] {
			t.Fatalf("VertexData(%d) = %v, want %v", i, got, values[i])
		}
	}
	a, b, c, e := d.CopyVertexData()
	if a != 0 || b != 1 || c != -3.25 || e != 1e6 {
		t.Fatalf("CopyVertexData() = %v %v %v %v", a, b, c, e)
	}
}

func TestDirtyBitsAreIndependent(t *testing.T) {
	_, ref := newRef(t)
	d := newData(t, common.NewHeapAllocator(), ref)
	for i := DataMin; i <= DataMax; i++ {
		d.DidUpdateUniform(i)
	}
	if !d.DirtyMask().IsEmpty() {
		t.Fatalf("DirtyMask() = %s after consuming all", d.DirtyMask())
	}

	d.SetVertexData(Data1, 2)
	d.SetSlotValue(Data3, mgl32.Vec4{1, 2, 3, 4})
	if d.DirtyMask() != DirtyMask(1<<1|1<<3) {
		t.Fatalf("DirtyMask() = %s, want {1,3}", d.DirtyMask())
	}

	d.DidUpdateUniform(Data1)
	if d.IsDirty(Data1) || !d.IsDirty(Data3) {
		t.Fatalf("DidUpdateUniform(1) cleared the wrong bits: %s", d.DirtyMask())
	}
	if d.DirtyMask().String() != "{3}" {
		t.Fatalf("String() = %s", d.DirtyMask())
	}
}

func TestIndexOutOfRangePanics(t *testing.T) {
	_, ref := newRef(t)
	d := newData(t, common.NewHeapAllocator(), ref)
	for _, i := range []DataIndex{DataUnknown, 4, 100} {
		expectPanic(t, "VertexData", func() { d.VertexData(i) })
		expectPanic(t, "SetVertexData", func() { d.SetVertexData(i, 1) })
		expectPanic(t, "DidUpdateUniform", func() { d.DidUpdateUniform(i) })
		expectPanic(t, "Uniform", func() { d.Uniform(i) })
	}
}

func TestBindUniform(t *testing.T) {
	_, ref := newRef(t)
	alloc := common.NewHeapAllocator()
	d := newData(t, alloc, ref)
	d.SetSlotValue(Data2, mgl32.Vec4{0.1, 0.2, 0.3, 0.4})

	if _, ok := d.Uniform(Data2); ok {
		t.Fatal("Uniform present before BindUniform")
	}
	u, err := d.BindUniform(alloc, Data2, uniform.DataTypeVec3)
	if err != nil {
		t.Fatalf("BindUniform: %v", err)
	}
	if got := u.Value(); got[0] != 0.1 || got[1] != 0.2 || got[2] != 0.3 {
		t.Fatalf("uniform not seeded from slot: %v", got)
	}
	again, err := d.BindUniform(alloc, Data2, uniform.DataTypeVec3)
	if err != nil || again != u {
		t.Fatal("BindUniform with the same type is not idempotent")
	}
	if d.DataType(Data2) != uniform.DataTypeVec3 {
		t.Fatalf("DataType(2) = %s", d.DataType(Data2))
	}

	d.SetSlotValue(Data2, mgl32.Vec4{1, 2, 3, 4})
	if got := u.Value(); got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("slot write not mirrored into uniform: %v", got)
	}
	got, ok := d.Uniform(Data2)
	if !ok || got != u {
		t.Fatal("Uniform(2) does not return the bound uniform")
	}
}

func TestBindUniformTypeMismatchPanics(t *testing.T) {
	_, ref := newRef(t)
	alloc := common.NewHeapAllocator()
	d := newData(t, alloc, ref)
	if _, err := d.BindUniform(alloc, Data0, uniform.DataTypeVec4); err != nil {
		t.Fatalf("BindUniform: %v", err)
	}
	expectPanic(t, "mismatch", func() { d.BindUniform(alloc, Data0, uniform.DataTypeMat4) })
	expectPanic(t, "unknown", func() { d.BindUniform(alloc, Data1, uniform.DataTypeUnknown) })
}

func TestBindUniformAllocationFailure(t *testing.T) {
	_, ref := newRef(t)
	alloc := common.NewBudgetAllocator(containerSize + 8)
	d := newData(t, alloc, ref)
	_, err := d.BindUniform(alloc, Data0, uniform.DataTypeMat4)
	if !errors.Is(err, common.ErrAllocationFailed) {
		t.Fatalf("err = %v, want ErrAllocationFailed", err)
	}
	if d.DataType(Data0) != uniform.DataTypeUnknown {
		t.Fatal("failed bind left a type behind")
	}
}

func TestSetUniformValueMatrix(t *testing.T) {
	_, ref := newRef(t)
	alloc := common.NewHeapAllocator()
	d := newData(t, alloc, ref)
	expectPanic(t, "unbound", func() { d.SetUniformValue(Data1, 1) })

	u, _ := d.BindUniform(alloc, Data1, uniform.DataTypeMat4)
	d.DidUpdateUniform(Data1)
	ident := mgl32.Ident4()
	d.SetUniformValue(Data1, ident[:]...)
	if !d.IsDirty(Data1) {
		t.Fatal("SetUniformValue did not mark the slot dirty")
	}
	if got := u.Value(); got[15] != 1 || got[5] != 1 || got[1] != 0 {
		t.Fatalf("matrix not written: %v", got)
	}
}

func TestUniformAbsentAfterResourceDestroyed(t *testing.T) {
	reg, ref := newRef(t)
	alloc := common.NewHeapAllocator()
	d := newData(t, alloc, ref)
	if _, err := d.BindUniform(alloc, Data0, uniform.DataTypeScalar); err != nil {
		t.Fatalf("BindUniform: %v", err)
	}
	reg.Destroy(ref)

	if u, ok := d.Uniform(Data0); ok || u != nil {
		t.Fatal("Uniform present after the resource was destroyed")
	}
	d.SetVertexData(Data0, 3)
	if d.VertexData(Data0) != 3 {
		t.Fatal("slot storage unusable after the resource was destroyed")
	}
}

func TestDataIndexForName(t *testing.T) {
	reg, ref := newRef(t, shader_resource.WithVertexData(3, "radius", 1))
	d := newData(t, common.NewHeapAllocator(), ref)
	tests := map[string]DataIndex{
		"radius": Data3,
		"r":      Data0,
		"Green":  Data1,
		"x2":     Data2,
		"alpha":  Data3,
		"bogus":  DataUnknown,
	}
	for name, want := range tests {
		if got := d.DataIndexForName(name); got != want {
			t.Errorf("DataIndexForName(%q) = %s, want %s", name, got, want)
		}
	}
	reg.Destroy(ref)
	if got := d.DataIndexForName("radius"); got != DataUnknown {
		t.Errorf("resource name resolved after destroy: %s", got)
	}
}

func TestOwner(t *testing.T) {
	_, ref := newRef(t)
	d, err := NewShaderData(common.NewHeapAllocator(), ref, WithOwner(testOwner("blur")))
	if err != nil {
		t.Fatalf("NewShaderData: %v", err)
	}
	if d.Owner().Name() != "blur" {
		t.Fatalf("Owner() = %v", d.Owner())
	}
	d.SetVertexData(Data0, 4)
	d.SetOwner(testOwner("glow"))
	if d.Owner().Name() != "glow" || d.VertexData(Data0) != 4 {
		t.Fatal("SetOwner changed slot data or did not rebind")
	}
}

func TestClone(t *testing.T) {
	_, ref := newRef(t)
	alloc := common.NewHeapAllocator()
	d, _ := NewShaderData(alloc, ref, WithOwner(testOwner("blur")))
	d.SetVertexData(Data0, 1)
	d.SetSlotValue(Data2, mgl32.Vec4{1, 2, 3, 4})
	if _, err := d.BindUniform(alloc, Data2, uniform.DataTypeVec4); err != nil {
		t.Fatalf("BindUniform: %v", err)
	}
	d.AttachProxy()
	for i := DataMin; i <= DataMax; i++ {
		d.DidUpdateUniform(i)
	}

	c, err := d.Clone(alloc)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if c.DirtyMask() != DirtyAll {
		t.Fatalf("clone DirtyMask() = %s, want all", c.DirtyMask())
	}
	if !c.Resource().Equal(d.Resource()) {
		t.Fatal("clone does not share the resource ref")
	}
	if c.Proxy() != nil || c.Owner() != nil {
		t.Fatal("clone carried over the proxy or the owner")
	}
	for i := DataMin; i <= DataMax; i++ {
		if c.SlotValue(i) != d.SlotValue(i) {
			t.Fatalf("slot %d differs after clone", i)
		}
	}
	srcU, _ := d.Uniform(Data2)
	cloneU, ok := c.Uniform(Data2)
	if !ok || cloneU == srcU || c.DataType(Data2) != uniform.DataTypeVec4 {
		t.Fatal("clone does not own a copy of the bound uniform")
	}

	c.SetVertexData(Data0, 9)
	c.SetSlotValue(Data2, mgl32.Vec4{})
	if d.VertexData(Data0) != 1 || srcU.Value()[3] != 4 {
		t.Fatal("mutating the clone affected the source")
	}
	if !d.DirtyMask().IsEmpty() {
		t.Fatal("mutating the clone dirtied the source")
	}
}

func TestCloneAllocationFailureRollsBack(t *testing.T) {
	_, ref := newRef(t)
	alloc := common.NewHeapAllocator()
	d := newData(t, alloc, ref)
	d.BindUniform(alloc, Data0, uniform.DataTypeMat4)
	d.BindUniform(alloc, Data1, uniform.DataTypeMat4)

	// room for the container and one matrix only
	budget := common.NewBudgetAllocator(containerSize + uniform.DataTypeMat4.Size())
	c, err := d.Clone(budget)
	if !errors.Is(err, common.ErrAllocationFailed) || c != nil {
		t.Fatalf("Clone = %v, %v; want allocation failure", c, err)
	}
	if budget.InUse() != 0 {
		t.Fatalf("failed clone leaked %d bytes", budget.InUse())
	}

	if _, err := d.Clone(common.NewBudgetAllocator(1)); !errors.Is(err, common.ErrAllocationFailed) {
		t.Fatalf("container reservation failure not reported: %v", err)
	}
	if _, ok := d.Uniform(Data1); !ok {
		t.Fatal("source changed by a failed clone")
	}
}

func TestReleaseReturnsEverything(t *testing.T) {
	_, ref := newRef(t)
	alloc := common.NewHeapAllocator()
	d := newData(t, alloc, ref)
	d.BindUniform(alloc, Data0, uniform.DataTypeVec2)
	d.BindUniform(alloc, Data3, uniform.DataTypeMat3)
	p := d.AttachProxy()

	d.Release()
	if alloc.InUse() != 0 {
		t.Fatalf("InUse() = %d after Release", alloc.InUse())
	}
	if !p.IsDetached() || !d.IsReleased() {
		t.Fatal("Release did not detach the proxy")
	}
	d.Release()
	expectPanic(t, "use after release", func() { d.VertexData(Data0) })
}

func TestNewShaderDataAllocationFailure(t *testing.T) {
	_, ref := newRef(t)
	d, err := NewShaderData(common.NewBudgetAllocator(1), ref)
	if !errors.Is(err, common.ErrAllocationFailed) || d != nil {
		t.Fatalf("NewShaderData = %v, %v", d, err)
	}
}

func TestQueueRelease(t *testing.T) {
	_, ref := newRef(t)
	alloc := common.NewHeapAllocator()
	d := newData(t, alloc, ref)
	queue := NewReleaseQueue()

	var released []ShaderData
	observer := ReleaseObserverFunc(func(d ShaderData) { released = append(released, d) })
	d.QueueRelease(queue, observer)
	expectPanic(t, "double queue", func() { d.QueueRelease(queue, observer) })

	// still usable until the flush
	d.SetVertexData(Data0, 2)
	if queue.Len() != 1 || len(released) != 0 {
		t.Fatalf("Len() = %d, released = %d before flush", queue.Len(), len(released))
	}

	if n := queue.Flush(); n != 1 {
		t.Fatalf("Flush() = %d, want 1", n)
	}
	if len(released) != 1 || released[0] != d || !d.IsReleased() {
		t.Fatal("observer not notified with the released data")
	}
	if alloc.InUse() != 0 {
		t.Fatalf("InUse() = %d after flush", alloc.InUse())
	}
	if queue.Flush() != 0 {
		t.Fatal("second flush released entries again")
	}
}

func TestCancelRelease(t *testing.T) {
	_, ref := newRef(t)
	alloc := common.NewHeapAllocator()
	kept := newData(t, alloc, ref)
	dropped := newData(t, alloc, ref)
	queue := NewReleaseQueue()

	if _, ok := kept.CancelRelease(); ok {
		t.Fatal("CancelRelease succeeded on unqueued data")
	}

	var released []ShaderData
	observer := ReleaseObserverFunc(func(d ShaderData) { released = append(released, d) })
	kept.QueueRelease(queue, observer)
	dropped.QueueRelease(queue, nil)
	if !kept.IsQueued() {
		t.Fatal("IsQueued() = false after QueueRelease")
	}

	if obs, ok := kept.CancelRelease(); !ok || obs == nil {
		t.Fatalf("CancelRelease() = %v, %v", obs, ok)
	}
	if kept.IsQueued() || queue.Len() != 1 {
		t.Fatalf("IsQueued() = %v, Len() = %d after cancel", kept.IsQueued(), queue.Len())
	}

	queue.Flush()
	if kept.IsReleased() || !dropped.IsReleased() || len(released) != 0 {
		t.Fatal("flush touched the cancelled entry")
	}

	// can be queued again after a cancel
	kept.QueueRelease(queue, observer)
	queue.Flush()
	if !kept.IsReleased() || len(released) != 1 {
		t.Fatal("requeued data not released")
	}
}
