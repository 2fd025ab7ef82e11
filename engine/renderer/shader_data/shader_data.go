package shader_data

import (
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader_resource"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
	"github.com/go-gl/mathgl/mgl32"
)

// Owner is the shader instance currently using a ShaderData.
type Owner interface {
	// Name returns the effect name of the shader instance.
	Name() string
}

// slot is a single data slot: its value, the uniform it is synchronized with once bound, and
// the uniform's data type. dataType never changes after the first bind.
type slot struct {
	value    mgl32.Vec4
	uniform  uniform.Uniform
	alloc    common.Allocator
	dataType uniform.DataType
}

// shaderData is the implementation of the ShaderData interface.
type shaderData struct {
	slots    [NumData]slot
	resource shader_resource.Ref
	owner    Owner
	proxy    *proxy
	dirty    DirtyMask
	alloc    common.Allocator
	queue    ReleaseQueue
	released bool
}

// containerSize is the number of bytes a ShaderData reserves from its allocator.
var containerSize = uint64(unsafe.Sizeof(shaderData{}))

// ShaderData holds the per-instance parameters a renderable feeds into a shared effect program.
// It owns four data slots, tracks which of them changed since the renderer last consumed them,
// references (without owning) the ShaderResource describing the program, and hands out at most
// one scripting Proxy at a time.
//
// ShaderData is not safe for concurrent use; all calls happen on the frame thread. Passing a slot
// index outside [DataMin, DataMax] or using a released ShaderData panics.
type ShaderData interface {
	// Owner returns the shader instance currently using this data, or nil.
	//
	// Returns:
	//   - Owner: the owner or nil
	Owner() Owner

	// SetOwner rebinds the back reference to the shader instance. Slot data and the resource
	// reference are not affected.
	//
	// Parameters:
	//   - owner: the new owner, may be nil
	SetOwner(owner Owner)

	// Resource returns the reference to the shader resource. It may resolve absent.
	//
	// Returns:
	//   - shader_resource.Ref: the resource reference
	Resource() shader_resource.Ref

	// SlotValue returns the value stored in a slot.
	//
	// Parameters:
	//   - index: the slot
	//
	// Returns:
	//   - mgl32.Vec4: the slot value
	SlotValue(index DataIndex) mgl32.Vec4

	// SetSlotValue stores a value and marks the slot dirty. When a uniform is bound to the slot
	// its leading components are updated as well.
	//
	// Parameters:
	//   - index: the slot
	//   - value: the new value
	SetSlotValue(index DataIndex, value mgl32.Vec4)

	// VertexData returns the scalar component of a slot.
	//
	// Parameters:
	//   - index: the slot
	//
	// Returns:
	//   - float32: the scalar value
	VertexData(index DataIndex) float32

	// CopyVertexData returns the scalar component of every slot.
	//
	// Returns:
	//   - a, b, c, d: the scalar values of slots 0 to 3
	CopyVertexData() (a, b, c, d float32)

	// SetVertexData stores the scalar component of a slot and marks it dirty.
	//
	// Parameters:
	//   - index: the slot
	//   - value: the new scalar value
	SetVertexData(index DataIndex, value float32)

	// SetUniformValue writes every component of the uniform bound to a slot, including matrix
	// components beyond the slot's four, and marks the slot dirty. The slot must have a uniform.
	//
	// Parameters:
	//   - index: the slot
	//   - values: the component values
	SetUniformValue(index DataIndex, values ...float32)

	// BindUniform creates the uniform for a slot, or returns the existing one. Binding is
	// idempotent for the same data type; binding a different type panics because uploading
	// mismatched data would corrupt the render state.
	//
	// Parameters:
	//   - alloc: the allocator to reserve the uniform from
	//   - index: the slot
	//   - dataType: the uniform type, must be valid
	//
	// Returns:
	//   - uniform.Uniform: the slot's uniform
	//   - error: an error wrapping common.ErrAllocationFailed if the uniform cannot be reserved
	BindUniform(alloc common.Allocator, index DataIndex, dataType uniform.DataType) (uniform.Uniform, error)

	// DataType returns the type of the uniform bound to a slot.
	//
	// Parameters:
	//   - index: the slot
	//
	// Returns:
	//   - uniform.DataType: the bound type, or uniform.DataTypeUnknown before binding
	DataType(index DataIndex) uniform.DataType

	// Uniform returns the uniform bound to a slot for upload.
	//
	// Parameters:
	//   - index: the slot
	//
	// Returns:
	//   - uniform.Uniform: the uniform, or nil
	//   - bool: false when no uniform is bound or the shader resource no longer exists
	Uniform(index DataIndex) (uniform.Uniform, bool)

	// DidUpdateUniform is called by the renderer after it consumed a dirty slot. It clears
	// only that slot's dirty bit.
	//
	// Parameters:
	//   - index: the slot
	DidUpdateUniform(index DataIndex)

	// DirtyMask returns the slots changed since the renderer last consumed them.
	//
	// Returns:
	//   - DirtyMask: the dirty bits
	DirtyMask() DirtyMask

	// IsDirty reports whether a slot changed since the renderer last consumed it.
	//
	// Parameters:
	//   - index: the slot
	//
	// Returns:
	//   - bool: true if the slot is dirty
	IsDirty(index DataIndex) bool

	// DataIndexForName resolves a parameter name: the resource's own parameter names first,
	// then the fixed channel names (see ChannelIndex).
	//
	// Parameters:
	//   - name: the parameter or channel name
	//
	// Returns:
	//   - DataIndex: the slot, or DataUnknown
	DataIndexForName(name string) DataIndex

	// AttachProxy returns the scripting proxy for this data, creating it if none is attached.
	//
	// Returns:
	//   - Proxy: the attached proxy
	AttachProxy() Proxy

	// Proxy returns the attached proxy without creating one.
	//
	// Returns:
	//   - Proxy: the attached proxy, or nil
	Proxy() Proxy

	// DetachProxy severs the link between this data and its proxy. The proxy becomes inert.
	// Safe to call when no proxy is attached.
	DetachProxy()

	// QueueRelease defers the release of this data until queue is flushed, then notifies
	// observer. The data stays fully usable until the flush. Queuing twice panics.
	//
	// Parameters:
	//   - queue: the queue flushed after the current frame
	//   - observer: notified once the data is released, may be nil
	QueueRelease(queue ReleaseQueue, observer ReleaseObserver)

	// CancelRelease takes this data back out of the queue it was given to QueueRelease, so the
	// next flush leaves it alone. The data may be queued again afterwards.
	//
	// Returns:
	//   - ReleaseObserver: the observer given to QueueRelease
	//   - bool: true if a pending release was cancelled
	CancelRelease() (ReleaseObserver, bool)

	// IsQueued reports whether the data waits in a release queue.
	//
	// Returns:
	//   - bool: true between QueueRelease and the flush or CancelRelease
	IsQueued() bool

	// Release detaches the proxy, releases every bound uniform and returns the data's reservation.
	// The resource reference is not affected. Releasing twice is a no-op.
	Release()

	// IsReleased reports whether Release has run.
	//
	// Returns:
	//   - bool: true once released
	IsReleased() bool

	// Clone creates an independent ShaderData referencing the same shader resource, with a copy
	// of every slot value and bound uniform, every slot dirty, no proxy and no owner.
	//
	// Parameters:
	//   - alloc: the allocator to reserve the copy from
	//
	// Returns:
	//   - ShaderData: the copy, or nil on failure
	//   - error: an error wrapping common.ErrAllocationFailed; the source is left unchanged
	Clone(alloc common.Allocator) (ShaderData, error)
}

var _ ShaderData = &shaderData{}

// NewShaderData creates a ShaderData referencing resource. When the resource resolves, slots
// start with the defaults of its data layout. Every slot starts dirty so the renderer uploads
// the initial state.
//
// Parameters:
//   - alloc: the allocator to reserve the data from
//   - resource: the shader resource reference, may be absent
//   - options: functional options to further configure the data
//
// Returns:
//   - ShaderData: the new data
//   - error: an error wrapping common.ErrAllocationFailed if the reservation fails
func NewShaderData(alloc common.Allocator, resource shader_resource.Ref, options ...ShaderDataBuilderOption) (ShaderData, error) {
	if alloc == nil {
		panic("shader_data: NewShaderData requires a non-nil Allocator")
	}
	if err := alloc.Alloc("shader data", containerSize); err != nil {
		return nil, fmt.Errorf("shader_data: %w", err)
	}
	d := &shaderData{
		resource: resource,
		dirty:    DirtyAll,
		alloc:    alloc,
	}
	if res, ok := resource.Resolve(); ok {
		for _, b := range res.DataBindings() {
			d.slots[b.Index].value = b.Default
		}
	}
	for _, opt := range options {
		opt(d)
	}
	return d, nil
}

func (d *shaderData) mustBeLive() {
	if d.released {
		panic("shader_data: use of released shader data")
	}
}

func (d *shaderData) markDirty(index DataIndex) {
	d.dirty |= 1 << uint(index)
}

func (d *shaderData) Owner() Owner {
	return d.owner
}

func (d *shaderData) SetOwner(owner Owner) {
	d.mustBeLive()
	d.owner = owner
}

func (d *shaderData) Resource() shader_resource.Ref {
	return d.resource
}

func (d *shaderData) SlotValue(index DataIndex) mgl32.Vec4 {
	index.mustBeValid()
	d.mustBeLive()
	return d.slots[index].value
}

func (d *shaderData) SetSlotValue(index DataIndex, value mgl32.Vec4) {
	index.mustBeValid()
	d.mustBeLive()
	s := &d.slots[index]
	s.value = value
	if s.uniform != nil {
		s.uniform.SetValue(value[:min(s.dataType.Components(), 4)]...)
	}
	d.markDirty(index)
}

func (d *shaderData) VertexData(index DataIndex) float32 {
	return d.SlotValue(index)[0]
}

func (d *shaderData) CopyVertexData() (a, b, c, e float32) {
	d.mustBeLive()
	return d.slots[0].value[0], d.slots[1].value[0], d.slots[2].value[0], d.slots[3].value[0]
}

func (d *shaderData) SetVertexData(index DataIndex, value float32) {
	index.mustBeValid()
	d.mustBeLive()
	v := d.slots[index].value
	v[0] = value
	d.SetSlotValue(index, v)
}

func (d *shaderData) SetUniformValue(index DataIndex, values ...float32) {
	index.mustBeValid()
	d.mustBeLive()
	s := &d.slots[index]
	if s.uniform == nil {
		panic(fmt.Sprintf("shader_data: %s has no uniform bound", index))
	}
	s.uniform.SetValue(values...)
	copy(s.value[:], values)
	d.markDirty(index)
}

func (d *shaderData) BindUniform(alloc common.Allocator, index DataIndex, dataType uniform.DataType) (uniform.Uniform, error) {
	index.mustBeValid()
	d.mustBeLive()
	if !dataType.IsValid() {
		panic(fmt.Sprintf("shader_data: cannot bind %s to %s", dataType, index))
	}
	s := &d.slots[index]
	if s.uniform != nil {
		if s.dataType != dataType {
			panic(fmt.Sprintf("shader_data: %s is bound as %s, cannot rebind as %s", index, s.dataType, dataType))
		}
		return s.uniform, nil
	}

	u, err := uniform.New(alloc, dataType)
	if err != nil {
		return nil, fmt.Errorf("shader_data: bind %s: %w", index, err)
	}
	u.SetValue(s.value[:min(dataType.Components(), 4)]...)
	s.uniform = u
	s.alloc = alloc
	s.dataType = dataType
	d.markDirty(index)
	common.Logger().Debug("shader data uniform bound", "index", int(index), "type", dataType.String())
	return u, nil
}

func (d *shaderData) DataType(index DataIndex) uniform.DataType {
	index.mustBeValid()
	return d.slots[index].dataType
}

func (d *shaderData) Uniform(index DataIndex) (uniform.Uniform, bool) {
	index.mustBeValid()
	d.mustBeLive()
	u := d.slots[index].uniform
	if u == nil {
		return nil, false
	}
	if _, ok := d.resource.Resolve(); !ok {
		return nil, false
	}
	return u, true
}

func (d *shaderData) DidUpdateUniform(index DataIndex) {
	index.mustBeValid()
	d.dirty &^= 1 << uint(index)
}

func (d *shaderData) DirtyMask() DirtyMask {
	return d.dirty
}

func (d *shaderData) IsDirty(index DataIndex) bool {
	index.mustBeValid()
	return d.dirty.Has(index)
}

func (d *shaderData) DataIndexForName(name string) DataIndex {
	if res, ok := d.resource.Resolve(); ok {
		if i := res.DataIndexForName(name); i >= 0 {
			return DataIndex(i)
		}
	}
	return ChannelIndex(name)
}

func (d *shaderData) AttachProxy() Proxy {
	d.mustBeLive()
	if d.proxy == nil {
		d.proxy = &proxy{data: d}
	}
	return d.proxy
}

func (d *shaderData) Proxy() Proxy {
	if d.proxy == nil {
		return nil
	}
	return d.proxy
}

func (d *shaderData) DetachProxy() {
	if d.proxy == nil {
		return
	}
	d.proxy.data = nil
	d.proxy = nil
}

func (d *shaderData) QueueRelease(queue ReleaseQueue, observer ReleaseObserver) {
	d.mustBeLive()
	if d.queue != nil {
		panic("shader_data: shader data queued for release twice")
	}
	d.queue = queue
	queue.Enqueue(d, observer)
}

func (d *shaderData) CancelRelease() (ReleaseObserver, bool) {
	if d.queue == nil || d.released {
		return nil, false
	}
	q := d.queue
	d.queue = nil
	return q.Cancel(d)
}

func (d *shaderData) IsQueued() bool {
	return d.queue != nil
}

func (d *shaderData) Release() {
	if d.released {
		return
	}
	d.DetachProxy()
	for i := range d.slots {
		s := &d.slots[i]
		if s.uniform != nil {
			s.uniform.Release(s.alloc)
			s.uniform = nil
		}
	}
	d.owner = nil
	d.queue = nil
	d.released = true
	d.alloc.Free("shader data", containerSize)
	common.Logger().Debug("shader data released")
}

func (d *shaderData) IsReleased() bool {
	return d.released
}

func (d *shaderData) Clone(alloc common.Allocator) (ShaderData, error) {
	d.mustBeLive()
	if err := alloc.Alloc("shader data", containerSize); err != nil {
		return nil, fmt.Errorf("shader_data: clone: %w", err)
	}
	c := &shaderData{
		resource: d.resource,
		dirty:    DirtyAll,
		alloc:    alloc,
	}
	for i := range d.slots {
		src, dst := &d.slots[i], &c.slots[i]
		dst.value = src.value
		dst.dataType = src.dataType
		if src.uniform == nil {
			continue
		}
		u, err := src.uniform.Clone(alloc)
		if err != nil {
			c.Release()
			return nil, fmt.Errorf("shader_data: clone %s: %w", DataIndex(i), err)
		}
		dst.uniform = u
		dst.alloc = alloc
	}
	common.Logger().Debug("shader data cloned", "dirty", c.dirty.String())
	return c, nil
}
