package shader_data

import "github.com/go-gl/mathgl/mgl32"

// proxy is the implementation of the Proxy interface.
// data is nil once detached.
type proxy struct {
	data    *shaderData
	binding any
}

// Proxy is the handle a scripting runtime holds on a ShaderData. It never owns the data: when
// the data is released, or explicitly detached, the proxy becomes inert. Reads on an inert
// proxy report absent and writes are ignored, so a script that kept a stale handle can never
// reach freed state.
type Proxy interface {
	// Data returns the ShaderData behind the proxy.
	//
	// Returns:
	//   - ShaderData: the data, or nil when detached
	Data() ShaderData

	// IsDetached reports whether the proxy has been severed from its data.
	//
	// Returns:
	//   - bool: true once detached
	IsDetached() bool

	// Detach severs the proxy from its data from the proxy's side, e.g. when the scripting
	// runtime collects its handle. The data may attach a fresh proxy afterwards.
	Detach()

	// Lookup resolves a parameter or channel name to a slot.
	//
	// Parameters:
	//   - name: the name to resolve
	//
	// Returns:
	//   - DataIndex: the slot, or DataUnknown when unknown or detached
	Lookup(name string) DataIndex

	// Get reads a slot value.
	//
	// Parameters:
	//   - index: the slot
	//
	// Returns:
	//   - mgl32.Vec4: the value
	//   - bool: false when detached or the index is not a slot
	Get(index DataIndex) (mgl32.Vec4, bool)

	// Set writes a slot value. Ignored when detached or the index is not a slot.
	//
	// Parameters:
	//   - index: the slot
	//   - value: the new value
	//
	// Returns:
	//   - bool: true if the write reached the data
	Set(index DataIndex, value mgl32.Vec4) bool

	// GetVertexData reads the scalar component of a slot.
	//
	// Parameters:
	//   - index: the slot
	//
	// Returns:
	//   - float32: the value
	//   - bool: false when detached or the index is not a slot
	GetVertexData(index DataIndex) (float32, bool)

	// SetVertexData writes the scalar component of a slot. Ignored when detached or the index
	// is not a slot.
	//
	// Parameters:
	//   - index: the slot
	//   - value: the new value
	//
	// Returns:
	//   - bool: true if the write reached the data
	SetVertexData(index DataIndex, value float32) bool

	// Binding returns the scripting runtime's own object for this proxy.
	Binding() any

	// SetBinding stores the scripting runtime's own object for this proxy so the same script
	// value is returned each time the data is pushed.
	SetBinding(binding any)
}

var _ Proxy = &proxy{}

func (p *proxy) Data() ShaderData {
	if p.data == nil {
		return nil
	}
	return p.data
}

func (p *proxy) IsDetached() bool {
	return p.data == nil
}

func (p *proxy) Detach() {
	if p.data != nil {
		p.data.DetachProxy()
	}
}

func (p *proxy) Lookup(name string) DataIndex {
	if p.data == nil {
		return DataUnknown
	}
	return p.data.DataIndexForName(name)
}

func (p *proxy) Get(index DataIndex) (mgl32.Vec4, bool) {
	if p.data == nil || !index.IsValid() {
		return mgl32.Vec4{}, false
	}
	return p.data.SlotValue(index), true
}

func (p *proxy) Set(index DataIndex, value mgl32.Vec4) bool {
	if p.data == nil || !index.IsValid() {
		return false
	}
	p.data.SetSlotValue(index, value)
	return true
}

func (p *proxy) GetVertexData(index DataIndex) (float32, bool) {
	v, ok := p.Get(index)
	return v[0], ok
}

func (p *proxy) SetVertexData(index DataIndex, value float32) bool {
	if p.data == nil || !index.IsValid() {
		return false
	}
	p.data.SetVertexData(index, value)
	return true
}

func (p *proxy) Binding() any {
	return p.binding
}

func (p *proxy) SetBinding(binding any) {
	p.binding = binding
}
