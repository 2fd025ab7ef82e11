package uniform

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// Resource is the GPU-side object a renderer attaches to a Uniform once it has been uploaded.
// The uniform owns it and releases it together with itself.
type Resource interface {
	Release()
}

// uniform is the implementation of the Uniform interface.
type uniform struct {
	dataType DataType
	data     [16]float32
	resource Resource
	released bool
}

// Uniform is the CPU-side description of a single shader uniform. It holds the current value
// in its declared DataType and, once the renderer has created one, the GPU resource the value
// is uploaded into.
type Uniform interface {
	// DataType returns the shape of the value held by this uniform. It never changes.
	//
	// Returns:
	//   - DataType: the uniform's data type
	DataType() DataType

	// Value returns a copy of the uniform's components.
	//
	// Returns:
	//   - []float32: DataType().Components() values
	Value() []float32

	// SetValue overwrites the leading components of the uniform. Components not provided keep
	// their previous value. Passing more values than the type holds panics.
	//
	// Parameters:
	//   - values: the new component values
	SetValue(values ...float32)

	// Size returns the GPU byte size of the uniform.
	//
	// Returns:
	//   - uint64: the byte size
	Size() uint64

	// Marshal serializes the uniform into a little-endian byte buffer laid out for a uniform buffer.
	//
	// Returns:
	//   - []byte: Size() bytes ready for GPU upload
	Marshal() []byte

	// Resource returns the GPU resource attached by the renderer, or nil if the uniform has not been uploaded.
	//
	// Returns:
	//   - Resource: the GPU resource or nil
	Resource() Resource

	// SetResource attaches a GPU resource. A previously attached resource is released first.
	//
	// Parameters:
	//   - r: the GPU resource
	SetResource(r Resource)

	// Clone creates a new Uniform with the same type and value. The GPU resource is not shared.
	//
	// Parameters:
	//   - alloc: the allocator to reserve the clone from
	//
	// Returns:
	//   - Uniform: the copy
	//   - error: an error wrapping common.ErrAllocationFailed if the reservation fails
	Clone(alloc common.Allocator) (Uniform, error)

	// Release releases the GPU resource and returns the uniform's reservation to the allocator.
	// Releasing twice is a no-op.
	//
	// Parameters:
	//   - alloc: the allocator the uniform was reserved from
	Release(alloc common.Allocator)
}

var _ Uniform = &uniform{}

// New creates a Uniform of the given type, reserving its size from alloc.
// An invalid data type is a programming error and panics.
//
// Parameters:
//   - alloc: the allocator to reserve the uniform from
//   - dataType: the uniform's data type
//
// Returns:
//   - Uniform: the new uniform with all components zeroed
//   - error: an error wrapping common.ErrAllocationFailed if the reservation fails
func New(alloc common.Allocator, dataType DataType) (Uniform, error) {
	if !dataType.IsValid() {
		panic(fmt.Sprintf("uniform: cannot create a uniform of type %s", dataType))
	}
	if err := alloc.Alloc(label(dataType), dataType.Size()); err != nil {
		return nil, fmt.Errorf("uniform: %w", err)
	}
	return &uniform{dataType: dataType}, nil
}

func label(t DataType) string {
	return "uniform " + t.String()
}

func (u *uniform) DataType() DataType {
	return u.dataType
}

func (u *uniform) Value() []float32 {
	out := make([]float32, u.dataType.Components())
	copy(out, u.data[:])
	return out
}

func (u *uniform) SetValue(values ...float32) {
	if len(values) > u.dataType.Components() {
		panic(fmt.Sprintf("uniform: %d values do not fit a %s uniform", len(values), u.dataType))
	}
	copy(u.data[:], values)
}

func (u *uniform) Size() uint64 {
	return u.dataType.Size()
}

func (u *uniform) Marshal() []byte {
	buf := make([]byte, u.dataType.Size())
	put := func(offset int, v float32) {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(v))
	}
	if u.dataType == DataTypeMat3 {
		// each column occupies a 16 byte vec4 slot
		for col := range 3 {
			for row := range 3 {
				put(col*16+row*4, u.data[col*3+row])
			}
		}
		return buf
	}
	for i := range u.dataType.Components() {
		put(i*4, u.data[i])
	}
	return buf
}

func (u *uniform) Resource() Resource {
	return u.resource
}

func (u *uniform) SetResource(r Resource) {
	if u.resource != nil && u.resource != r {
		u.resource.Release()
	}
	u.resource = r
}

func (u *uniform) Clone(alloc common.Allocator) (Uniform, error) {
	c, err := New(alloc, u.dataType)
	if err != nil {
		return nil, err
	}
	c.(*uniform).data = u.data
	return c, nil
}

func (u *uniform) Release(alloc common.Allocator) {
	if u.released {
		return
	}
	u.released = true
	if u.resource != nil {
		u.resource.Release()
		u.resource = nil
	}
	alloc.Free(label(u.dataType), u.dataType.Size())
}
