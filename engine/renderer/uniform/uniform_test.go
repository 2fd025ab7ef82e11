package uniform

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

type fakeResource struct {
	released int
}

func (r *fakeResource) Release() { r.released++ }

func TestDataTypeLayout(t *testing.T) {
	tests := []struct {
		dt         DataType
		components int
		size       uint64
	}{
		{DataTypeUnknown, 0, 0},
		{DataTypeScalar, 1, 4},
		{DataTypeVec2, 2, 8},
		{DataTypeVec3, 3, 16},
		{DataTypeVec4, 4, 16},
		{DataTypeMat3, 9, 48},
		{DataTypeMat4, 16, 64},
	}
	for _, tt := range tests {
		t.Run(tt.dt.String(), func(t *testing.T) {
			if got := tt.dt.Components(); got != tt.components {
				t.Errorf("Components() = %d, want %d", got, tt.components)
			}
			if got := tt.dt.Size(); got != tt.size {
				t.Errorf("Size() = %d, want %d", got, tt.size)
			}
		})
	}
}

func TestParseDataType(t *testing.T) {
	for _, name := range []string{"f32", "vec2<f32>", "vec3", "vec4f", "mat3x3<f32>", "mat4"} {
		dt, err := ParseDataType(name)
		if err != nil || !dt.IsValid() {
			t.Errorf("ParseDataType(%q) = %v, %v", name, dt, err)
		}
	}
	if _, err := ParseDataType("texture_2d"); err == nil {
		t.Error("expected an error for a non-uniform type")
	}
}

func TestWGSLRoundTrip(t *testing.T) {
	for dt := DataTypeScalar; dt <= DataTypeMat4; dt++ {
		got, err := ParseDataType(dt.WGSL())
		if err != nil || got != dt {
			t.Errorf("ParseDataType(%q) = %v, %v, want %v", dt.WGSL(), got, err, dt)
		}
	}
	if DataTypeUnknown.WGSL() != "" {
		t.Error("unknown type has a WGSL name")
	}
}

func TestNewReservesFromAllocator(t *testing.T) {
	alloc := common.NewHeapAllocator()
	u, err := New(alloc, DataTypeVec4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if alloc.InUse() != 16 {
		t.Fatalf("InUse() = %d, want 16", alloc.InUse())
	}
	u.Release(alloc)
	u.Release(alloc)
	if alloc.InUse() != 0 {
		t.Fatalf("InUse() after release = %d, want 0", alloc.InUse())
	}
}

func TestNewAllocationFailure(t *testing.T) {
	_, err := New(common.NewBudgetAllocator(8), DataTypeMat4)
	if !errors.Is(err, common.ErrAllocationFailed) {
		t.Fatalf("expected ErrAllocationFailed, got %v", err)
	}
}

func TestNewUnknownTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New(common.NewHeapAllocator(), DataTypeUnknown)
}

func TestSetValueAndMarshal(t *testing.T) {
	u, _ := New(common.NewHeapAllocator(), DataTypeVec3)
	u.SetValue(1, 2, 3)
	got := u.Value()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("Value() = %v", got)
	}
	buf := u.Marshal()
	if len(buf) != 16 {
		t.Fatalf("len(Marshal()) = %d, want 16", len(buf))
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])); v != 3 {
		t.Fatalf("third component = %v, want 3", v)
	}
}

func TestMarshalMat3PadsColumns(t *testing.T) {
	u, _ := New(common.NewHeapAllocator(), DataTypeMat3)
	u.SetValue(1, 2, 3, 4, 5, 6, 7, 8, 9)
	buf := u.Marshal()
	read := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4])) }
	if read(16) != 4 || read(32) != 7 || read(44) != 0 {
		t.Fatalf("unexpected mat3 layout: col1=%v col2=%v pad=%v", read(16), read(32), read(44))
	}
}

func TestSetValueTooManyPanics(t *testing.T) {
	u, _ := New(common.NewHeapAllocator(), DataTypeVec2)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	u.SetValue(1, 2, 3)
}

func TestCloneIsIndependent(t *testing.T) {
	alloc := common.NewHeapAllocator()
	u, _ := New(alloc, DataTypeVec2)
	res := &fakeResource{}
	u.SetResource(res)
	u.SetValue(4, 5)

	c, err := u.Clone(alloc)
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if c.Resource() != nil {
		t.Fatal("clone must not share the GPU resource")
	}
	c.SetValue(9)
	if u.Value()[0] != 4 {
		t.Fatal("mutating the clone changed the source")
	}

	u.Release(alloc)
	if res.released != 1 {
		t.Fatalf("resource released %d times, want 1", res.released)
	}
}

func TestSetResourceReleasesPrevious(t *testing.T) {
	u, _ := New(common.NewHeapAllocator(), DataTypeScalar)
	first, second := &fakeResource{}, &fakeResource{}
	u.SetResource(first)
	u.SetResource(first)
	u.SetResource(second)
	if first.released != 1 || second.released != 0 {
		t.Fatalf("released counts = %d, %d", first.released, second.released)
	}
}
