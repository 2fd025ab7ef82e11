package uniform

import "fmt"

// DataType identifies the shape of the value a uniform holds.
type DataType int

const (
	// DataTypeUnknown marks a slot that has no uniform bound yet.
	DataTypeUnknown DataType = iota

	// DataTypeScalar is a single f32.
	DataTypeScalar

	// DataTypeVec2 is a vec2<f32>.
	DataTypeVec2

	// DataTypeVec3 is a vec3<f32>, padded to 16 bytes on the GPU.
	DataTypeVec3

	// DataTypeVec4 is a vec4<f32>.
	DataTypeVec4

	// DataTypeMat3 is a mat3x3<f32>, stored as three vec4 columns on the GPU.
	DataTypeMat3

	// DataTypeMat4 is a mat4x4<f32>.
	DataTypeMat4
)

var dataTypeNames = map[DataType]string{
	DataTypeUnknown: "unknown",
	DataTypeScalar:  "f32",
	DataTypeVec2:    "vec2",
	DataTypeVec3:    "vec3",
	DataTypeVec4:    "vec4",
	DataTypeMat3:    "mat3",
	DataTypeMat4:    "mat4",
}

// ParseDataType maps a WGSL-style type name to a DataType.
// Both the short form ("vec4") and the explicit form ("vec4<f32>", "mat4x4<f32>") are accepted.
//
// Parameters:
//   - name: the type name
//
// Returns:
//   - DataType: the parsed type
//   - error: an error if the name is not a supported uniform type
func ParseDataType(name string) (DataType, error) {
	switch name {
	case "f32", "float", "scalar":
		return DataTypeScalar, nil
	case "vec2", "vec2f", "vec2<f32>":
		return DataTypeVec2, nil
	case "vec3", "vec3f", "vec3<f32>":
		return DataTypeVec3, nil
	case "vec4", "vec4f", "vec4<f32>":
		return DataTypeVec4, nil
	case "mat3", "mat3x3f", "mat3x3<f32>":
		return DataTypeMat3, nil
	case "mat4", "mat4x4f", "mat4x4<f32>":
		return DataTypeMat4, nil
	}
	return DataTypeUnknown, fmt.Errorf("unsupported uniform type %q", name)
}

func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

var wgslNames = map[DataType]string{
	DataTypeScalar: "f32",
	DataTypeVec2:   "vec2<f32>",
	DataTypeVec3:   "vec3<f32>",
	DataTypeVec4:   "vec4<f32>",
	DataTypeMat3:   "mat3x3<f32>",
	DataTypeMat4:   "mat4x4<f32>",
}

// WGSL returns the explicit WGSL type name, or "" for DataTypeUnknown.
func (t DataType) WGSL() string {
	return wgslNames[t]
}

// Components returns the number of float components held by the type.
func (t DataType) Components() int {
	switch t {
	case DataTypeScalar:
		return 1
	case DataTypeVec2:
		return 2
	case DataTypeVec3:
		return 3
	case DataTypeVec4:
		return 4
	case DataTypeMat3:
		return 9
	case DataTypeMat4:
		return 16
	}
	return 0
}

// Size returns the GPU byte size of the type using uniform address space layout rules.
func (t DataType) Size() uint64 {
	switch t {
	case DataTypeScalar:
		return 4
	case DataTypeVec2:
		return 8
	case DataTypeVec3, DataTypeVec4:
		return 16
	case DataTypeMat3:
		return 48
	case DataTypeMat4:
		return 64
	}
	return 0
}

// IsValid reports whether t names a bindable uniform type.
func (t DataType) IsValid() bool {
	return t.Components() > 0
}
