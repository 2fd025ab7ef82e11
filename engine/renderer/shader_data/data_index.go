package shader_data

import (
	"fmt"
	"strings"
)

// DataIndex addresses one of the four per-instance data slots of a ShaderData.
type DataIndex int

const (
	// DataUnknown is returned by lookups that do not resolve to a slot.
	DataUnknown DataIndex = -1

	Data0 DataIndex = 0
	Data1 DataIndex = 1
	Data2 DataIndex = 2
	Data3 DataIndex = 3

	// NumData is the fixed number of slots.
	NumData = 4

	DataMin = Data0
	DataMax = Data3
)

// IsValid reports whether i addresses a slot.
func (i DataIndex) IsValid() bool {
	return i >= DataMin && i <= DataMax
}

func (i DataIndex) String() string {
	if i == DataUnknown {
		return "DataUnknown"
	}
	return fmt.Sprintf("Data%d", int(i))
}

// mustBeValid panics for indices outside [DataMin, DataMax]. Slot indices come from code, not
// from user input, so a bad index is a programming error.
func (i DataIndex) mustBeValid() {
	if !i.IsValid() {
		panic(fmt.Sprintf("shader_data: data index %d outside [%d, %d]", int(i), DataMin, DataMax))
	}
}

// channelNames maps the symbolic channel names accepted at the scripting boundary to slots.
// The table is closed: effect specific names come from the shader resource's data layout.
var channelNames = map[string]DataIndex{
	"x": Data0, "r": Data0, "red": Data0, "x1": Data0,
	"y": Data1, "g": Data1, "green": Data1, "y1": Data1,
	"z": Data2, "b": Data2, "blue": Data2, "x2": Data2,
	"w": Data3, "a": Data3, "alpha": Data3, "y2": Data3,
}

// ChannelIndex maps a symbolic channel name (case-insensitive) to its slot.
//
// Parameters:
//   - name: a channel name such as "r", "alpha", "x" or "y2"
//
// Returns:
//   - DataIndex: the slot, or DataUnknown if the name is not a channel
func ChannelIndex(name string) DataIndex {
	if i, ok := channelNames[strings.ToLower(name)]; ok {
		return i
	}
	return DataUnknown
}

// DirtyMask is a bitset over the four slots. Bit i is set when slot i changed since the
// renderer last consumed it.
type DirtyMask uint8

// DirtyAll has every slot bit set.
const DirtyAll DirtyMask = 1<<NumData - 1

// Has reports whether the bit for i is set.
func (m DirtyMask) Has(i DataIndex) bool {
	return i.IsValid() && m&(1<<uint(i)) != 0
}

// IsEmpty reports whether no bit is set.
func (m DirtyMask) IsEmpty() bool {
	return m == 0
}

// Indices returns the set slots in ascending order.
func (m DirtyMask) Indices() []DataIndex {
	var out []DataIndex
	for i := DataMin; i <= DataMax; i++ {
		if m.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

func (m DirtyMask) String() string {
	parts := make([]string, 0, NumData)
	for _, i := range m.Indices() {
		parts = append(parts, fmt.Sprint(int(i)))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
