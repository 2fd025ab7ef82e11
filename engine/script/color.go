package script

import (
	"math"

	"github.com/Carmen-Shannon/oxy-fx/common"
	lua "github.com/yuin/gopher-lua"
)

// registerColor installs the global "color" table:
//
//	color.fromBytes(r, g, b [, a])  -> normalized r, g, b, a
//	color.toBytes(r, g, b [, a])    -> byte r, g, b, a
//
// Both accept the same shorthands as ToColor.
func registerColor(L *lua.LState) {
	tbl := L.NewTable()
	L.SetFuncs(tbl, map[string]lua.LGFunction{
		"fromBytes": func(L *lua.LState) int {
			return PushColorChannels(L, ToColor(L, 1, true), false)
		},
		"toBytes": func(L *lua.LState) int {
			return PushColorChannels(L, ToColor(L, 1, false), true)
		},
	})
	L.SetGlobal("color", tbl)
}

// PushColorChannels pushes the four channels of c, as bytes when isBytes is set.
//
// Parameters:
//   - L: the Lua state
//   - c: the color
//   - isBytes: push 0-255 integers instead of normalized floats
//
// Returns:
//   - int: the number of pushed values, always 4
func PushColorChannels(L *lua.LState, c common.Color, isBytes bool) int {
	if isBytes {
		r, g, b, a := c.Bytes()
		for _, v := range []uint8{r, g, b, a} {
			L.Push(lua.LNumber(v))
		}
		return 4
	}
	for _, v := range c {
		L.Push(lua.LNumber(v))
	}
	return 4
}

// ToColor reads a color starting at stack index idx. The color is either an array table (see
// ArrayToColor) or up to four numbers:
//
//	gray            -> gray, gray, gray, 1
//	gray, alpha     -> gray, gray, gray, alpha
//	r, g, b         -> r, g, b, 1
//	r, g, b, a      -> r, g, b, a
//
// When isBytes is set the numbers are 0-255 channels and are converted with
// common.ByteToChannel.
//
// Parameters:
//   - L: the Lua state
//   - idx: the stack index of the first channel or of the table
//   - isBytes: whether the channels are bytes
//
// Returns:
//   - common.Color: the color
func ToColor(L *lua.LState, idx int, isBytes bool) common.Color {
	if tbl, ok := L.Get(idx).(*lua.LTable); ok {
		return ArrayToColor(L, tbl, isBytes)
	}
	var channels []float64
	for i := idx; i <= L.GetTop() && len(channels) < 4; i++ {
		channels = append(channels, float64(L.CheckNumber(i)))
	}
	if len(channels) == 0 {
		L.ArgError(idx, "color expected")
	}
	return channelsToColor(channels, isBytes)
}

// ArrayToColor reads a color from an array table using the same shorthands as ToColor.
// An empty table yields common.Opaque.
//
// Parameters:
//   - L: the Lua state
//   - tbl: the array table
//   - isBytes: whether the channels are bytes
//
// Returns:
//   - common.Color: the color
func ArrayToColor(L *lua.LState, tbl *lua.LTable, isBytes bool) common.Color {
	n := min(tbl.Len(), 4)
	if n == 0 {
		return common.Opaque
	}
	channels := make([]float64, n)
	for i := range n {
		channels[i] = float64(lua.LVAsNumber(tbl.RawGetInt(i + 1)))
	}
	return channelsToColor(channels, isBytes)
}

func channelsToColor(channels []float64, isBytes bool) common.Color {
	conv := func(v float64) float32 {
		if !isBytes {
			return float32(v)
		}
		if math.IsNaN(v) {
			return 0
		}
		return common.ByteToChannel(uint8(common.Clamp(math.Round(v), 0, 255)))
	}
	one := float32(1)
	switch len(channels) {
	case 1:
		return common.Gray(conv(channels[0]), one)
	case 2:
		return common.Gray(conv(channels[0]), conv(channels[1]))
	case 3:
		return common.NewColor(conv(channels[0]), conv(channels[1]), conv(channels[2]), one)
	default:
		return common.NewColor(conv(channels[0]), conv(channels[1]), conv(channels[2]), conv(channels[3]))
	}
}
