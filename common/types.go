// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Color is a normalized RGBA color. Every channel is expected to be within [0, 1].
// It is stored as an mgl32.Vec4 so it can be written straight into a shader data slot.
type Color mgl32.Vec4

// Opaque is the white, fully opaque color used as the default paint.
var Opaque = Color{1, 1, 1, 1}

// NewColor creates a Color from normalized float channels.
//
// Parameters:
//   - r, g, b, a: the channel values in [0, 1]
//
// Returns:
//   - Color: the color
func NewColor(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// Gray creates a gray Color with the given intensity and alpha.
//
// Parameters:
//   - intensity: the value applied to the r, g and b channels
//   - alpha: the alpha channel
//
// Returns:
//   - Color: the gray color
func Gray(intensity, alpha float32) Color {
	return Color{intensity, intensity, intensity, alpha}
}

// ColorFromBytes creates a Color from byte channels in the range 0-255.
// Each channel is converted as byte/255 so the conversion is exact in the float direction.
//
// Parameters:
//   - r, g, b, a: the channel values in [0, 255]
//
// Returns:
//   - Color: the normalized color
func ColorFromBytes(r, g, b, a uint8) Color {
	return Color{ByteToChannel(r), ByteToChannel(g), ByteToChannel(b), ByteToChannel(a)}
}

// ByteToChannel converts a byte channel to its normalized float value (b / 255).
//
// Parameters:
//   - b: the byte channel
//
// Returns:
//   - float32: the normalized channel in [0, 1]
func ByteToChannel(b uint8) float32 {
	return float32(float64(b) / 255.0)
}

// ChannelToByte converts a normalized float channel to a byte. The value is clamped to
// [0, 1], scaled by 255 and rounded half-up. NaN maps to 0.
//
// Parameters:
//   - f: the normalized channel
//
// Returns:
//   - uint8: the byte channel
func ChannelToByte(f float32) uint8 {
	if f != f {
		return 0
	}
	scaled := float64(Clamp(f, 0, 1)) * 255.0
	return uint8(scaled + 0.5)
}

// Bytes returns the color's channels as bytes using ChannelToByte.
//
// Returns:
//   - r, g, b, a: the byte channels
func (c Color) Bytes() (r, g, b, a uint8) {
	return ChannelToByte(c[0]), ChannelToByte(c[1]), ChannelToByte(c[2]), ChannelToByte(c[3])
}

// Vec4 returns the color as an mgl32.Vec4.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4(c)
}

func (c Color) R() float32 { return c[0] }
func (c Color) G() float32 { return c[1] }
func (c Color) B() float32 { return c[2] }
func (c Color) A() float32 { return c[3] }
