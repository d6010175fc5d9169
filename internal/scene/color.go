package scene

import "math"

// Color is a linear-light RGB triple in [0,1].
type Color struct {
	R, G, B float64
}

// Hex converts a 0xRRGGBB sRGB value into linear light, the way three-style materials
// interpret hex colors when the output color space is sRGB.
func Hex(v uint32) Color {
	return Color{
		R: SRGBToLinear(float64((v>>16)&0xFF) / 255),
		G: SRGBToLinear(float64((v>>8)&0xFF) / 255),
		B: SRGBToLinear(float64(v&0xFF) / 255),
	}
}

// Linear builds a color from channels that are already linear.
func Linear(r, g, b float64) Color { return Color{R: r, G: g, B: b} }

func (c Color) Add(o Color) Color     { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c Color) Mul(o Color) Color     { return Color{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c Color) Scale(s float64) Color { return Color{c.R * s, c.G * s, c.B * s} }

// SRGB8 encodes the color as 8-bit sRGB channels.
func (c Color) SRGB8() (r, g, b uint8) {
	return to8(LinearToSRGB(c.R)), to8(LinearToSRGB(c.G)), to8(LinearToSRGB(c.B))
}

func SRGBToLinear(c float64) float64 {
	if c < 0.04045 {
		return c * 0.0773993808
	}
	return math.Pow(c*0.9478672986+0.0521327014, 2.4)
}

func LinearToSRGB(c float64) float64 {
	if c < 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 0.41666) - 0.055
}

func to8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
