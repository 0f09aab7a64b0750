package core

import "fmt"

// RGB is a single sampled screen pixel, one byte per channel.
type RGB struct {
	R, G, B uint8
}

// Gray returns a pixel with all three channels set to v.
func Gray(v uint8) RGB {
	return RGB{R: v, G: v, B: v}
}

// IsGray reports whether every channel equals v exactly.
func (c RGB) IsGray(v uint8) bool {
	return c.R == v && c.G == v && c.B == v
}

// Floats returns the channels as float64 values in [0, 255].
func (c RGB) Floats() [3]float64 {
	return [3]float64{float64(c.R), float64(c.G), float64(c.B)}
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Point is a screen coordinate in pixels.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// String implements fmt.Stringer.
func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
