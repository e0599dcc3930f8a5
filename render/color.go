// Package render rebuilds display buffers from an edited mesh and draws
// them as wireframes into a CPU framebuffer for the terminal viewer.
package render

import "math"

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

// RGB creates a Color.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b}
}

// Common colors.
var (
	ColorBlack = RGB(0, 0, 0)
	ColorWhite = RGB(255, 255, 255)
	ColorRed   = RGB(255, 0, 0)
	ColorGreen = RGB(0, 255, 0)
)

// markerColors is the mesh marker palette, indexed by models.Mesh.Color.
var markerColors = [8]Color{
	RGB(0, 255, 128),  // light green
	RGB(255, 120, 64), // orange
	RGB(96, 160, 255), // blue
	RGB(255, 220, 64), // yellow
	RGB(200, 96, 255), // purple
	RGB(255, 80, 120), // pink
	RGB(64, 230, 230), // cyan
	RGB(200, 200, 200),
}

// MarkerColor returns the palette entry for a mesh color index.
func MarkerColor(index int) Color {
	return markerColors[((index%len(markerColors))+len(markerColors))%len(markerColors)]
}

// MultiplyColor scales each channel by factor, clamping to 255.
func MultiplyColor(c Color, factor float64) Color {
	return Color{
		R: clampByte(float64(c.R) * factor),
		G: clampByte(float64(c.G) * factor),
		B: clampByte(float64(c.B) * factor),
	}
}

// lerpColor blends from a to b, t in [0,1].
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
	}
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, v)))
}
