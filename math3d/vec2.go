package math3d

// Vec2 is a texture coordinate in texel units.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// V2FromArray converts the [u, v] record form.
func V2FromArray(a [2]float64) Vec2 {
	return Vec2{a[0], a[1]}
}

// Midpoint returns the coordinate halfway between a and b. Loop cuts use it
// to place the UV of a new center vertex.
func (a Vec2) Midpoint(b Vec2) Vec2 {
	return Vec2{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}
