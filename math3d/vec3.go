// Package math3d provides the vector, matrix and primitive geometry types
// used by the mesh core and its operators.
package math3d

import "math"

// Vec3 represents a 3D vector or position.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// V3FromArray creates a Vec3 from a [3]float64 record value.
func V3FromArray(a [3]float64) Vec3 {
	return Vec3{a[0], a[1], a[2]}
}

// Zero3 returns the zero vector.
func Zero3() Vec3 {
	return Vec3{}
}

// Array returns the vector as a [3]float64 (serialization form).
func (a Vec3) Array() [3]float64 {
	return [3]float64{a.X, a.Y, a.Z}
}

// Add returns the vector sum a + b.
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns the vector difference a - b.
func (a Vec3) Sub(b Vec3) Vec3 {
	return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns the scalar product a * s.
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}

// Dot returns the dot product a · b.
func (a Vec3) Dot(b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the length of the vector.
func (a Vec3) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// LenSq returns the squared length (faster, no sqrt).
func (a Vec3) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y + a.Z*a.Z
}

// Normalize returns the unit vector, or the zero vector for zero length.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Negate returns the negated vector.
func (a Vec3) Negate() Vec3 {
	return Vec3{-a.X, -a.Y, -a.Z}
}

// Lerp returns linear interpolation between a and b.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return Vec3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// Midpoint returns the point halfway between a and b.
func (a Vec3) Midpoint(b Vec3) Vec3 {
	return a.Lerp(b, 0.5)
}

// Min returns the component-wise minimum.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

// Max returns the component-wise maximum.
func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// Distance returns the distance between two points.
func (a Vec3) Distance(b Vec3) float64 {
	return a.Sub(b).Len()
}

// AngleTo returns the angle between two vectors in radians.
// Zero-length inputs yield π/2 so that callers comparing against a
// right angle treat them as neither facing towards nor away.
func (a Vec3) AngleTo(b Vec3) float64 {
	denom := math.Sqrt(a.LenSq() * b.LenSq())
	if denom == 0 {
		return math.Pi / 2
	}
	c := a.Dot(b) / denom
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// Component returns the coordinate on axis 0 (X), 1 (Y) or 2 (Z).
func (a Vec3) Component(axis int) float64 {
	switch axis {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

// WithComponent returns a copy with the coordinate on axis replaced.
func (a Vec3) WithComponent(axis int, v float64) Vec3 {
	switch axis {
	case 0:
		a.X = v
	case 1:
		a.Y = v
	default:
		a.Z = v
	}
	return a
}

// ApproxEqual reports whether a and b differ by at most eps on every axis.
func (a Vec3) ApproxEqual(b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}
