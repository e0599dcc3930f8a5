package render

import "github.com/ansipixels/polyedit/math3d"

// Camera is a perspective camera looking at a target.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3
	FOV      float64 // vertical, radians
	Aspect   float64
	Near     float64
	Far      float64
}

// NewCamera returns a camera at (0,0,5) looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Position: math3d.V3(0, 0, 5),
		Up:       math3d.V3(0, 1, 0),
		FOV:      1.0471975511965976, // 60 degrees
		Aspect:   1,
		Near:     0.1,
		Far:      100,
	}
}

// ViewDirection returns the unit vector the camera looks along.
func (c *Camera) ViewDirection() math3d.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view := math3d.LookAt(c.Position, c.Target, c.Up)
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far).Mul(view)
}
