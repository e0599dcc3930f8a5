package models

import "github.com/ansipixels/polyedit/math3d"

// NewCube creates the default box mesh: diameter wide, height tall, standing
// on the XZ plane. Faces are stored with diagonal vertex pairing and get
// UVs spanning the default texture size.
func NewCube(diameter, height float64) *Mesh {
	r, h := diameter/2, height
	m := NewMesh("cube")
	v := m.AddVertices(
		math3d.V3(r, h, r), math3d.V3(r, h, -r), math3d.V3(r, 0, r), math3d.V3(r, 0, -r),
		math3d.V3(-r, h, r), math3d.V3(-r, h, -r), math3d.V3(-r, 0, r), math3d.V3(-r, 0, -r),
	)
	quads := [][]string{
		{v[0], v[2], v[1], v[3]}, // east
		{v[4], v[5], v[6], v[7]}, // west
		{v[0], v[1], v[4], v[5]}, // up
		{v[2], v[6], v[3], v[7]}, // down
		{v[0], v[4], v[2], v[6]}, // south
		{v[1], v[3], v[5], v[7]}, // north
	}
	corners := []math3d.Vec2{{}, {Y: DefaultTextureSize}, {X: DefaultTextureSize}, {X: DefaultTextureSize, Y: DefaultTextureSize}}
	for _, q := range quads {
		uv := make(map[string]math3d.Vec2, 4)
		for i, id := range q {
			uv[id] = corners[i]
		}
		m.AddFaces(NewFace(q...).Extend(FacePatch{UV: uv}))
	}
	return m
}

// NewPyramid creates a square based pyramid with its apex at height.
func NewPyramid(diameter, height float64) *Mesh {
	r, h := diameter/2, height
	m := NewMesh("pyramid")
	v := m.AddVertices(
		math3d.V3(0, h, 0),
		math3d.V3(r, 0, r), math3d.V3(r, 0, -r), math3d.V3(-r, 0, r), math3d.V3(-r, 0, -r),
	)
	m.AddFaces(
		NewFace(v[1], v[3], v[2], v[4]), // down
		NewFace(v[1], v[2], v[0]),       // east
		NewFace(v[3], v[1], v[0]),       // south
		NewFace(v[2], v[4], v[0]),       // north
		NewFace(v[4], v[3], v[0]),       // west
	)
	return m
}
