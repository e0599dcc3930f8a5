package models

import (
	"slices"

	"github.com/ansipixels/polyedit/math3d"
)

// WorldMatrix returns the local-to-world transform (origin, then rotation).
func (m *Mesh) WorldMatrix() math3d.Mat4 {
	return math3d.Translate(m.Origin).Mul(math3d.EulerDegrees(m.Rotation))
}

// LocalToWorld converts a local position to world space.
func (m *Mesh) LocalToWorld(p math3d.Vec3) math3d.Vec3 {
	return m.WorldMatrix().MulVec3(p)
}

// WorldToLocal converts a world position to this mesh's local space.
func (m *Mesh) WorldToLocal(p math3d.Vec3) math3d.Vec3 {
	return m.WorldMatrix().Inverse().MulVec3(p)
}

// Bounds returns the local axis-aligned bounding box.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	first := true
	for _, p := range m.Vertices() {
		if first {
			lo, hi, first = p, p, false
			continue
		}
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi
}

// WorldCenter returns the mean world position of the selected vertices,
// or of all vertices when selected is empty.
func (m *Mesh) WorldCenter(selected []string) math3d.Vec3 {
	var sum math3d.Vec3
	count := 0
	for id, p := range m.Vertices() {
		if len(selected) > 0 && !slices.Contains(selected, id) {
			continue
		}
		sum = sum.Add(p)
		count++
	}
	if count == 0 {
		return m.Origin
	}
	return m.LocalToWorld(sum.Scale(1 / float64(count)))
}

// Flip mirrors the mesh along axis (0=X, 1=Y, 2=Z). Faces are inverted
// so they keep facing outwards.
func (m *Mesh) Flip(axis int) {
	for _, id := range m.VertexIDs() {
		p := m.Position(id)
		m.vertices.insert(id, p.WithComponent(axis, -p.Component(axis)))
	}
	for _, f := range m.Faces() {
		f.Invert()
	}
	m.Origin = m.Origin.WithComponent(axis, -m.Origin.Component(axis))
	for i := range 3 {
		if i != axis {
			m.Rotation = m.Rotation.WithComponent(i, -m.Rotation.Component(i))
		}
	}
}

// TransferOrigin moves the pivot to origin without moving the geometry in world space.
func (m *Mesh) TransferOrigin(origin math3d.Vec3) {
	shift := math3d.EulerDegrees(m.Rotation).Inverse().MulVec3Dir(m.Origin.Sub(origin))
	for _, id := range m.VertexIDs() {
		m.vertices.insert(id, m.Position(id).Add(shift))
	}
	m.Origin = origin
}

// ApplyTexture sets the texture reference of the given faces, or of every
// face when faceIDs is nil. An empty texture clears it.
func (m *Mesh) ApplyTexture(texture string, faceIDs []string) {
	if faceIDs == nil {
		faceIDs = m.FaceIDs()
	}
	for _, id := range faceIDs {
		if f := m.Face(id); f != nil {
			f.Texture = texture
		}
	}
}
