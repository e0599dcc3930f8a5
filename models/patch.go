package models

import (
	"slices"

	"github.com/ansipixels/polyedit/math3d"
)

// FacePatch is a partial update of a face. Nil fields are left unchanged.
// UV entries overwrite the coordinates of the listed vertex ids.
type FacePatch struct {
	Vertices []string
	UV       map[string]math3d.Vec2
	Texture  *string
}

// MeshPatch describes the desired final state of a mesh.
//
// When VertexList or Vertices is set, vertices absent from Vertices are
// deleted; VertexList entries are then appended under fresh ids and
// Vertices entries overwrite (or create) positions by id. When Faces is
// set, faces absent from it are deleted, existing ids are merged field by
// field and new ids are constructed.
type MeshPatch struct {
	Name     *string
	Origin   *math3d.Vec3
	Rotation *math3d.Vec3
	Visible  *bool
	Color    *int

	VertexList []math3d.Vec3
	Vertices   map[string]math3d.Vec3
	Faces      map[string]FacePatch
}

// Ref returns a pointer to v, for filling optional patch fields.
func Ref[T any](v T) *T {
	return &v
}

// Extend reconciles the mesh with p and returns the ids assigned to
// p.VertexList, in order. Face UV invariants hold afterwards.
func (m *Mesh) Extend(p MeshPatch) []string {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Origin != nil {
		m.Origin = *p.Origin
	}
	if p.Rotation != nil {
		m.Rotation = *p.Rotation
	}
	if p.Visible != nil {
		m.Visible = *p.Visible
	}
	if p.Color != nil {
		m.Color = *p.Color
	}

	var added []string
	if p.VertexList != nil || p.Vertices != nil {
		for _, key := range m.vertices.keys() {
			if _, ok := p.Vertices[key]; !ok {
				m.vertices.remove(key)
			}
		}
		for _, key := range sortedKeys(p.Vertices) {
			m.vertices.insert(key, p.Vertices[key])
		}
		// Fresh keys are drawn after the explicit ones so they cannot collide.
		added = m.AddVertices(p.VertexList...)
	}

	if p.Faces != nil {
		for _, key := range m.faces.keys() {
			if _, ok := p.Faces[key]; !ok {
				m.faces.remove(key)
			}
		}
		for _, key := range sortedKeys(p.Faces) {
			if f := m.Face(key); f != nil {
				f.Extend(p.Faces[key])
				continue
			}
			f := &Face{}
			m.faces.insert(key, f.Extend(p.Faces[key]))
		}
	}
	return added
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
