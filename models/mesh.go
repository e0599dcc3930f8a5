// Package models provides the editable polygon mesh: vertex and face
// storage, winding resolution, adjacency, selection and serialization.
package models

import (
	"iter"
	"slices"

	"github.com/ansipixels/polyedit/math3d"
	"github.com/google/uuid"
)

// Mesh owns a vertex store (id -> position) and a face store (id -> Face).
// Faces reference vertices by id only; every referenced id must exist.
type Mesh struct {
	ID       string
	Name     string
	Origin   math3d.Vec3
	Rotation math3d.Vec3 // Euler degrees, XYZ order
	Visible  bool
	Color    int // marker color index

	vertices arena[math3d.Vec3]
	faces    arena[*Face]
}

// NewMesh creates an empty, visible mesh with a fresh identity.
func NewMesh(name string) *Mesh {
	if name == "" {
		name = "mesh"
	}
	return &Mesh{
		ID:       uuid.NewString(),
		Name:     name,
		Visible:  true,
		vertices: newArena[math3d.Vec3](),
		faces:    newArena[*Face](),
	}
}

// AddVertices stores the positions under fresh vertex ids and returns them in order.
func (m *Mesh) AddVertices(positions ...math3d.Vec3) []string {
	keys := make([]string, len(positions))
	for i, p := range positions {
		keys[i] = uniqueKey(VertexKeyLength, m.vertices.has)
		m.vertices.insert(keys[i], p)
	}
	return keys
}

// AddFaces stores the faces under fresh face ids and returns them in order.
func (m *Mesh) AddFaces(faces ...*Face) []string {
	keys := make([]string, len(faces))
	for i, f := range faces {
		keys[i] = uniqueKey(FaceKeyLength, m.faces.has)
		m.faces.insert(keys[i], f)
	}
	return keys
}

// SetVertex creates or moves the vertex with the given id.
func (m *Mesh) SetVertex(id string, p math3d.Vec3) {
	m.vertices.insert(id, p)
}

// SetFace stores f under id, replacing any face with that id.
func (m *Mesh) SetFace(id string, f *Face) {
	m.faces.insert(id, f)
}

// Vertex returns the position of vertex id.
func (m *Mesh) Vertex(id string) (math3d.Vec3, bool) {
	p, ok := m.vertices.lookup(id)
	if !ok {
		return math3d.Vec3{}, false
	}
	return *p, true
}

// Position returns the position of vertex id, or the origin when unknown.
func (m *Mesh) Position(id string) math3d.Vec3 {
	p, _ := m.Vertex(id)
	return p
}

// HasVertex reports whether id is a vertex of the mesh.
func (m *Mesh) HasVertex(id string) bool {
	return m.vertices.has(id)
}

// Face returns the face with the given id, or nil.
func (m *Mesh) Face(id string) *Face {
	f, ok := m.faces.lookup(id)
	if !ok {
		return nil
	}
	return *f
}

// RemoveVertices deletes vertices. Callers must not leave faces referencing them.
func (m *Mesh) RemoveVertices(ids ...string) {
	for _, id := range ids {
		m.vertices.remove(id)
	}
}

// RemoveFaces deletes faces by id.
func (m *Mesh) RemoveFaces(ids ...string) {
	for _, id := range ids {
		m.faces.remove(id)
	}
}

// Vertices iterates over vertex ids and positions.
func (m *Mesh) Vertices() iter.Seq2[string, math3d.Vec3] {
	return func(yield func(string, math3d.Vec3) bool) {
		for k, p := range m.vertices.all() {
			if !yield(k, *p) {
				return
			}
		}
	}
}

// Faces iterates over face ids and faces.
func (m *Mesh) Faces() iter.Seq2[string, *Face] {
	return func(yield func(string, *Face) bool) {
		for k, f := range m.faces.all() {
			if !yield(k, *f) {
				return
			}
		}
	}
}

// VertexIDs returns all vertex ids in storage order.
func (m *Mesh) VertexIDs() []string {
	return m.vertices.keys()
}

// FaceIDs returns all face ids in storage order.
func (m *Mesh) FaceIDs() []string {
	return m.faces.keys()
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return m.vertices.len()
}

// FaceCount returns the number of faces, lines included.
func (m *Mesh) FaceCount() int {
	return m.faces.len()
}

// PolygonCount returns the number of triangles and quads.
func (m *Mesh) PolygonCount() int {
	n := 0
	for _, f := range m.Faces() {
		if !f.IsLine() {
			n++
		}
	}
	return n
}

// SortedVertices returns the face's vertex ids in winding order.
// Lines and triangles are returned as stored. A quad's four ids may be
// stored with either diagonal pairing; the boundary walk is recovered by
// testing on which side of a vertex pair the remaining corners lie.
// The returned slice must not be modified.
func (m *Mesh) SortedVertices(f *Face) []string {
	v := f.Vertices
	if len(v) != 4 {
		return v
	}
	p0, p1, p2, p3 := m.Position(v[0]), m.Position(v[1]), m.Position(v[2]), m.Position(v[3])
	if beyondEdge(p1, p2, p0, p3) {
		return []string{v[2], v[0], v[1], v[3]}
	}
	if beyondEdge(p0, p1, p2, p3) {
		return []string{v[0], v[2], v[1], v[3]}
	}
	return v
}

// beyondEdge reports whether check lies on the far side of the line
// base1-base2 as seen from top.
func beyondEdge(base1, base2, top, check math3d.Vec3) bool {
	normal := math3d.Line3{Start: base1, End: base2}.ClosestPoint(top).Sub(top)
	return math3d.PlaneFromNormalAndPoint(normal, base2).DistanceToPoint(check) > 0
}

// Normal returns the face normal from its first two sorted edges.
// Lines yield the zero vector, as does normalizing a zero-length normal.
func (m *Mesh) Normal(f *Face, normalize bool) math3d.Vec3 {
	sorted := m.SortedVertices(f)
	if len(sorted) < 3 {
		return math3d.Vec3{}
	}
	p0 := m.Position(sorted[0])
	a := m.Position(sorted[1]).Sub(p0)
	b := m.Position(sorted[2]).Sub(p0)
	n := a.Cross(b)
	if normalize {
		return n.Normalize()
	}
	return n
}

// Adjacency identifies a neighbouring face and the sorted index at which
// the shared edge ends within it.
type Adjacency struct {
	FaceID string
	Index  int
}

// AdjacentFace finds the face across side of faceID, the edge from sorted
// vertex side to side+1. The neighbour must traverse that edge in the
// opposite direction. Cost is linear in the number of faces.
func (m *Mesh) AdjacentFace(faceID string, side int) (Adjacency, bool) {
	f := m.Face(faceID)
	if f == nil || f.IsLine() {
		return Adjacency{}, false
	}
	sorted := m.SortedVertices(f)
	n := len(sorted)
	side = ((side % n) + n) % n
	a, b := sorted[side], sorted[(side+1)%n]
	for key, other := range m.Faces() {
		if key == faceID || other.IsLine() || !other.HasAll(a, b) {
			continue
		}
		os := m.SortedVertices(other)
		ia, ib := slices.Index(os, a), slices.Index(os, b)
		if d := ib - ia; d == -1 || d == len(os)-1 {
			return Adjacency{FaceID: key, Index: ib}, true
		}
	}
	return Adjacency{}, false
}

// IsSelected reports whether every vertex of f is in selected.
func (m *Mesh) IsSelected(f *Face, selected []string) bool {
	if len(selected) == 0 || len(f.Vertices) < 2 {
		return false
	}
	for _, v := range f.Vertices {
		if !slices.Contains(selected, v) {
			return false
		}
	}
	return true
}

// SelectedFaces returns the ids of all faces covered by selected.
func (m *Mesh) SelectedFaces(selected []string) []string {
	var keys []string
	for key, f := range m.Faces() {
		if m.IsSelected(f, selected) {
			keys = append(keys, key)
		}
	}
	return keys
}

// IsReferenced reports whether any face uses vertex id.
func (m *Mesh) IsReferenced(id string) bool {
	for _, f := range m.Faces() {
		if f.Has(id) {
			return true
		}
	}
	return false
}

// RemoveUnreferencedVertices deletes vertices no face uses. When filter is
// non-nil only vertices it accepts are considered. Returns the count removed.
func (m *Mesh) RemoveUnreferencedVertices(filter func(id string) bool) int {
	referenced := make(map[string]bool, m.VertexCount())
	for _, f := range m.Faces() {
		for _, v := range f.Vertices {
			referenced[v] = true
		}
	}
	removed := 0
	for _, id := range m.VertexIDs() {
		if referenced[id] || (filter != nil && !filter(id)) {
			continue
		}
		m.vertices.remove(id)
		removed++
	}
	return removed
}

// Clone creates a deep copy of the mesh, identity included.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.vertices = m.vertices.clone(func(p math3d.Vec3) math3d.Vec3 { return p })
	c.faces = m.faces.clone(func(f *Face) *Face { return f.Clone() })
	return &c
}

// Duplicate is Clone with a fresh identity. Vertex and face ids are kept.
func (m *Mesh) Duplicate() *Mesh {
	c := m.Clone()
	c.ID = uuid.NewString()
	return c
}
