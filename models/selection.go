package models

import (
	"slices"
)

// Selection is the per-mesh vertex selection, keyed by mesh id.
// Order of ids is preserved; operators such as face creation rely on it.
type Selection struct {
	vertices map[string][]string
}

// NewSelection creates an empty selection store.
func NewSelection() *Selection {
	return &Selection{vertices: make(map[string][]string)}
}

// Vertices returns the selected vertex ids of a mesh (nil when none).
func (s *Selection) Vertices(meshID string) []string {
	if s == nil {
		return nil
	}
	return s.vertices[meshID]
}

// Active reports whether the mesh has a non-empty vertex selection.
func (s *Selection) Active(meshID string) bool {
	return len(s.Vertices(meshID)) > 0
}

// Set replaces the selection of a mesh. Duplicate ids are dropped and an
// empty list clears the entry.
func (s *Selection) Set(meshID string, ids []string) {
	if s.vertices == nil {
		s.vertices = make(map[string][]string)
	}
	if len(ids) == 0 {
		delete(s.vertices, meshID)
		return
	}
	uniq := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(uniq, id) {
			uniq = append(uniq, id)
		}
	}
	s.vertices[meshID] = uniq
}

// Add appends ids not yet selected.
func (s *Selection) Add(meshID string, ids ...string) {
	s.Set(meshID, append(slices.Clone(s.Vertices(meshID)), ids...))
}

// Contains reports whether vertex id is selected on the mesh.
func (s *Selection) Contains(meshID, id string) bool {
	return slices.Contains(s.Vertices(meshID), id)
}

// Clear drops the selection of a mesh.
func (s *Selection) Clear(meshID string) {
	if s == nil {
		return
	}
	delete(s.vertices, meshID)
}

// Transfer moves the selection of mesh from to mesh to.
func (s *Selection) Transfer(from, to string) {
	ids := s.Vertices(from)
	s.Clear(from)
	s.Set(to, ids)
}

// Meshes returns the ids of meshes with an active selection, sorted.
func (s *Selection) Meshes() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.vertices)
}

// Retain drops selected ids that are no longer vertices of m.
func (s *Selection) Retain(m *Mesh) {
	ids := slices.DeleteFunc(slices.Clone(s.Vertices(m.ID)), func(id string) bool {
		return !m.HasVertex(id)
	})
	s.Set(m.ID, ids)
}
