package models

import (
	"fmt"
	"slices"
)

// DefaultTextureSize is the UV space used when no texture is registered.
const DefaultTextureSize = 16

// Texture is a registered texture. Faces reference it by ID.
type Texture struct {
	ID     string
	Name   string
	Width  int
	Height int
}

// Project is the ordered set of meshes being edited, the mesh-level
// selection (Selected) and the per-mesh vertex selection.
type Project struct {
	Meshes    []*Mesh
	Selected  []string // selected mesh ids, in selection order
	Selection *Selection
	Textures  []Texture
}

// NewProject creates an empty project.
func NewProject() *Project {
	return &Project{Selection: NewSelection()}
}

// Add appends meshes to the project.
func (p *Project) Add(meshes ...*Mesh) {
	p.Meshes = append(p.Meshes, meshes...)
}

// Mesh returns the mesh with the given id, or nil.
func (p *Project) Mesh(id string) *Mesh {
	if i := p.index(id); i >= 0 {
		return p.Meshes[i]
	}
	return nil
}

// Lookup returns the mesh with the given id or name.
func (p *Project) Lookup(ref string) (*Mesh, error) {
	if m := p.Mesh(ref); m != nil {
		return m, nil
	}
	for _, m := range p.Meshes {
		if m.Name == ref {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrMeshNotFound, ref)
}

func (p *Project) index(id string) int {
	return slices.IndexFunc(p.Meshes, func(m *Mesh) bool { return m.ID == id })
}

// InsertAfter places m directly after ref, or at the end when ref is absent.
func (p *Project) InsertAfter(ref, m *Mesh) {
	i := p.index(ref.ID)
	if i < 0 {
		p.Add(m)
		return
	}
	p.Meshes = slices.Insert(p.Meshes, i+1, m)
}

// Remove deletes a mesh together with its selection state.
func (p *Project) Remove(id string) {
	if i := p.index(id); i >= 0 {
		p.Meshes = slices.Delete(p.Meshes, i, i+1)
	}
	p.Selected = slices.DeleteFunc(p.Selected, func(s string) bool { return s == id })
	p.Selection.Clear(id)
}

// Select marks meshes as selected, replacing the previous mesh selection.
func (p *Project) Select(ids ...string) {
	p.Selected = slices.Clone(ids)
}

// SelectedMeshes returns the selected meshes in selection order.
func (p *Project) SelectedMeshes() []*Mesh {
	var meshes []*Mesh
	for _, id := range p.Selected {
		if m := p.Mesh(id); m != nil {
			meshes = append(meshes, m)
		}
	}
	return meshes
}

// DefaultTexture returns the id of the first registered texture.
func (p *Project) DefaultTexture() (string, bool) {
	if len(p.Textures) == 0 {
		return "", false
	}
	return p.Textures[0].ID, true
}

// HasTexture reports whether a texture id is registered.
func (p *Project) HasTexture(id string) bool {
	return slices.ContainsFunc(p.Textures, func(t Texture) bool { return t.ID == id })
}

// TextureSize returns the UV space size for faces using texture id.
func (p *Project) TextureSize(id string) (w, h float64) {
	for _, t := range p.Textures {
		if t.ID == id && t.Width > 0 && t.Height > 0 {
			return float64(t.Width), float64(t.Height)
		}
	}
	return DefaultTextureSize, DefaultTextureSize
}
