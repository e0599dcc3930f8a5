package models

import (
	"fmt"

	"github.com/ansipixels/polyedit/math3d"
	"github.com/vmihailenco/msgpack/v5"
)

// FaceRecord is the serialization form of a Face.
type FaceRecord struct {
	Vertices []string             `json:"vertices" yaml:"vertices" msgpack:"vertices"`
	UV       map[string][]float64 `json:"uv" yaml:"uv" msgpack:"uv"`
	Texture  string               `json:"texture,omitempty" yaml:"texture,omitempty" msgpack:"texture,omitempty"`
}

// MeshRecord is the serialization form of a Mesh, used for persistence
// and undo snapshots.
type MeshRecord struct {
	UUID       string                `json:"uuid" yaml:"uuid" msgpack:"uuid"`
	Name       string                `json:"name" yaml:"name" msgpack:"name"`
	Origin     []float64             `json:"origin" yaml:"origin,flow" msgpack:"origin"`
	Rotation   []float64             `json:"rotation" yaml:"rotation,flow" msgpack:"rotation"`
	Visibility bool                  `json:"visibility" yaml:"visibility" msgpack:"visibility"`
	Color      int                   `json:"color" yaml:"color" msgpack:"color"`
	Vertices   map[string][]float64  `json:"vertices" yaml:"vertices" msgpack:"vertices"`
	Faces      map[string]FaceRecord `json:"faces" yaml:"faces" msgpack:"faces"`
}

// TextureRecord is the serialization form of a Texture.
type TextureRecord struct {
	ID     string `json:"uuid" yaml:"uuid" msgpack:"uuid"`
	Name   string `json:"name" yaml:"name" msgpack:"name"`
	Width  int    `json:"width" yaml:"width" msgpack:"width"`
	Height int    `json:"height" yaml:"height" msgpack:"height"`
}

// ProjectRecord is the serialization form of a Project.
type ProjectRecord struct {
	Meshes    []MeshRecord        `json:"meshes" yaml:"meshes" msgpack:"meshes"`
	Selected  []string            `json:"selected,omitempty" yaml:"selected,omitempty" msgpack:"selected,omitempty"`
	Selection map[string][]string `json:"selected_vertices,omitempty" yaml:"selected_vertices,omitempty" msgpack:"selected_vertices,omitempty"`
	Textures  []TextureRecord     `json:"textures,omitempty" yaml:"textures,omitempty" msgpack:"textures,omitempty"`
}

// Record returns the face's serialization form.
func (f *Face) Record() FaceRecord {
	uv := make(map[string][]float64, len(f.UV))
	for k, v := range f.UV {
		uv[k] = []float64{v.X, v.Y}
	}
	return FaceRecord{
		Vertices: append([]string(nil), f.Vertices...),
		UV:       uv,
		Texture:  f.Texture,
	}
}

// Patch converts the record into a full face patch.
func (r FaceRecord) Patch() FacePatch {
	uv := make(map[string]math3d.Vec2, len(r.UV))
	for k, v := range r.UV {
		uv[k] = vec2(v)
	}
	vertices := r.Vertices
	if vertices == nil {
		vertices = []string{}
	}
	return FacePatch{Vertices: vertices, UV: uv, Texture: Ref(r.Texture)}
}

// Record returns the mesh's serialization form.
func (m *Mesh) Record() MeshRecord {
	r := MeshRecord{
		UUID:       m.ID,
		Name:       m.Name,
		Origin:     floats(m.Origin),
		Rotation:   floats(m.Rotation),
		Visibility: m.Visible,
		Color:      m.Color,
		Vertices:   make(map[string][]float64, m.VertexCount()),
		Faces:      make(map[string]FaceRecord, m.FaceCount()),
	}
	for id, p := range m.Vertices() {
		r.Vertices[id] = floats(p)
	}
	for id, f := range m.Faces() {
		r.Faces[id] = f.Record()
	}
	return r
}

// Patch converts the record into a patch describing the whole mesh state.
func (r MeshRecord) Patch() MeshPatch {
	p := MeshPatch{
		Name:     Ref(r.Name),
		Origin:   Ref(vec3(r.Origin)),
		Rotation: Ref(vec3(r.Rotation)),
		Visible:  Ref(r.Visibility),
		Color:    Ref(r.Color),
		Vertices: make(map[string]math3d.Vec3, len(r.Vertices)),
		Faces:    make(map[string]FacePatch, len(r.Faces)),
	}
	for id, v := range r.Vertices {
		p.Vertices[id] = vec3(v)
	}
	for id, f := range r.Faces {
		p.Faces[id] = f.Patch()
	}
	return p
}

// MeshFromRecord builds a mesh from its serialization form.
// A record without uuid gets a fresh identity.
func MeshFromRecord(r MeshRecord) *Mesh {
	m := NewMesh(r.Name)
	if r.UUID != "" {
		m.ID = r.UUID
	}
	m.Extend(r.Patch())
	return m
}

// Snapshot encodes the mesh state for an undo collaborator.
func (m *Mesh) Snapshot() ([]byte, error) {
	b, err := msgpack.Marshal(m.Record())
	if err != nil {
		return nil, fmt.Errorf("snapshot mesh %s: %w", m.ID, err)
	}
	return b, nil
}

// Restore resets the mesh to a snapshot taken with Snapshot. Identity is kept.
func (m *Mesh) Restore(snapshot []byte) error {
	var r MeshRecord
	if err := msgpack.Unmarshal(snapshot, &r); err != nil {
		return fmt.Errorf("restore mesh %s: %w", m.ID, err)
	}
	m.Extend(r.Patch())
	return nil
}

// Record returns the project's serialization form.
func (p *Project) Record() ProjectRecord {
	r := ProjectRecord{
		Meshes:    make([]MeshRecord, len(p.Meshes)),
		Selected:  append([]string(nil), p.Selected...),
		Selection: make(map[string][]string),
	}
	for i, m := range p.Meshes {
		r.Meshes[i] = m.Record()
		if ids := p.Selection.Vertices(m.ID); len(ids) > 0 {
			r.Selection[m.ID] = append([]string(nil), ids...)
		}
	}
	for _, t := range p.Textures {
		r.Textures = append(r.Textures, TextureRecord(t))
	}
	return r
}

// ProjectFromRecord builds a project from its serialization form.
// Selections of unknown meshes or vertices are dropped.
func ProjectFromRecord(r ProjectRecord) *Project {
	p := NewProject()
	for _, mr := range r.Meshes {
		p.Add(MeshFromRecord(mr))
	}
	for _, id := range r.Selected {
		if p.Mesh(id) != nil {
			p.Selected = append(p.Selected, id)
		}
	}
	for _, m := range p.Meshes {
		p.Selection.Set(m.ID, r.Selection[m.ID])
		p.Selection.Retain(m)
	}
	for _, t := range r.Textures {
		p.Textures = append(p.Textures, Texture(t))
	}
	return p
}

func floats(v math3d.Vec3) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func vec3(v []float64) math3d.Vec3 {
	var a [3]float64
	copy(a[:], v)
	return math3d.V3FromArray(a)
}

func vec2(v []float64) math3d.Vec2 {
	var a [2]float64
	copy(a[:], v)
	return math3d.V2FromArray(a)
}
