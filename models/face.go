package models

import (
	"slices"

	"github.com/ansipixels/polyedit/math3d"
)

// Face is a line (2 vertices), triangle (3) or quad (4) of a mesh.
// Vertices holds vertex ids of the owning mesh; their stored order is not
// necessarily the polygon winding, see Mesh.SortedVertices.
// The key set of UV always equals the vertex id set.
type Face struct {
	Vertices []string
	UV       map[string]math3d.Vec2
	Texture  string // empty when untextured
}

// NewFace creates a face over the given vertex ids with default UVs.
func NewFace(vertices ...string) *Face {
	f := &Face{UV: make(map[string]math3d.Vec2)}
	return f.Extend(FacePatch{Vertices: vertices})
}

// Extend applies a patch to the face and restores the UV key invariant:
// missing keys default to [0,0] and keys no longer referenced are pruned.
func (f *Face) Extend(p FacePatch) *Face {
	if p.Vertices != nil {
		f.Vertices = slices.Clone(p.Vertices)
	}
	if p.Texture != nil {
		f.Texture = *p.Texture
	}
	if f.UV == nil {
		f.UV = make(map[string]math3d.Vec2, len(f.Vertices))
	}
	for _, key := range f.Vertices {
		if uv, ok := p.UV[key]; ok {
			f.UV[key] = uv
		} else if _, ok := f.UV[key]; !ok {
			f.UV[key] = math3d.Vec2{}
		}
	}
	for key := range f.UV {
		if !slices.Contains(f.Vertices, key) {
			delete(f.UV, key)
		}
	}
	return f
}

// Clone returns a deep copy of the face.
func (f *Face) Clone() *Face {
	uv := make(map[string]math3d.Vec2, len(f.UV))
	for k, v := range f.UV {
		uv[k] = v
	}
	return &Face{
		Vertices: slices.Clone(f.Vertices),
		UV:       uv,
		Texture:  f.Texture,
	}
}

// Has reports whether the face references vertex id v.
func (f *Face) Has(v string) bool {
	return slices.Contains(f.Vertices, v)
}

// HasAll reports whether the face references every id in vs.
func (f *Face) HasAll(vs ...string) bool {
	for _, v := range vs {
		if !f.Has(v) {
			return false
		}
	}
	return true
}

// IsLine reports whether the face is a rendering-only edge marker.
func (f *Face) IsLine() bool {
	return len(f.Vertices) < 3
}

// Invert flips the winding by swapping the first two vertex slots.
// Lines are left untouched.
func (f *Face) Invert() {
	if len(f.Vertices) < 3 {
		return
	}
	f.Vertices[0], f.Vertices[1] = f.Vertices[1], f.Vertices[0]
}

// ReplaceVertex re-points slot old to id repl, carrying its UV along.
func (f *Face) ReplaceVertex(old, repl string) {
	i := slices.Index(f.Vertices, old)
	if i < 0 {
		return
	}
	f.Vertices[i] = repl
	uv := f.UV[old]
	delete(f.UV, old)
	f.UV[repl] = uv
}

// CommonVertices returns the ids of f that are also in vs, in f's order.
func (f *Face) CommonVertices(vs []string) []string {
	var common []string
	for _, v := range f.Vertices {
		if slices.Contains(vs, v) {
			common = append(common, v)
		}
	}
	return common
}
