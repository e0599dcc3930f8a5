package render

import (
	"github.com/ansipixels/polyedit/math3d"
	"github.com/ansipixels/polyedit/models"
)

// TextureSizer resolves the UV space of a face texture.
type TextureSizer interface {
	TextureSize(id string) (w, h float64)
}

// Geometry is the display form of a mesh. Polygon corners are unshared so
// each carries its face's flat normal and UV. All positions are local.
type Geometry struct {
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	UVs       []math3d.Vec2 // normalized, V pointing up
	Highlight []bool        // corner belongs to a selected face
	Indices   []int         // triangle list into Positions

	Outline          []math3d.Vec3 // segment endpoints, two per edge
	OutlineHighlight []bool        // one per segment

	Points   []math3d.Vec3 // vertex positions in storage order
	Selected []bool        // one per point
}

// TriangleCount returns the number of triangles in Indices.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// BuildGeometry rebuilds the display buffers of m. Quads are split into two
// triangles along their sorted order; lines only contribute outline
// segments. A nil textures uses the default texture size.
func BuildGeometry(m *models.Mesh, selected []string, textures TextureSizer) *Geometry {
	g := &Geometry{}
	isSelected := make(map[string]bool, len(selected))
	for _, v := range selected {
		isSelected[v] = true
	}
	type edge [2]string
	edges := make(map[edge]int)

	for _, f := range m.Faces() {
		sorted := m.SortedVertices(f)
		faceSelected := m.IsSelected(f, selected)

		for i, a := range sorted {
			if len(sorted) == 2 && i > 0 {
				break
			}
			b := sorted[(i+1)%len(sorted)]
			key := edge{a, b}
			if b < a {
				key = edge{b, a}
			}
			if seg, ok := edges[key]; ok {
				g.OutlineHighlight[seg] = g.OutlineHighlight[seg] || faceSelected
				continue
			}
			edges[key] = len(g.OutlineHighlight)
			g.Outline = append(g.Outline, m.Position(a), m.Position(b))
			g.OutlineHighlight = append(g.OutlineHighlight, faceSelected)
		}
		if f.IsLine() {
			continue
		}

		w, h := float64(models.DefaultTextureSize), float64(models.DefaultTextureSize)
		if textures != nil {
			w, h = textures.TextureSize(f.Texture)
		}
		normal := m.Normal(f, true)
		base := len(g.Positions)
		for _, v := range sorted {
			uv := f.UV[v]
			g.Positions = append(g.Positions, m.Position(v))
			g.Normals = append(g.Normals, normal)
			g.UVs = append(g.UVs, math3d.V2(uv.X/w, 1-uv.Y/h))
			g.Highlight = append(g.Highlight, faceSelected)
		}
		g.Indices = append(g.Indices, base, base+1, base+2)
		if len(sorted) == 4 {
			g.Indices = append(g.Indices, base, base+2, base+3)
		}
	}

	for id, p := range m.Vertices() {
		g.Points = append(g.Points, p)
		g.Selected = append(g.Selected, isSelected[id])
	}
	return g
}
