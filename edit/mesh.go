package edit

import (
	"fortio.org/log"
	"github.com/ansipixels/polyedit/math3d"
	"github.com/ansipixels/polyedit/models"
)

// MergeMeshes absorbs every selected mesh after the first into the first.
// Vertices keep their world position and faces are recreated over the new
// vertex ids. Absorbed meshes are removed from the project and their vertex
// selection carries over to the destination. Returns the destination, or
// nil when fewer than two meshes are selected.
func MergeMeshes(ctx *Context, p *models.Project) *models.Mesh {
	meshes := p.SelectedMeshes()
	if len(meshes) < 2 {
		log.Debugf("merge: %d meshes selected, need at least 2", len(meshes))
		return nil
	}
	dest := meshes[0]
	toLocal := dest.WorldMatrix().Inverse()
	for _, src := range meshes[1:] {
		toWorld := src.WorldMatrix()
		ids := src.VertexIDs()
		positions := make([]math3d.Vec3, len(ids))
		for i, id := range ids {
			positions[i] = toLocal.MulVec3(toWorld.MulVec3(src.Position(id)))
		}
		remap := make(map[string]string, len(ids))
		for i, id := range dest.AddVertices(positions...) {
			remap[ids[i]] = id
		}

		for _, f := range src.Faces() {
			vertices := make([]string, len(f.Vertices))
			uv := make(map[string]math3d.Vec2, len(f.Vertices))
			for i, v := range f.Vertices {
				vertices[i] = remap[v]
				uv[remap[v]] = f.UV[v]
			}
			dest.AddFaces(f.Clone().Extend(models.FacePatch{Vertices: vertices, UV: uv}))
		}

		var selected []string
		for _, v := range ctx.Selection.Vertices(src.ID) {
			selected = append(selected, remap[v])
		}
		ctx.Selection.Add(dest.ID, selected...)
		p.Remove(src.ID)
		log.Debugf("merged %s into %s (%d vertices)", src.Name, dest.Name, len(ids))
	}
	return dest
}

// SplitMesh moves the faces touching the selection of m into a new mesh
// inserted after m. Each side keeps only the vertices its faces use. The
// selection moves to the new mesh, which replaces m in the mesh selection.
// Returns nil when nothing is selected.
func SplitMesh(ctx *Context, p *models.Project, m *models.Mesh) *models.Mesh {
	selected := ctx.selected(m)
	if len(selected) == 0 {
		log.Debugf("split %s: nothing selected", m.Name)
		return nil
	}
	part := m.Duplicate()
	part.Name = m.Name + "_selection"

	for key, f := range m.Faces() {
		if len(f.CommonVertices(selected)) > 0 {
			m.RemoveFaces(key)
		} else {
			part.RemoveFaces(key)
		}
	}
	m.RemoveUnreferencedVertices(nil)
	part.RemoveUnreferencedVertices(nil)

	ctx.Selection.Transfer(m.ID, part.ID)
	ctx.Selection.Retain(part)
	p.InsertAfter(m, part)
	for i, id := range p.Selected {
		if id == m.ID {
			p.Selected[i] = part.ID
		}
	}
	log.Debugf("split %s: %d faces kept, %d faces moved", m.Name, m.FaceCount(), part.FaceCount())
	return part
}
