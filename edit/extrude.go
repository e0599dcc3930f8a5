package edit

import (
	"slices"

	"fortio.org/log"
	"github.com/ansipixels/polyedit/math3d"
	"github.com/ansipixels/polyedit/models"
)

// Extrude duplicates the selected vertices, offset by ctx.Depth along the
// averaged normal of the selected faces around them. Selected faces move to
// the new vertices and every open edge gets a connecting quad. The selection
// is replaced by the new vertices, which are returned.
func Extrude(ctx *Context, m *models.Mesh) []string {
	original := slices.Clone(ctx.selected(m))
	if len(original) == 0 {
		log.Debugf("extrude on %s: nothing selected", m.Name)
		return nil
	}
	selectedFaces := m.SelectedFaces(original)

	positions := make([]math3d.Vec3, len(original))
	for i, v := range original {
		dir := extrudeDirection(m, v, selectedFaces, original)
		positions[i] = m.Position(v).Add(dir.Scale(ctx.Depth))
	}
	created := m.AddVertices(positions...)
	ctx.Selection.Set(m.ID, created)

	newOf := make(map[string]string, len(original))
	oldOf := make(map[string]string, len(original))
	for i, v := range original {
		newOf[v] = created[i]
		oldOf[created[i]] = v
	}

	for _, key := range selectedFaces {
		f := m.Face(key)
		for _, v := range slices.Clone(f.Vertices) {
			f.ReplaceVertex(v, newOf[v])
		}
	}

	remaining := slices.Clone(created)
	for _, key := range selectedFaces {
		f := m.Face(key)
		sorted := slices.Clone(m.SortedVertices(f))
		for i, a := range sorted {
			if len(sorted) == 2 && i > 0 {
				break
			}
			b := sorted[(i+1)%len(sorted)]
			if sharedWithSelected(m, selectedFaces, key, a, b) {
				continue
			}
			m.AddFaces(f.Clone().Extend(models.FacePatch{
				Vertices: []string{b, a, oldOf[a], oldOf[b]},
			}))
			remaining = without(remaining, a, b)
		}
		if len(sorted) == 2 {
			m.RemoveFaces(key)
		}
	}

	// Open edges between selected vertices borrow the face they came from.
	for _, key := range m.FaceIDs() {
		if len(remaining) < 2 {
			break
		}
		f := m.Face(key)
		var matched []string
		for _, v := range f.Vertices {
			if n, ok := newOf[v]; ok && slices.Contains(remaining, n) {
				matched = append(matched, v)
			}
		}
		if len(matched) < 2 {
			continue
		}
		c, d := matched[0], matched[1]
		a, b := newOf[c], newOf[d]
		m.AddFaces(f.Clone().Extend(models.FacePatch{Vertices: []string{b, a, c, d}}))
		remaining = without(remaining, a, b)
	}

	for _, a := range remaining {
		m.AddFaces(models.NewFace(oldOf[a], a))
	}
	log.Debugf("extruded %d vertices of %s (%d faces moved)", len(created), m.Name, len(selectedFaces))
	return created
}

// extrudeDirection averages the unit normals of the selected faces using v.
// Without a usable one it falls back to the normal of the face sharing the
// most vertices with the selection.
func extrudeDirection(m *models.Mesh, v string, selectedFaces, selected []string) math3d.Vec3 {
	var dir math3d.Vec3
	count := 0
	for _, key := range selectedFaces {
		f := m.Face(key)
		if f.Has(v) {
			dir = dir.Add(m.Normal(f, true))
			count++
		}
	}
	if count > 1 {
		dir = dir.Scale(1 / float64(count))
	}
	if dir.LenSq() > 0 {
		return dir
	}
	var match *models.Face
	best := 0
	for _, f := range m.Faces() {
		if n := len(f.CommonVertices(selected)); n > best {
			best, match = n, f
		}
		if best >= 3 {
			break
		}
	}
	if match == nil {
		return math3d.Vec3{}
	}
	return m.Normal(match, true)
}

func sharedWithSelected(m *models.Mesh, selectedFaces []string, self, a, b string) bool {
	for _, key := range selectedFaces {
		if key != self && m.Face(key).HasAll(a, b) {
			return true
		}
	}
	return false
}

func without(ids []string, drop ...string) []string {
	return slices.DeleteFunc(ids, func(id string) bool { return slices.Contains(drop, id) })
}
