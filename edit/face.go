package edit

import (
	"math"
	"slices"

	"fortio.org/log"
	"github.com/ansipixels/polyedit/math3d"
	"github.com/ansipixels/polyedit/models"
)

// CreateFace replaces the faces covered by the selection with one face over
// the selected vertices, in selection order. The selection must hold 2 to 4
// vertices. Polygons are oriented against a neighbour sharing an edge, or
// towards the viewer when there is none. Returns the new face id.
func CreateFace(ctx *Context, m *models.Mesh) (string, bool) {
	selected := ctx.selected(m)
	if len(selected) < 2 || len(selected) > 4 {
		log.Debugf("create face on %s: %d vertices selected, need 2 to 4", m.Name, len(selected))
		return "", false
	}
	m.RemoveFaces(m.SelectedFaces(selected)...)

	face := models.NewFace(selected...)
	if tex, ok := ctx.defaultTexture(); ok {
		face.Texture = tex
	}
	id := m.AddFaces(face)[0]
	if face.IsLine() {
		return id, true
	}

	if inverted, found := orientByNeighbour(m, id, face, selected); found {
		log.Debugf("create face on %s: oriented by neighbour, inverted=%v", m.Name, inverted)
		return id, true
	}
	normal := math3d.EulerDegrees(m.Rotation).MulVec3Dir(m.Normal(face, false))
	if normal.AngleTo(ctx.ViewDirection) < math.Pi/2 {
		face.Invert()
	}
	return id, true
}

// orientByNeighbour looks for a face sharing exactly two vertices with the
// new face and inverts the new face when both walk the shared edge in the
// same direction.
func orientByNeighbour(m *models.Mesh, id string, face *models.Face, selected []string) (inverted, found bool) {
	for key, other := range m.Faces() {
		if key == id || other.IsLine() {
			continue
		}
		common := other.CommonVertices(selected)
		if len(common) != 2 {
			continue
		}
		oldDiff := edgeDirection(m.SortedVertices(other), common[0], common[1])
		newDiff := edgeDirection(m.SortedVertices(face), common[0], common[1])
		if oldDiff == 0 || newDiff == 0 {
			continue
		}
		if oldDiff == newDiff {
			face.Invert()
			return true, true
		}
		return false, true
	}
	return false, false
}

// edgeDirection returns +1 when b follows a directly in the cyclic order,
// -1 when a follows b and 0 when they are not adjacent.
func edgeDirection(order []string, a, b string) int {
	n := len(order)
	ia, ib := slices.Index(order, a), slices.Index(order, b)
	if ia < 0 || ib < 0 {
		return 0
	}
	switch ib - ia {
	case 1, 1 - n:
		return 1
	case -1, n - 1:
		return -1
	}
	return 0
}

// InvertFaces flips the winding of every face covered by the selection and
// returns how many faces changed.
func InvertFaces(ctx *Context, m *models.Mesh) int {
	n := 0
	for _, f := range m.Faces() {
		if f.IsLine() || !m.IsSelected(f, ctx.selected(m)) {
			continue
		}
		f.Invert()
		n++
	}
	return n
}
