package edit

import (
	"slices"

	"fortio.org/log"
	"github.com/ansipixels/polyedit/math3d"
	"github.com/ansipixels/polyedit/models"
)

// edgeKey identifies an undirected edge.
type edgeKey [2]string

func newEdgeKey(a, b string) edgeKey {
	if b < a {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// loopCut is the state of one loop cut pass.
type loopCut struct {
	mesh      *models.Mesh
	centers   map[edgeKey]string
	created   []string
	processed map[string]bool
	pending   []edgeKey // edges whose neighbouring face still has to be split
}

// LoopCut subdivides the ring of faces crossing the edge between two
// selected vertices. Each crossed edge gets one center vertex at its
// midpoint; the ring runs through quads until it meets a triangle, an open
// boundary or closes on itself. The selection is replaced by the center
// vertices, which are returned. Nil means no face qualified.
func LoopCut(ctx *Context, m *models.Mesh) []string {
	selected := ctx.selected(m)
	startID, side := startFace(m, selected)
	if startID == "" {
		log.Debugf("loop cut on %s: no face with two selected vertices", m.Name)
		return nil
	}
	lc := &loopCut{
		mesh:      m,
		centers:   make(map[edgeKey]string),
		processed: make(map[string]bool),
	}
	lc.split(startID, side, len(m.Face(startID).Vertices) == 4)
	for len(lc.pending) > 0 {
		edge := lc.pending[len(lc.pending)-1]
		lc.pending = lc.pending[:len(lc.pending)-1]
		if next := lc.neighbour(edge); next != "" {
			lc.split(next, edge, false)
		}
	}
	ctx.Selection.Set(m.ID, lc.created)
	log.Debugf("loop cut on %s: %d faces split, %d vertices added", m.Name, len(lc.processed), len(lc.created))
	return lc.created
}

// startFace returns the first polygon with at least two selected vertices
// and the pair to cut. A pair adjacent in winding order is preferred.
func startFace(m *models.Mesh, selected []string) (string, edgeKey) {
	for key, f := range m.Faces() {
		if f.IsLine() {
			continue
		}
		common := f.CommonVertices(selected)
		if len(common) < 2 {
			continue
		}
		sorted := m.SortedVertices(f)
		for i, a := range sorted {
			b := sorted[(i+1)%len(sorted)]
			if slices.Contains(common, a) && slices.Contains(common, b) {
				return key, edgeKey{a, b}
			}
		}
		return key, edgeKey{common[0], common[1]}
	}
	return "", edgeKey{}
}

// neighbour finds the first unprocessed polygon containing both edge vertices.
func (lc *loopCut) neighbour(edge edgeKey) string {
	for key, f := range lc.mesh.Faces() {
		if f.IsLine() || lc.processed[key] {
			continue
		}
		if f.HasAll(edge[0], edge[1]) {
			return key
		}
	}
	return ""
}

// center returns the midpoint vertex of edge, creating it once per pass.
func (lc *loopCut) center(a, b string) string {
	key := newEdgeKey(a, b)
	if c, ok := lc.centers[key]; ok {
		return c
	}
	p := lc.mesh.Position(a).Midpoint(lc.mesh.Position(b))
	c := lc.mesh.AddVertices(p)[0]
	lc.centers[key] = c
	lc.created = append(lc.created, c)
	return c
}

// split cuts face id across side. The face keeps one half under its id and
// the other half is added as a new face. Quads queue the opposite edge, and
// the side edge too when doubleSide is set.
func (lc *loopCut) split(id string, side edgeKey, doubleSide bool) {
	lc.processed[id] = true
	m := lc.mesh
	f := m.Face(id)
	sorted := m.SortedVertices(f)
	n := len(sorted)

	s0, s1 := side[0], side[1]
	if d := slices.Index(sorted, s0) - slices.Index(sorted, s1); d == -1 || d > 2 {
		s0, s1 = s1, s0
	}
	half := f.Clone()

	if n == 4 {
		var opposite []string
		for _, v := range sorted {
			if v != s0 && v != s1 {
				opposite = append(opposite, v)
			}
		}
		o0, o1 := opposite[0], opposite[1]
		if d := slices.Index(sorted, o0) - slices.Index(sorted, o1); d == 1 || d < -2 {
			o0, o1 = o1, o0
		}
		c0, c1 := lc.center(s0, s1), lc.center(o0, o1)
		uv0 := midUV(f, s0, s1)
		uv1 := midUV(f, o0, o1)

		half.Extend(models.FacePatch{
			Vertices: []string{s1, c0, c1, o1},
			UV:       map[string]math3d.Vec2{s1: f.UV[s1], c0: uv0, c1: uv1, o1: f.UV[o1]},
		})
		f.Extend(models.FacePatch{
			Vertices: []string{o0, c0, c1, s0},
			UV:       map[string]math3d.Vec2{o0: f.UV[o0], c0: uv0, c1: uv1, s0: f.UV[s0]},
		})
		m.AddFaces(half)

		// The opposite edge is handled first, as a recursive walk would.
		if doubleSide {
			lc.pending = append(lc.pending, edgeKey{s0, s1})
		}
		lc.pending = append(lc.pending, edgeKey{o0, o1})
		return
	}

	var opp string
	for _, v := range sorted {
		if v != s0 && v != s1 {
			opp = v
			break
		}
	}
	c := lc.center(s0, s1)
	uv := midUV(f, s0, s1)
	half.Extend(models.FacePatch{
		Vertices: []string{s1, c, opp},
		UV:       map[string]math3d.Vec2{s1: f.UV[s1], c: uv, opp: f.UV[opp]},
	})
	f.Extend(models.FacePatch{
		Vertices: []string{opp, c, s0},
		UV:       map[string]math3d.Vec2{opp: f.UV[opp], c: uv, s0: f.UV[s0]},
	})
	m.AddFaces(half)
}

func midUV(f *models.Face, a, b string) math3d.Vec2 {
	return f.UV[a].Midpoint(f.UV[b])
}
