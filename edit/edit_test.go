package edit

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/ansipixels/polyedit/math3d"
	"github.com/ansipixels/polyedit/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

// square returns a project holding one mesh with vertices A(0,0,0)
// B(1,0,0) C(1,1,0) D(0,1,0) and the textured quad "q" = [A,B,C,D].
func square(t *testing.T) (*models.Project, *models.Mesh) {
	t.Helper()
	m := models.NewMesh("square")
	m.SetVertex("A", math3d.V3(0, 0, 0))
	m.SetVertex("B", math3d.V3(1, 0, 0))
	m.SetVertex("C", math3d.V3(1, 1, 0))
	m.SetVertex("D", math3d.V3(0, 1, 0))
	m.SetFace("q", models.NewFace("A", "B", "C", "D").Extend(models.FacePatch{
		UV: map[string]math3d.Vec2{"A": {X: 0, Y: 0}, "B": {X: 16, Y: 0}, "C": {X: 16, Y: 16}, "D": {X: 0, Y: 16}},
	}))
	p := models.NewProject()
	p.Add(m)
	return p, m
}

func requireUVInvariant(t *testing.T, m *models.Mesh) {
	t.Helper()
	for id, f := range m.Faces() {
		keys := make([]string, 0, len(f.UV))
		for k := range f.UV {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		ids := slices.Clone(f.Vertices)
		slices.Sort(ids)
		require.Equal(t, ids, keys, "face %s uv keys", id)
		for _, v := range f.Vertices {
			require.True(t, m.HasVertex(v), "face %s references missing vertex %s", id, v)
		}
	}
}

func positions(m *models.Mesh, ids []string) []math3d.Vec3 {
	out := make([]math3d.Vec3, len(ids))
	for i, id := range ids {
		out[i] = m.Position(id)
	}
	return out
}

func requireOutward(t *testing.T, m *models.Mesh) {
	t.Helper()
	center := m.WorldCenter(nil)
	for id, f := range m.Faces() {
		if f.IsLine() {
			continue
		}
		var c math3d.Vec3
		for _, v := range f.Vertices {
			c = c.Add(m.Position(v))
		}
		c = c.Scale(1 / float64(len(f.Vertices)))
		require.Positive(t, m.Normal(f, true).Dot(c.Sub(center)), "face %s points inwards", id)
	}
}

// signature describes faces by the world positions of their corners, so
// meshes can be compared independently of ids.
func signature(meshes ...*models.Mesh) []string {
	var sig []string
	for _, m := range meshes {
		for _, f := range m.Faces() {
			corners := make([]string, 0, len(f.Vertices))
			for _, v := range f.Vertices {
				p := m.LocalToWorld(m.Position(v))
				corners = append(corners, fmt.Sprintf("%.3f,%.3f,%.3f", round(p.X), round(p.Y), round(p.Z)))
			}
			slices.Sort(corners)
			sig = append(sig, strings.Join(corners, " "))
		}
	}
	slices.Sort(sig)
	return sig
}

// round drops float noise, negative zero included.
func round(x float64) float64 {
	return math.Round(x*1e3)/1e3 + 0
}

func TestLoopCutSquare(t *testing.T) {
	p, m := square(t)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "B"})

	created := LoopCut(ctx, m)
	require.Len(t, created, 2)
	assert.Equal(t, 2, m.PolygonCount())
	assert.Equal(t, 6, m.VertexCount())
	assert.ElementsMatch(t, []math3d.Vec3{math3d.V3(0.5, 0, 0), math3d.V3(0.5, 1, 0)}, positions(m, created))
	assert.ElementsMatch(t, created, ctx.Selection.Vertices(m.ID))

	for id, f := range m.Faces() {
		require.Len(t, f.Vertices, 4, "face %s", id)
		assert.True(t, m.Normal(f, true).ApproxEqual(math3d.V3(0, 0, 1), eps), "face %s normal", id)
		for _, c := range created {
			want := math3d.V2(8, 0)
			if m.Position(c).Y == 1 {
				want = math3d.V2(8, 16)
			}
			assert.Equal(t, want, f.UV[c], "face %s uv of %s", id, c)
		}
	}
	requireUVInvariant(t, m)
}

func TestLoopCutRepeat(t *testing.T) {
	p, m := square(t)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "B"})
	require.Len(t, LoopCut(ctx, m), 2)

	created := LoopCut(ctx, m)
	require.Len(t, created, 3)
	assert.Equal(t, 4, m.PolygonCount())
	assert.Equal(t, 9, m.VertexCount())
	assert.ElementsMatch(t,
		[]math3d.Vec3{math3d.V3(0.5, 0.5, 0), math3d.V3(1, 0.5, 0), math3d.V3(0, 0.5, 0)},
		positions(m, created))
	for id, f := range m.Faces() {
		assert.True(t, m.Normal(f, true).ApproxEqual(math3d.V3(0, 0, 1), eps), "face %s normal", id)
	}
	requireUVInvariant(t, m)
}

func TestLoopCutStrip(t *testing.T) {
	m := models.NewMesh("strip")
	for i := range 4 {
		m.SetVertex(fmt.Sprintf("b%d", i), math3d.V3(float64(i), 0, 0))
		m.SetVertex(fmt.Sprintf("t%d", i), math3d.V3(float64(i), 1, 0))
	}
	for i := range 3 {
		m.SetFace(fmt.Sprintf("f%d", i), models.NewFace(
			fmt.Sprintf("b%d", i), fmt.Sprintf("b%d", i+1), fmt.Sprintf("t%d", i+1), fmt.Sprintf("t%d", i)))
	}
	p := models.NewProject()
	p.Add(m)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"b0", "t0"})

	created := LoopCut(ctx, m)
	require.Len(t, created, 4)
	assert.Equal(t, 6, m.PolygonCount())
	assert.Equal(t, 12, m.VertexCount())
	for _, pos := range positions(m, created) {
		assert.InDelta(t, 0.5, pos.Y, eps)
	}
	for id, f := range m.Faces() {
		assert.True(t, m.Normal(f, true).ApproxEqual(math3d.V3(0, 0, 1), eps), "face %s normal", id)
	}
	requireUVInvariant(t, m)
}

func TestLoopCutCubeRing(t *testing.T) {
	m := models.NewCube(2, 2)
	p := models.NewProject()
	p.Add(m)
	v := m.VertexIDs()
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{v[0], v[1]}) // top edge along Z on the east side

	created := LoopCut(ctx, m)
	require.Len(t, created, 4)
	assert.Equal(t, 10, m.PolygonCount())
	assert.Equal(t, 12, m.VertexCount())
	for _, pos := range positions(m, created) {
		assert.InDelta(t, 0, pos.Z, eps)
	}
	requireOutward(t, m)
	requireUVInvariant(t, m)

	// Cutting across the new ring runs around the four vertical faces. The
	// east and west faces are already halved, so six edges are crossed.
	again := LoopCut(ctx, m)
	assert.Len(t, again, 6)
	assert.Equal(t, 16, m.PolygonCount())
	assert.Equal(t, 18, m.VertexCount())
	requireOutward(t, m)
}

func TestLoopCutStopsAtTriangle(t *testing.T) {
	p, m := square(t)
	m.SetVertex("E", math3d.V3(2, 0.5, 0))
	m.SetFace("t", models.NewFace("B", "E", "C"))
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "D"})

	created := LoopCut(ctx, m)
	require.Len(t, created, 2)
	assert.ElementsMatch(t, []math3d.Vec3{math3d.V3(0, 0.5, 0), math3d.V3(1, 0.5, 0)}, positions(m, created))
	assert.Equal(t, 4, m.PolygonCount())
	assert.Equal(t, 7, m.VertexCount())
	triangles := 0
	for id, f := range m.Faces() {
		if len(f.Vertices) == 3 {
			triangles++
		}
		assert.True(t, m.Normal(f, true).ApproxEqual(math3d.V3(0, 0, 1), eps), "face %s normal", id)
	}
	assert.Equal(t, 2, triangles)
	requireUVInvariant(t, m)
}

func TestLoopCutNoStartFace(t *testing.T) {
	p, m := square(t)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A"})
	assert.Nil(t, LoopCut(ctx, m))
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 1, m.FaceCount())
	assert.Equal(t, []string{"A"}, ctx.Selection.Vertices(m.ID))
}

func TestInvertFaces(t *testing.T) {
	p, m := square(t)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "B", "C", "D"})
	f := m.Face("q")
	uv := maps(f.UV)
	before := m.Normal(f, true)

	assert.Equal(t, 1, InvertFaces(ctx, m))
	assert.Equal(t, []string{"B", "A", "C", "D"}, f.Vertices)
	assert.Equal(t, uv, f.UV)
	assert.True(t, m.Normal(f, true).ApproxEqual(before.Negate(), eps))

	ctx.Selection.Set(m.ID, []string{"A", "B"})
	assert.Zero(t, InvertFaces(ctx, m))
}

func maps(in map[string]math3d.Vec2) map[string]math3d.Vec2 {
	out := make(map[string]math3d.Vec2, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func TestExtrudeFace(t *testing.T) {
	p, m := square(t)
	ctx := NewContext(p)
	ctx.Depth = 2
	ctx.Selection.Set(m.ID, []string{"A", "B", "C", "D"})

	created := Extrude(ctx, m)
	require.Len(t, created, 4)
	assert.Equal(t, created, ctx.Selection.Vertices(m.ID))
	assert.Equal(t, 8, m.VertexCount())
	assert.Equal(t, 5, m.PolygonCount())
	for _, pos := range positions(m, created) {
		assert.InDelta(t, 2, pos.Z, eps)
	}

	top := m.Face("q")
	assert.ElementsMatch(t, created, top.Vertices)
	assert.True(t, m.Normal(top, true).ApproxEqual(math3d.V3(0, 0, 1), eps))

	center := math3d.V3(0.5, 0.5, 1)
	for id, f := range m.Faces() {
		if id == "q" {
			continue
		}
		var c math3d.Vec3
		for _, v := range f.Vertices {
			c = c.Add(m.Position(v))
		}
		c = c.Scale(0.25)
		assert.Positive(t, m.Normal(f, true).Dot(c.Sub(center)), "wall %s points inwards", id)
	}
	requireUVInvariant(t, m)
}

func TestExtrudeEdge(t *testing.T) {
	p, m := square(t)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "B"})

	created := Extrude(ctx, m)
	require.Len(t, created, 2)
	assert.Equal(t, 6, m.VertexCount())
	assert.Equal(t, 2, m.PolygonCount())
	assert.ElementsMatch(t, []math3d.Vec3{math3d.V3(0, 0, 1), math3d.V3(1, 0, 1)}, positions(m, created))
	assert.Equal(t, []string{"A", "B", "C", "D"}, m.Face("q").Vertices)
	requireUVInvariant(t, m)
}

func TestExtrudeLine(t *testing.T) {
	m := models.NewMesh("line")
	m.SetVertex("A", math3d.V3(0, 0, 0))
	m.SetVertex("B", math3d.V3(1, 0, 0))
	m.SetFace("l", models.NewFace("A", "B"))
	p := models.NewProject()
	p.Add(m)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "B"})

	created := Extrude(ctx, m)
	require.Len(t, created, 2)
	assert.Nil(t, m.Face("l"))
	assert.Equal(t, 4, m.VertexCount())
	require.Equal(t, 1, m.FaceCount())
	for _, f := range m.Faces() {
		assert.ElementsMatch(t, []string{"A", "B", created[0], created[1]}, f.Vertices)
	}
	requireUVInvariant(t, m)
}

func TestExtrudeMixedLineAndFace(t *testing.T) {
	p, m := square(t)
	m.SetVertex("E", math3d.V3(-1, 0, 0))
	m.SetFace("l", models.NewFace("A", "E"))
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "B", "C", "D", "E"})

	created := Extrude(ctx, m)
	require.Len(t, created, 5)
	assert.Nil(t, m.Face("l"), "extruded line is replaced by its quad")
	assert.Equal(t, 10, m.VertexCount())
	assert.Equal(t, 6, m.FaceCount())
	assert.Equal(t, 6, m.PolygonCount())

	newA, newE := created[0], created[4]
	walls, lineQuads := 0, 0
	for id, f := range m.Faces() {
		if id == "q" {
			assert.ElementsMatch(t, created[:4], f.Vertices)
			continue
		}
		require.Len(t, f.Vertices, 4, "face %s", id)
		if f.HasAll("A", "E", newA, newE) {
			lineQuads++
		} else {
			walls++
		}
	}
	assert.Equal(t, 4, walls)
	assert.Equal(t, 1, lineQuads)
	requireUVInvariant(t, m)
}

func TestExtrudeLooseVertex(t *testing.T) {
	p, m := square(t)
	m.SetVertex("E", math3d.V3(5, 5, 5))
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"E"})

	created := Extrude(ctx, m)
	require.Len(t, created, 1)
	assert.Equal(t, 2, m.FaceCount())
	var line *models.Face
	for _, f := range m.Faces() {
		if f.IsLine() {
			line = f
		}
	}
	require.NotNil(t, line)
	assert.Equal(t, []string{"E", created[0]}, line.Vertices)
}

func TestExtrudeCubeTop(t *testing.T) {
	m := models.NewCube(2, 2)
	p := models.NewProject()
	p.Add(m)
	v := m.VertexIDs()
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{v[0], v[1], v[4], v[5]})

	created := Extrude(ctx, m)
	require.Len(t, created, 4)
	assert.Equal(t, 12, m.VertexCount())
	assert.Equal(t, 10, m.PolygonCount())
	for _, pos := range positions(m, created) {
		assert.InDelta(t, 3, pos.Y, eps)
	}
	requireOutward(t, m)
	requireUVInvariant(t, m)
}

func TestExtrudeUndo(t *testing.T) {
	p, m := square(t)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "B", "C", "D"})
	snapshot, err := m.Snapshot()
	require.NoError(t, err)

	Extrude(ctx, m)
	require.NoError(t, m.Restore(snapshot))
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 1, m.FaceCount())
	assert.Equal(t, []string{"A", "B", "C", "D"}, m.Face("q").Vertices)
}

func TestCreateFaceFacesViewer(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
	}{
		{"counter clockwise", []string{"A", "B", "C", "D"}},
		{"clockwise", []string{"A", "D", "C", "B"}},
		{"diagonal", []string{"A", "C", "B", "D"}},
		{"triangle", []string{"C", "B", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, m := square(t)
			m.RemoveFaces("q")
			ctx := NewContext(p)
			ctx.Selection.Set(m.ID, tt.selected)

			id, ok := CreateFace(ctx, m)
			require.True(t, ok)
			f := m.Face(id)
			require.NotNil(t, f)
			assert.ElementsMatch(t, tt.selected, f.Vertices)
			assert.Positive(t, m.Normal(f, true).Z)
			requireUVInvariant(t, m)
		})
	}
}

func TestCreateFaceRotatedMesh(t *testing.T) {
	p, m := square(t)
	m.RemoveFaces("q")
	m.Rotation = math3d.V3(0, 180, 0)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "B", "C", "D"})

	id, ok := CreateFace(ctx, m)
	require.True(t, ok)
	assert.Negative(t, m.Normal(m.Face(id), true).Z, "local normal must point away so the world normal faces the viewer")
}

func TestCreateFaceFollowsNeighbour(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
	}{
		{"consistent", []string{"B", "E", "F", "C"}},
		{"reversed", []string{"C", "F", "E", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, m := square(t)
			m.SetVertex("E", math3d.V3(2, 0, 0))
			m.SetVertex("F", math3d.V3(2, 1, 0))
			ctx := NewContext(p)
			ctx.ViewDirection = math3d.V3(0, 0, 1) // the camera alone would flip the face
			ctx.Selection.Set(m.ID, tt.selected)

			id, ok := CreateFace(ctx, m)
			require.True(t, ok)
			assert.Equal(t, 2, m.FaceCount())
			assert.True(t, m.Normal(m.Face(id), true).ApproxEqual(math3d.V3(0, 0, 1), eps))
		})
	}
}

func TestCreateFaceReplacesCovered(t *testing.T) {
	p, m := square(t)
	p.Textures = []models.Texture{{ID: "tex", Name: "stone", Width: 32, Height: 32}}
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "B", "C", "D"})

	id, ok := CreateFace(ctx, m)
	require.True(t, ok)
	assert.Nil(t, m.Face("q"))
	assert.Equal(t, 1, m.FaceCount())
	assert.Equal(t, "tex", m.Face(id).Texture)
}

func TestCreateFaceLineAndLimits(t *testing.T) {
	p, m := square(t)
	ctx := NewContext(p)

	ctx.Selection.Set(m.ID, []string{"A"})
	_, ok := CreateFace(ctx, m)
	assert.False(t, ok)

	m.SetVertex("E", math3d.V3(2, 0, 0))
	ctx.Selection.Set(m.ID, []string{"A", "B", "C", "D", "E"})
	_, ok = CreateFace(ctx, m)
	assert.False(t, ok)
	assert.Equal(t, 1, m.FaceCount())

	ctx.Selection.Set(m.ID, []string{"A", "C"})
	id, ok := CreateFace(ctx, m)
	require.True(t, ok)
	assert.True(t, m.Face(id).IsLine())
	assert.Equal(t, 2, m.FaceCount())
}

func TestEdgeDirection(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", 1},
		{"d", "a", 1},
		{"b", "a", -1},
		{"a", "d", -1},
		{"a", "c", 0},
		{"a", "x", 0},
	}
	for _, tt := range tests {
		if got := edgeDirection(order, tt.a, tt.b); got != tt.want {
			t.Errorf("edgeDirection(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMergeMeshes(t *testing.T) {
	dst := models.NewCube(2, 2)
	dst.Origin = math3d.V3(1, 0, 0)
	dst.Rotation = math3d.V3(0, 90, 0)
	src := models.NewCube(2, 2)
	src.Name = "other"
	src.Origin = math3d.V3(5, 1, 0)
	p := models.NewProject()
	p.Add(dst, src)
	p.Select(dst.ID, src.ID)
	ctx := NewContext(p)
	picked := src.VertexIDs()[0]
	ctx.Selection.Set(src.ID, []string{picked})
	want := signature(dst, src)
	pickedWorld := src.LocalToWorld(src.Position(picked))

	merged := MergeMeshes(ctx, p)
	require.Same(t, dst, merged)
	require.Len(t, p.Meshes, 1)
	assert.Equal(t, []string{dst.ID}, p.Selected)
	assert.Equal(t, 16, dst.VertexCount())
	assert.Equal(t, 12, dst.FaceCount())
	assert.Equal(t, want, signature(dst))
	assert.False(t, ctx.Selection.Active(src.ID))

	sel := ctx.Selection.Vertices(dst.ID)
	require.Len(t, sel, 1)
	assert.True(t, dst.LocalToWorld(dst.Position(sel[0])).ApproxEqual(pickedWorld, 1e-6))
	requireUVInvariant(t, dst)
}

func TestMergeNeedsTwoMeshes(t *testing.T) {
	p, m := square(t)
	p.Select(m.ID)
	assert.Nil(t, MergeMeshes(NewContext(p), p))
	assert.Len(t, p.Meshes, 1)
}

func TestSplitMesh(t *testing.T) {
	m := models.NewCube(2, 2)
	other := models.NewMesh("other")
	p := models.NewProject()
	p.Add(m, other)
	p.Select(m.ID)
	v := m.VertexIDs()
	ctx := NewContext(p)
	top := []string{v[0], v[1], v[4], v[5]}
	ctx.Selection.Set(m.ID, top)

	part := SplitMesh(ctx, p, m)
	require.NotNil(t, part)
	assert.Equal(t, "cube_selection", part.Name)
	assert.NotEqual(t, m.ID, part.ID)
	assert.Equal(t, []*models.Mesh{m, part, other}, p.Meshes)
	assert.Equal(t, []string{part.ID}, p.Selected)

	assert.Equal(t, 1, m.FaceCount())
	assert.Equal(t, 4, m.VertexCount())
	for _, id := range top {
		assert.False(t, m.HasVertex(id))
	}
	assert.Equal(t, 5, part.FaceCount())
	assert.Equal(t, 8, part.VertexCount())

	assert.False(t, ctx.Selection.Active(m.ID))
	assert.Equal(t, top, ctx.Selection.Vertices(part.ID))
	requireUVInvariant(t, m)
	requireUVInvariant(t, part)
}

func TestSplitPrunesUnreferencedVertices(t *testing.T) {
	p, m := square(t)
	m.SetVertex("E", math3d.V3(3, 3, 0)) // unselected, unreferenced
	m.SetVertex("F", math3d.V3(4, 4, 0)) // selected, unreferenced
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A", "F"})

	part := SplitMesh(ctx, p, m)
	require.NotNil(t, part)
	assert.Zero(t, m.FaceCount())
	assert.Zero(t, m.VertexCount(), "original keeps no vertex without a face")
	assert.Equal(t, 1, part.FaceCount())
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, part.VertexIDs())
	assert.Equal(t, []string{"A"}, ctx.Selection.Vertices(part.ID))
	requireUVInvariant(t, part)
}

func TestSplitSingleCornerRoundTrip(t *testing.T) {
	p, m := square(t)
	ctx := NewContext(p)
	ctx.Selection.Set(m.ID, []string{"A"})
	want := signature(m)

	part := SplitMesh(ctx, p, m)
	require.NotNil(t, part)
	assert.Zero(t, m.FaceCount())
	assert.Zero(t, m.VertexCount())
	assert.Equal(t, 1, part.FaceCount())
	assert.Equal(t, 4, part.VertexCount())

	p.Select(part.ID, m.ID)
	require.Same(t, part, MergeMeshes(ctx, p))
	assert.Equal(t, []*models.Mesh{part}, p.Meshes)
	assert.Equal(t, 1, part.FaceCount())
	assert.Equal(t, 4, part.VertexCount())
	assert.Equal(t, want, signature(part))
	requireUVInvariant(t, part)
}

func TestSplitWithoutSelection(t *testing.T) {
	p, m := square(t)
	assert.Nil(t, SplitMesh(NewContext(p), p, m))
	assert.Len(t, p.Meshes, 1)
}

func TestSplitMergeRoundTrip(t *testing.T) {
	// Two disjoint cubes in one mesh, the second one selected.
	m := models.NewCube(2, 2)
	second := models.NewCube(2, 2)
	second.Origin = math3d.V3(4, 0, 0)
	p := models.NewProject()
	p.Add(m, second)
	p.Select(m.ID, second.ID)
	ctx := NewContext(p)
	ctx.Selection.Set(second.ID, second.VertexIDs())
	require.NotNil(t, MergeMeshes(ctx, p))
	require.Len(t, ctx.Selection.Vertices(m.ID), 8)

	want := signature(m)
	part := SplitMesh(ctx, p, m)
	require.NotNil(t, part)
	assert.Equal(t, 8, m.VertexCount())
	assert.Equal(t, 8, part.VertexCount())
	assert.Equal(t, 6, m.FaceCount())
	assert.Equal(t, 6, part.FaceCount())

	p.Select(m.ID, part.ID)
	require.Same(t, m, MergeMeshes(ctx, p))
	assert.Equal(t, 16, m.VertexCount())
	assert.Equal(t, 12, m.FaceCount())
	assert.Equal(t, want, signature(m))
	requireUVInvariant(t, m)
}
