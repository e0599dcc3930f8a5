package models

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ansipixels/polyedit/math3d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProject(t *testing.T) *Project {
	t.Helper()
	p := NewProject()
	quad := unitQuad(t)
	quad.Origin = math3d.V3(1, 2, 3)
	quad.Rotation = math3d.V3(0, 90, 0)
	quad.Face("q").Extend(FacePatch{
		UV:      map[string]math3d.Vec2{"c": math3d.V2(16, 16)},
		Texture: Ref("tex"),
	})
	cube := NewCube(2, 2)
	cube.Visible = false
	p.Add(quad, cube)
	p.Select(quad.ID)
	p.Selection.Set(quad.ID, []string{"b", "a"})
	p.Textures = []Texture{{ID: "tex", Name: "skin", Width: 64, Height: 32}}
	return p
}

func TestProjectCodecs(t *testing.T) {
	for _, format := range Formats {
		t.Run(string(format), func(t *testing.T) {
			p := testProject(t)
			var buf bytes.Buffer
			require.NoError(t, EncodeProject(&buf, p, format))
			got, err := DecodeProject(&buf, format)
			require.NoError(t, err)

			require.Len(t, got.Meshes, 2)
			for i, m := range p.Meshes {
				assert.Equal(t, m.Record(), got.Meshes[i].Record())
			}
			assert.Equal(t, p.Selected, got.Selected)
			assert.Equal(t, []string{"b", "a"}, got.Selection.Vertices(p.Meshes[0].ID))
			assert.Equal(t, p.Textures, got.Textures)
			assert.False(t, got.Meshes[1].Visible)
			requireUVInvariant(t, got.Meshes[0])
		})
	}
}

func TestYAMLLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeProject(&buf, testProject(t), FormatYAML))
	out := buf.String()
	assert.Contains(t, out, "origin: [1, 2, 3]")
	assert.Contains(t, out, "texture: tex")
	assert.Contains(t, out, "selected_vertices:")
}

func TestDecodeDropsDanglingSelection(t *testing.T) {
	in := `{"meshes":[{"uuid":"m1","name":"m","vertices":{"a":[0,0,0]},"faces":{}}],
"selected":["m1","gone"],"selected_vertices":{"m1":["a","zz"],"gone":["x"]}}`
	p, err := DecodeProject(strings.NewReader(in), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, p.Selected)
	assert.Equal(t, []string{"a"}, p.Selection.Vertices("m1"))
	assert.Equal(t, []string{"m1"}, p.Selection.Meshes())
}

func TestFormats(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"a.json", FormatJSON, false},
		{"dir/a.YAML", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.msgpack", FormatMsgpack, false},
		{"a.obj", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
	f, err := ParseFormat("MsgPack")
	require.NoError(t, err)
	assert.Equal(t, FormatMsgpack, f)
	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorIs(t, EncodeProject(&bytes.Buffer{}, NewProject(), "xml"), ErrUnknownFormat)
}

func TestSaveLoadProject(t *testing.T) {
	dir := t.TempDir()
	p := testProject(t)
	path := filepath.Join(dir, "scene.msgpack")
	require.NoError(t, SaveProject(path, p, ""))
	got, err := LoadProject(path)
	require.NoError(t, err)
	require.Len(t, got.Meshes, 2)
	assert.Equal(t, p.Meshes[0].Record(), got.Meshes[0].Record())

	assert.ErrorIs(t, SaveProject(filepath.Join(dir, "scene.txt"), p, ""), ErrUnknownFormat)
	_, err = LoadProject(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSnapshotRestore(t *testing.T) {
	m := unitQuad(t)
	id := m.ID
	before := m.Record()
	snap, err := m.Snapshot()
	require.NoError(t, err)

	m.SetVertex("a", math3d.V3(7, 7, 7))
	m.AddVertices(math3d.V3(1, 1, 1))
	m.Face("q").Invert()
	m.AddFaces(NewFace("a", "b"))
	m.Name = "changed"

	require.NoError(t, m.Restore(snap))
	assert.Equal(t, id, m.ID)
	assert.Equal(t, before, m.Record())
	assert.Error(t, m.Restore([]byte{0xc1}))
}

func TestMeshFromRecordFreshIdentity(t *testing.T) {
	m := MeshFromRecord(MeshRecord{Name: "x", Vertices: map[string][]float64{"a": {1, 2}}})
	assert.Len(t, m.ID, 36)
	assert.Equal(t, math3d.V3(1, 2, 0), m.Position("a"))
}

const objSource = `# quad plus pentagon
o panel
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 2 0 0
v 3 0 0
v 3 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
f 2 5 6 7 3
l 4 1
`

func TestOBJLoader(t *testing.T) {
	m, err := NewOBJLoader().Load(strings.NewReader(objSource), "panel.obj")
	require.NoError(t, err)
	assert.Equal(t, "panel", m.Name)
	assert.Equal(t, 7, m.VertexCount())
	// quad + 3 fan triangles + line
	assert.Equal(t, 5, m.FaceCount())
	assert.Equal(t, 4, m.PolygonCount())
	requireUVInvariant(t, m)

	ids := m.VertexIDs()
	var quad *Face
	for _, f := range m.Faces() {
		if len(f.Vertices) == 4 {
			quad = f
		}
	}
	require.NotNil(t, quad)
	assert.Equal(t, ids[:4], quad.Vertices)
	assert.Equal(t, math3d.V2(0, 16), quad.UV[ids[0]], "v flipped into texture space")
	assert.Equal(t, math3d.V2(16, 0), quad.UV[ids[2]])
	assert.True(t, m.Normal(quad, true).ApproxEqual(math3d.V3(0, 0, 1), 1e-9))
}

func TestOBJLoaderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line string
	}{
		{"bad vertex", "v 1 x 2\n", "line 1"},
		{"short vertex", "v 1 2\n", "line 1"},
		{"index range", "v 0 0 0\nf 1 2 3\n", "line 2"},
		{"bad index", "v 0 0 0\nf a b c\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOBJLoader().Load(strings.NewReader(tt.src), "bad.obj")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.line)
		})
	}
}

func TestOBJWriteReadBack(t *testing.T) {
	cube := NewCube(2, 2)
	cube.AddFaces(NewFace(cube.VertexIDs()[0], cube.VertexIDs()[7]))
	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, cube, DefaultTextureSize, DefaultTextureSize))
	got, err := NewOBJLoader().Load(&buf, "cube.obj")
	require.NoError(t, err)
	assert.Equal(t, "cube", got.Name)
	assert.Equal(t, 8, got.VertexCount())
	assert.Equal(t, 6, got.PolygonCount())
	assert.Equal(t, 7, got.FaceCount())
	requireUVInvariant(t, got)
	for id, f := range got.Faces() {
		if f.IsLine() {
			continue
		}
		// Written in sorted order, so stored order is already a boundary walk.
		assert.Equal(t, f.Vertices, got.SortedVertices(f), "face %s", id)
	}
}

func TestGLBExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.glb")
	cube := NewCube(2, 2)
	line := NewMesh("wire")
	ids := line.AddVertices(math3d.V3(0, 0, 0), math3d.V3(1, 0, 0))
	line.AddFaces(NewFace(ids...))

	exp := NewGLTFExporter()
	doc := exp.Document(cube, line)
	require.Len(t, doc.Meshes, 1, "meshes without polygons are skipped")
	require.Len(t, doc.Nodes, 1)
	require.NoError(t, exp.Save(path, cube, line))

	got, err := LoadGLB(path)
	require.NoError(t, err)
	assert.Equal(t, "cube", got.Name)
	assert.Equal(t, 8, got.VertexCount(), "corners welded back together")
	assert.Equal(t, 12, got.PolygonCount())
	requireUVInvariant(t, got)
	lo, hi := got.Bounds()
	assert.True(t, lo.ApproxEqual(math3d.V3(-1, 0, -1), 1e-6))
	assert.True(t, hi.ApproxEqual(math3d.V3(1, 2, 1), 1e-6))

	loader := NewGLTFLoader()
	loader.Weld = false
	unwelded, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24, unwelded.VertexCount())
}

func TestGLBNodeTransformBaked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moved.glb")
	cube := NewCube(2, 2)
	cube.Origin = math3d.V3(10, 0, 0)
	cube.Rotation = math3d.V3(0, 90, 0)
	require.NoError(t, NewGLTFExporter().Save(path, cube))

	got, err := LoadGLB(path)
	require.NoError(t, err)
	for _, id := range cube.VertexIDs() {
		world := cube.LocalToWorld(cube.Position(id))
		found := false
		for _, p := range got.Vertices() {
			if p.ApproxEqual(world, 1e-5) {
				found = true
				break
			}
		}
		assert.True(t, found, "world position %v missing", world)
	}
}

func TestTransforms(t *testing.T) {
	m := unitQuad(t)
	m.Origin = math3d.V3(5, 0, 0)
	m.Rotation = math3d.V3(0, 0, 90)
	p := math3d.V3(1, 0, 0)
	w := m.LocalToWorld(p)
	assert.True(t, w.ApproxEqual(math3d.V3(5, 1, 0), 1e-9), "got %v", w)
	assert.True(t, m.WorldToLocal(w).ApproxEqual(p, 1e-9))

	center := m.WorldCenter([]string{"a", "b"})
	assert.True(t, center.ApproxEqual(math3d.V3(5, 0.5, 0), 1e-9), "got %v", center)
	assert.Equal(t, math3d.Vec3{}, NewMesh("empty").WorldCenter(nil))

	before := make(map[string]math3d.Vec3)
	for id, p := range m.Vertices() {
		before[id] = m.LocalToWorld(p)
	}
	m.TransferOrigin(math3d.V3(0, 3, 0))
	assert.Equal(t, math3d.V3(0, 3, 0), m.Origin)
	for id, p := range m.Vertices() {
		assert.True(t, m.LocalToWorld(p).ApproxEqual(before[id], 1e-9), "vertex %s moved", id)
	}
}

func TestFlip(t *testing.T) {
	cube := NewCube(2, 2)
	cube.Origin = math3d.V3(3, 0, 0)
	cube.Rotation = math3d.V3(0, 30, 0)
	world := make(map[string]math3d.Vec3)
	for id, p := range cube.Vertices() {
		world[id] = cube.LocalToWorld(p)
	}
	cube.Flip(0)
	for id, p := range cube.Vertices() {
		w := world[id]
		assert.True(t, cube.LocalToWorld(p).ApproxEqual(math3d.V3(-w.X, w.Y, w.Z), 1e-9), "vertex %s", id)
	}
	lo, hi := cube.Bounds()
	center := lo.Midpoint(hi)
	for id, f := range cube.Faces() {
		var c math3d.Vec3
		for _, v := range f.Vertices {
			c = c.Add(cube.Position(v))
		}
		c = c.Scale(0.25)
		assert.Positive(t, cube.Normal(f, true).Dot(c.Sub(center)), "face %s inverted inwards", id)
	}
}

func TestApplyTexture(t *testing.T) {
	m := NewCube(2, 2)
	ids := m.FaceIDs()
	m.ApplyTexture("t", nil)
	for _, f := range m.Faces() {
		assert.Equal(t, "t", f.Texture)
	}
	m.ApplyTexture("", ids[:1])
	assert.Empty(t, m.Face(ids[0]).Texture)
	assert.Equal(t, "t", m.Face(ids[1]).Texture)
}
