package models

import (
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ansipixels/polyedit/math3d"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// GLTFLoader loads GLTF/GLB triangle primitives into an editable Mesh.
// Node transforms are baked into the vertex positions.
type GLTFLoader struct {
	// Weld merges corners with identical positions into one vertex so the
	// imported faces share edges.
	Weld bool
	// UV space of the imported faces.
	TextureWidth  float64
	TextureHeight float64
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		Weld:          true,
		TextureWidth:  DefaultTextureSize,
		TextureHeight: DefaultTextureSize,
	}
}

// LoadGLB loads a binary GLTF (.glb) file with default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

type gltfImport struct {
	loader *GLTFLoader
	doc    *gltf.Document
	mesh   *Mesh
	welded map[math3d.Vec3]string
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	imp := &gltfImport{
		loader: l,
		doc:    doc,
		mesh:   NewMesh(name),
		welded: make(map[math3d.Vec3]string),
	}

	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = int(*doc.Scene)
		}
		for _, nodeIdx := range doc.Scenes[sceneIdx].Nodes {
			if err := imp.node(int(nodeIdx), math3d.Identity()); err != nil {
				return nil, err
			}
		}
		return imp.mesh, nil
	}
	// No scenes defined, process all root nodes
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[int(c)] = true
		}
	}
	for i := range doc.Nodes {
		if child[i] {
			continue
		}
		if err := imp.node(i, math3d.Identity()); err != nil {
			return nil, err
		}
	}
	return imp.mesh, nil
}

// node processes a node and its children, accumulating transforms.
func (imp *gltfImport) node(nodeIdx int, parent math3d.Mat4) error {
	node := imp.doc.Nodes[nodeIdx]

	local := math3d.Identity()
	if node.Translation != [3]float64{0, 0, 0} {
		local = local.Mul(math3d.Translate(math3d.V3FromArray(node.Translation)))
	}
	if node.Rotation != [4]float64{0, 0, 0, 1} && node.Rotation != [4]float64{} {
		local = local.Mul(math3d.QuatToMat4(node.Rotation[0], node.Rotation[1], node.Rotation[2], node.Rotation[3]))
	}
	if node.Scale != [3]float64{1, 1, 1} && node.Scale != [3]float64{0, 0, 0} {
		local = local.Mul(math3d.Scale(math3d.V3FromArray(node.Scale)))
	}
	if node.Matrix != [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} && node.Matrix != [16]float64{} {
		local = math3d.Mat4FromColumnMajor(node.Matrix)
	}
	world := parent.Mul(local)

	if node.Mesh != nil {
		if err := imp.primitives(imp.doc.Meshes[int(*node.Mesh)], world); err != nil {
			return fmt.Errorf("mesh %d: %w", *node.Mesh, err)
		}
	}
	for _, childIdx := range node.Children {
		if err := imp.node(int(childIdx), world); err != nil {
			return err
		}
	}
	return nil
}

// primitives adds the triangles of a GLTF mesh, applying the given transform.
func (imp *gltfImport) primitives(m *gltf.Mesh, transform math3d.Mat4) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(imp.doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}
		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = readVec2Accessor(imp.doc, uvIdx)
			if err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		ids := make([]string, len(positions))
		for i, p := range positions {
			ids[i] = imp.vertex(transform.MulVec3(p))
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(imp.doc, int(*prim.Indices))
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			imp.triangle(ids, uvs, indices[i:i+3])
		}
	}
	return nil
}

func (imp *gltfImport) vertex(p math3d.Vec3) string {
	if !imp.loader.Weld {
		return imp.mesh.AddVertices(p)[0]
	}
	if id, ok := imp.welded[p]; ok {
		return id
	}
	id := imp.mesh.AddVertices(p)[0]
	imp.welded[p] = id
	return id
}

func (imp *gltfImport) triangle(ids []string, uvs []math3d.Vec2, corners []int) {
	var vertices []string
	uv := make(map[string]math3d.Vec2, 3)
	for _, c := range corners {
		if c < 0 || c >= len(ids) {
			return
		}
		id := ids[c]
		if _, dup := uv[id]; dup {
			return
		}
		vertices = append(vertices, id)
		uv[id] = math3d.Vec2{}
		if c < len(uvs) {
			uv[id] = math3d.V2(uvs[c].X*imp.loader.TextureWidth, uvs[c].Y*imp.loader.TextureHeight)
		}
	}
	f := &Face{}
	imp.mesh.AddFaces(f.Extend(FacePatch{Vertices: vertices, UV: uv}))
}

// GLTFExporter writes meshes as a binary GLTF scene. Each polygon gets its
// own corners with a flat normal; quads are split along their sorted order.
type GLTFExporter struct {
	// TextureSize returns the UV space of a texture id, used to normalise UVs.
	TextureSize func(texture string) (w, h float64)
}

// NewGLTFExporter creates an exporter normalising UVs by DefaultTextureSize.
func NewGLTFExporter() *GLTFExporter {
	return &GLTFExporter{
		TextureSize: func(string) (float64, float64) {
			return DefaultTextureSize, DefaultTextureSize
		},
	}
}

// Document builds a GLTF document with one node per mesh. Meshes without
// triangles or quads are skipped.
func (e *GLTFExporter) Document(meshes ...*Mesh) *gltf.Document {
	doc := gltf.NewDocument()
	for _, m := range meshes {
		var positions, normals [][3]float32
		var uvs [][2]float32
		var indices []uint32
		for _, f := range m.Faces() {
			if f.IsLine() {
				continue
			}
			sorted := m.SortedVertices(f)
			n := m.Normal(f, true)
			w, h := e.TextureSize(f.Texture)
			base := uint32(len(positions))
			for _, v := range sorted {
				p := m.Position(v)
				uv := f.UV[v]
				positions = append(positions, [3]float32{float32(p.X), float32(p.Y), float32(p.Z)})
				normals = append(normals, [3]float32{float32(n.X), float32(n.Y), float32(n.Z)})
				uvs = append(uvs, [2]float32{float32(uv.X / w), float32(uv.Y / h)})
			}
			for i := 1; i+1 < len(sorted); i++ {
				indices = append(indices, base, base+uint32(i), base+uint32(i+1))
			}
		}
		if len(indices) == 0 {
			continue
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: m.Name,
			Primitives: []*gltf.Primitive{{
				Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
				Attributes: map[string]int{
					gltf.POSITION:   modeler.WritePosition(doc, positions),
					gltf.NORMAL:     modeler.WriteNormal(doc, normals),
					gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
				},
			}},
		})
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        m.Name,
			Mesh:        gltf.Index(len(doc.Meshes) - 1),
			Translation: m.Origin.Array(),
			Rotation:    math3d.EulerDegreesQuat(m.Rotation),
			Scale:       [3]float64{1, 1, 1},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc
}

// Save writes the meshes to path as GLB.
func (e *GLTFExporter) Save(path string, meshes ...*Mesh) error {
	if err := gltf.SaveBinary(e.Document(meshes...), path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	floats, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC3")
	}
	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}
	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	floats, ok := data.([][2]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC2")
	}
	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(float64(f[0]), float64(f[1]))
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	data, err := readAccessorData(doc, doc.Accessors[accessorIdx])
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []uint8:
		return widen(v), nil
	case []uint16:
		return widen(v), nil
	case []uint32:
		return widen(v), nil
	default:
		return nil, fmt.Errorf("unexpected index type: %T", data)
	}
}

func widen[T uint8 | uint16 | uint32](v []T) []int {
	result := make([]int, len(v))
	for i, x := range v {
		result[i] = int(x)
	}
	return result
}

// readAccessorData reads raw data from an embedded GLTF accessor.
func readAccessorData(doc *gltf.Document, accessor *gltf.Accessor) (any, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	bufData := buffer.Data
	if bufData == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	count := accessor.Count

	switch accessor.Type {
	case gltf.AccessorVec3:
		if stride == 0 {
			stride = 12
		}
		result := make([][3]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 3 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorVec2:
		if stride == 0 {
			stride = 8
		}
		result := make([][2]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 2 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorScalar:
		if stride == 0 {
			switch accessor.ComponentType {
			case gltf.ComponentUbyte:
				stride = 1
			case gltf.ComponentUshort:
				stride = 2
			case gltf.ComponentUint:
				stride = 4
			}
		}
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			result := make([]uint8, count)
			for i := range count {
				result[i] = bufData[start+i*stride]
			}
			return result, nil
		case gltf.ComponentUshort:
			result := make([]uint16, count)
			for i := range count {
				result[i] = binary.LittleEndian.Uint16(bufData[start+i*stride:])
			}
			return result, nil
		case gltf.ComponentUint:
			result := make([]uint32, count)
			for i := range count {
				result[i] = binary.LittleEndian.Uint32(bufData[start+i*stride:])
			}
			return result, nil
		}
	}

	return nil, fmt.Errorf("unsupported accessor type: %v / %v", accessor.Type, accessor.ComponentType)
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
