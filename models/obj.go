package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fortio.org/log"
	"github.com/ansipixels/polyedit/math3d"
)

// OBJLoader loads Wavefront OBJ files into editable meshes.
type OBJLoader struct {
	// UV space of the imported faces; OBJ texture coordinates are scaled to it.
	TextureWidth  float64
	TextureHeight float64
	// Texture assigned to every imported face (empty for none).
	Texture string
}

// NewOBJLoader creates a new OBJ loader with default settings.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{
		TextureWidth:  DefaultTextureSize,
		TextureHeight: DefaultTextureSize,
	}
}

// LoadFile loads an OBJ file from disk.
func (l *OBJLoader) LoadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	return l.Load(f, path)
}

// Load parses an OBJ from a reader. Positions become shared vertices;
// triangles and quads are kept as faces and larger polygons are fanned.
func (l *OBJLoader) Load(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	var vertexIDs []string
	var uvs []math3d.Vec2
	skipped := 0

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: invalid vertex (need x y z)", lineNum)
			}
			xyz, err := parseFloats(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid vertex: %w", lineNum, err)
			}
			vertexIDs = append(vertexIDs, mesh.AddVertices(math3d.V3(xyz[0], xyz[1], xyz[2]))...)

		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: invalid texture coord (need u v)", lineNum)
			}
			uv, err := parseFloats(fields[1:3])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid texture coord: %w", lineNum, err)
			}
			uvs = append(uvs, math3d.V2(uv[0]*l.TextureWidth, (1-uv[1])*l.TextureHeight))

		case "f":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: face needs at least 2 vertices", lineNum)
			}
			var corners []string
			cornerUV := make(map[string]math3d.Vec2)
			for _, field := range fields[1:] {
				posIdx, uvIdx, _, err := parseFaceVertex(field)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				posIdx = resolveIndex(posIdx, len(vertexIDs))
				uvIdx = resolveIndex(uvIdx, len(uvs))
				if posIdx < 0 || posIdx >= len(vertexIDs) {
					return nil, fmt.Errorf("line %d: position index %d out of range", lineNum, posIdx+1)
				}
				id := vertexIDs[posIdx]
				if _, dup := cornerUV[id]; dup {
					continue
				}
				corners = append(corners, id)
				cornerUV[id] = math3d.Vec2{}
				if uvIdx >= 0 && uvIdx < len(uvs) {
					cornerUV[id] = uvs[uvIdx]
				}
			}
			if len(corners) < 2 {
				skipped++
				continue
			}
			if len(corners) <= 4 {
				l.addFace(mesh, corners, cornerUV)
				continue
			}
			for i := 1; i < len(corners)-1; i++ {
				l.addFace(mesh, []string{corners[0], corners[i], corners[i+1]}, cornerUV)
			}

		case "l":
			ids := make([]string, 0, len(fields)-1)
			for _, field := range fields[1:] {
				posIdx, _, _, err := parseFaceVertex(field)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				posIdx = resolveIndex(posIdx, len(vertexIDs))
				if posIdx < 0 || posIdx >= len(vertexIDs) {
					return nil, fmt.Errorf("line %d: position index %d out of range", lineNum, posIdx+1)
				}
				ids = append(ids, vertexIDs[posIdx])
			}
			for i := 0; i+1 < len(ids); i++ {
				l.addFace(mesh, ids[i:i+2], nil)
			}

		case "o", "g":
			if len(fields) > 1 {
				mesh.Name = fields[1]
			}

		default:
			// mtllib, usemtl, s, vn and unknown directives carry nothing editable
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ: %w", err)
	}
	if skipped > 0 {
		log.Warnf("%s: skipped %d degenerate faces", name, skipped)
	}

	return mesh, nil
}

func (l *OBJLoader) addFace(mesh *Mesh, vertices []string, uv map[string]math3d.Vec2) {
	f := &Face{}
	f.Extend(FacePatch{Vertices: vertices, UV: uv, Texture: Ref(l.Texture)})
	mesh.AddFaces(f)
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseFaceVertex parses a face vertex in format: v, v/vt, v/vt/vn, or v//vn
// Returns 1-indexed values (0 means not specified)
func parseFaceVertex(s string) (pos, uv, normal int, err error) {
	parts := strings.Split(s, "/")

	pos, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid vertex index: %s", parts[0])
	}
	if len(parts) > 1 && parts[1] != "" {
		uv, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid texture index: %s", parts[1])
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		normal, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid normal index: %s", parts[2])
		}
	}
	return pos, uv, normal, nil
}

// resolveIndex converts OBJ 1-indexed (or negative) index to 0-indexed.
// Returns -1 if index was 0 (not specified).
func resolveIndex(idx, count int) int {
	if idx == 0 {
		return -1
	}
	if idx < 0 {
		return count + idx
	}
	return idx - 1
}

// LoadOBJ is a convenience function to load an OBJ file with default settings.
func LoadOBJ(path string) (*Mesh, error) {
	return NewOBJLoader().LoadFile(path)
}

// WriteOBJ writes the mesh in local space as Wavefront OBJ. Faces are
// emitted in sorted vertex order, lines as "l" records. Texture
// coordinates are normalised by the given UV space.
func WriteOBJ(w io.Writer, m *Mesh, texWidth, texHeight float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", m.Name)
	index := make(map[string]int, m.VertexCount())
	n := 0
	for id, p := range m.Vertices() {
		n++
		index[id] = n
		fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	vt := 0
	for _, f := range m.Faces() {
		sorted := m.SortedVertices(f)
		if f.IsLine() {
			if len(sorted) == 2 {
				fmt.Fprintf(bw, "l %d %d\n", index[sorted[0]], index[sorted[1]])
			}
			continue
		}
		for _, v := range sorted {
			uv := f.UV[v]
			fmt.Fprintf(bw, "vt %g %g\n", uv.X/texWidth, 1-uv.Y/texHeight)
		}
		bw.WriteString("f")
		for _, v := range sorted {
			vt++
			fmt.Fprintf(bw, " %d/%d", index[v], vt)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}
