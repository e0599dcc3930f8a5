package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/ansipixels/polyedit/math3d"
)

// STLLoader loads STL (stereolithography) files in both ASCII and binary
// formats. Every facet becomes a triangle face.
type STLLoader struct {
	NoDedupe       bool    // If true, each triangle gets its own vertices
	MergeTolerance float64 // Tolerance for vertex welding (0 = exact match)
}

// quantizedKey creates a hashable key from a position by quantizing to a grid.
type quantizedKey struct {
	x, y, z int64
}

func quantizePosition(pos math3d.Vec3, tolerance float64) quantizedKey {
	if tolerance <= 0 {
		tolerance = 1e-12
	}
	scale := 1.0 / tolerance
	return quantizedKey{
		x: int64(math.Round(pos.X * scale)),
		y: int64(math.Round(pos.Y * scale)),
		z: int64(math.Round(pos.Z * scale)),
	}
}

// NewSTLLoader creates a new STL loader with default settings.
func NewSTLLoader() *STLLoader {
	return &STLLoader{}
}

// LoadFile loads an STL file from disk.
func (l *STLLoader) LoadFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL file: %w", err)
	}
	return l.LoadBytes(data, path)
}

// Load parses STL from a reader.
func (l *STLLoader) Load(r io.Reader, name string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL data: %w", err)
	}
	return l.LoadBytes(data, name)
}

// LoadBytes parses STL from a byte slice.
func (l *STLLoader) LoadBytes(data []byte, name string) (*Mesh, error) {
	b := &stlBuilder{loader: l, mesh: NewMesh(name), welded: make(map[quantizedKey]string)}
	var err error
	if isBinarySTL(data) {
		err = b.binary(data)
	} else {
		err = b.ascii(data)
	}
	if err != nil {
		return nil, err
	}
	return b.mesh, nil
}

type stlBuilder struct {
	loader *STLLoader
	mesh   *Mesh
	welded map[quantizedKey]string
}

func (b *stlBuilder) vertex(pos math3d.Vec3) string {
	if b.loader.NoDedupe {
		return b.mesh.AddVertices(pos)[0]
	}
	key := quantizePosition(pos, b.loader.MergeTolerance)
	if id, ok := b.welded[key]; ok {
		return id
	}
	id := b.mesh.AddVertices(pos)[0]
	b.welded[key] = id
	return id
}

// facet adds a triangle unless welding collapsed it.
func (b *stlBuilder) facet(ids []string) {
	if ids[0] == ids[1] || ids[1] == ids[2] || ids[0] == ids[2] {
		return
	}
	b.mesh.AddFaces(NewFace(ids...))
}

// isBinarySTL detects if the data is binary STL format.
// Binary STL starts with 80-byte header, then 4-byte triangle count.
// ASCII STL starts with "solid".
func isBinarySTL(data []byte) bool {
	if len(data) < 84 {
		return false
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("solid")) {
		// "solid" may also start a binary header; trust the size check
		triCount := binary.LittleEndian.Uint32(data[80:84])
		return uint64(len(data)) == 84+uint64(triCount)*50
	}
	return true
}

func (b *stlBuilder) binary(data []byte) error {
	triCount := binary.LittleEndian.Uint32(data[80:84])
	expectedSize := 84 + uint64(triCount)*50
	if uint64(len(data)) < expectedSize {
		return fmt.Errorf("binary STL truncated: expected %d bytes, got %d", expectedSize, len(data))
	}
	offset := 84
	for range triCount {
		offset += 12 // facet normal, recomputed from the winding
		ids := make([]string, 3)
		for v := range 3 {
			ids[v] = b.vertex(math3d.V3(
				float64(readFloat32(data[offset:])),
				float64(readFloat32(data[offset+4:])),
				float64(readFloat32(data[offset+8:])),
			))
			offset += 12
		}
		offset += 2
		b.facet(ids)
	}
	return nil
}

func (b *stlBuilder) ascii(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	var ids []string
	inLoop := false

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 {
				b.mesh.Name = fields[1]
			}
		case "outer":
			inLoop = true
			ids = ids[:0]
		case "vertex":
			if !inLoop {
				return fmt.Errorf("line %d: vertex outside facet/loop", lineNum)
			}
			if len(fields) < 4 {
				return fmt.Errorf("line %d: vertex needs x y z", lineNum)
			}
			xyz, err := parseFloats(fields[1:4])
			if err != nil {
				return fmt.Errorf("line %d: invalid vertex: %w", lineNum, err)
			}
			ids = append(ids, b.vertex(math3d.V3(xyz[0], xyz[1], xyz[2])))
		case "endloop":
			inLoop = false
			if len(ids) >= 3 {
				b.facet(ids[:3])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return nil
}

// LoadSTL is a convenience function to load an STL file with default settings.
func LoadSTL(path string) (*Mesh, error) {
	return NewSTLLoader().LoadFile(path)
}

// WriteSTL writes the polygons of m as binary STL in local space.
// Quads are split along their sorted order; lines are skipped.
func WriteSTL(w io.Writer, m *Mesh) error {
	type tri struct {
		n       math3d.Vec3
		a, b, c math3d.Vec3
	}
	var tris []tri
	for _, f := range m.Faces() {
		if f.IsLine() {
			continue
		}
		sorted := m.SortedVertices(f)
		n := m.Normal(f, true)
		for i := 1; i+1 < len(sorted); i++ {
			tris = append(tris, tri{n, m.Position(sorted[0]), m.Position(sorted[i]), m.Position(sorted[i+1])})
		}
	}

	bw := bufio.NewWriter(w)
	header := make([]byte, 80)
	copy(header, "polyedit "+m.Name)
	bw.Write(header)
	binary.Write(bw, binary.LittleEndian, uint32(len(tris)))
	for _, t := range tris {
		for _, v := range []math3d.Vec3{t.n, t.a, t.b, t.c} {
			binary.Write(bw, binary.LittleEndian, [3]float32{float32(v.X), float32(v.Y), float32(v.Z)})
		}
		bw.Write([]byte{0, 0})
	}
	return bw.Flush()
}
