// polyedit - batch mesh editing on project files.
//
// A project file (.yaml, .json or .msgpack) holds meshes, the mesh selection
// and per-mesh vertex selections. Every editing command loads the project,
// applies one operator to the target mesh and writes the project back.
//
// Examples:
//
//	polyedit cube scene.yaml
//	polyedit select scene.yaml cube --vertices all
//	polyedit extrude scene.yaml --depth 0.5
//	polyedit export scene.yaml scene.glb
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"github.com/ansipixels/polyedit/edit"
	"github.com/ansipixels/polyedit/math3d"
	"github.com/ansipixels/polyedit/models"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	outputPath string
	formatName string
	meshRef    string
	depth      = edit.DefaultOptions().Depth
	viewDir    []float64
)

func main() {
	root := &cobra.Command{
		Use:   "polyedit",
		Short: "Polygon mesh editor for project files",
		Long: `polyedit - polygon mesh editor

Edits meshes stored in project files (.yaml, .json, .msgpack).
Operators act on the vertex selection of the target mesh: --mesh, else the
first selected mesh, else the first mesh of the project.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Write the project here instead of in place")
	root.PersistentFlags().StringVar(&formatName, "format", "", "Project encoding: json, yaml or msgpack (default from extension)")
	root.PersistentFlags().StringVarP(&meshRef, "mesh", "m", "", "Target mesh id or name")

	root.AddCommand(
		infoCmd(),
		cubeCmd(),
		importCmd(),
		exportCmd(),
		selectCmd(),
		createFaceCmd(),
		invertCmd(),
		extrudeCmd(),
		loopCutCmd(),
		splitCmd(),
		mergeCmd(),
	)

	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

// loadOrCreate loads path, or returns an empty project when it does not exist.
func loadOrCreate(path string) (*models.Project, error) {
	p, err := models.LoadProject(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("Creating new project %s", path)
		return models.NewProject(), nil
	}
	return p, err
}

// save writes p to --output or back to path.
func save(p *models.Project, path string) error {
	if outputPath != "" {
		path = outputPath
	}
	var format models.Format
	if formatName != "" {
		var err error
		if format, err = models.ParseFormat(formatName); err != nil {
			return err
		}
	}
	if err := models.SaveProject(path, p, format); err != nil {
		return err
	}
	log.Infof("Wrote %s", path)
	return nil
}

// target resolves the mesh an operator works on.
func target(p *models.Project) (*models.Mesh, error) {
	if meshRef != "" {
		return p.Lookup(meshRef)
	}
	if sel := p.SelectedMeshes(); len(sel) > 0 {
		return sel[0], nil
	}
	if len(p.Meshes) > 0 {
		return p.Meshes[0], nil
	}
	return nil, fmt.Errorf("%w: project is empty", models.ErrMeshNotFound)
}

// newContext builds the operator context from the command line flags.
func newContext(p *models.Project) *edit.Context {
	ctx := edit.NewContext(p)
	ctx.Depth = depth
	if len(viewDir) == 3 {
		ctx.ViewDirection = math3d.V3(viewDir[0], viewDir[1], viewDir[2])
	}
	return ctx
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <project>",
		Short: "Display project and mesh statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.LoadProject(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:       %s\n", filepath.Base(args[0]))
			fmt.Fprintf(out, "Meshes:     %d\n", len(p.Meshes))
			for _, t := range p.Textures {
				fmt.Fprintf(out, "Texture:    %s (%s, %dx%d)\n", t.Name, t.ID, t.Width, t.Height)
			}
			for _, m := range p.Meshes {
				lo, hi := m.Bounds()
				marker := " "
				if len(p.Selected) > 0 && p.Selected[0] == m.ID {
					marker = "*"
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "%s %s (%s)\n", marker, m.Name, m.ID)
				fmt.Fprintf(out, "  Vertices:   %d (%d selected)\n", m.VertexCount(), len(p.Selection.Vertices(m.ID)))
				fmt.Fprintf(out, "  Faces:      %d (%d polygons)\n", m.FaceCount(), m.PolygonCount())
				fmt.Fprintf(out, "  Origin:     (%.3f, %.3f, %.3f)\n", m.Origin.X, m.Origin.Y, m.Origin.Z)
				fmt.Fprintf(out, "  Rotation:   (%.1f, %.1f, %.1f)\n", m.Rotation.X, m.Rotation.Y, m.Rotation.Z)
				fmt.Fprintf(out, "  Bounds Min: (%.3f, %.3f, %.3f)\n", lo.X, lo.Y, lo.Z)
				fmt.Fprintf(out, "  Bounds Max: (%.3f, %.3f, %.3f)\n", hi.X, hi.Y, hi.Z)
			}
			return nil
		},
	}
}

func cubeCmd() *cobra.Command {
	var size, height float64
	var name string
	cmd := &cobra.Command{
		Use:   "cube <project>",
		Short: "Add a box mesh to the project (created if missing)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := loadOrCreate(args[0])
			if err != nil {
				return err
			}
			m := models.NewCube(size, height)
			if name != "" {
				m.Name = name
			}
			p.Add(m)
			p.Select(m.ID)
			log.Infof("Added %s (%s)", m.Name, m.ID)
			return save(p, args[0])
		},
	}
	cmd.Flags().Float64Var(&size, "size", 2, "Width and depth")
	cmd.Flags().Float64Var(&height, "height", 2, "Height")
	cmd.Flags().StringVar(&name, "name", "", "Mesh name (default cube)")
	return cmd
}

func importCmd() *cobra.Command {
	var texture string
	cmd := &cobra.Command{
		Use:   "import <project> <model.obj|model.stl|model.glb>",
		Short: "Import a model file as a new mesh",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := loadOrCreate(args[0])
			if err != nil {
				return err
			}
			if texture != "" && !p.HasTexture(texture) {
				return fmt.Errorf("unknown texture %q", texture)
			}
			w, h := p.TextureSize(texture)
			m, err := importModel(args[1], texture, w, h)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[1], err)
			}
			p.Add(m)
			p.Select(m.ID)
			log.Infof("Imported %s: %d vertices, %d faces", m.Name, m.VertexCount(), m.FaceCount())
			return save(p, args[0])
		},
	}
	cmd.Flags().StringVar(&texture, "texture", "", "Texture id to assign to imported faces")
	return cmd
}

func importModel(path, texture string, w, h float64) (*models.Mesh, error) {
	var m *models.Mesh
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		l := models.NewOBJLoader()
		l.TextureWidth, l.TextureHeight, l.Texture = w, h, texture
		m, err = l.LoadFile(path)
	case ".stl":
		m, err = models.NewSTLLoader().LoadFile(path)
	case ".glb", ".gltf":
		l := models.NewGLTFLoader()
		l.TextureWidth, l.TextureHeight = w, h
		m, err = l.Load(path)
	default:
		return nil, fmt.Errorf("%w: %s (use .obj, .stl or .glb)", models.ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, err
	}
	m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if texture != "" {
		m.ApplyTexture(texture, nil)
	}
	return m, nil
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <project> <out.glb|out.obj|out.stl>",
		Short: "Export meshes to a model file",
		Long: `Export meshes to a model file.

GLB receives every visible mesh (or --mesh); OBJ and STL receive the target mesh.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := models.LoadProject(args[0])
			if err != nil {
				return err
			}
			return exportModel(p, args[1])
		},
	}
}

func exportModel(p *models.Project, path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb":
		var meshes []*models.Mesh
		if meshRef != "" {
			m, err := p.Lookup(meshRef)
			if err != nil {
				return err
			}
			meshes = append(meshes, m)
		} else {
			for _, m := range p.Meshes {
				if m.Visible {
					meshes = append(meshes, m)
				}
			}
		}
		e := models.NewGLTFExporter()
		e.TextureSize = p.TextureSize
		if err := e.Save(path, meshes...); err != nil {
			return err
		}
		log.Infof("Exported %d meshes to %s", len(meshes), path)
		return nil
	case ".obj", ".stl":
		m, err := target(p)
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if ext == ".obj" {
			w, h := p.TextureSize("")
			if tex, ok := p.DefaultTexture(); ok {
				w, h = p.TextureSize(tex)
			}
			err = models.WriteOBJ(f, m, w, h)
		} else {
			err = models.WriteSTL(f, m)
		}
		if err != nil {
			f.Close()
			return err
		}
		log.Infof("Exported %s to %s", m.Name, path)
		return f.Close()
	default:
		return fmt.Errorf("%w: %s (use .glb, .obj or .stl)", models.ErrUnknownFormat, ext)
	}
}
