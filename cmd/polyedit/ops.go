package main

import (
	"fmt"
	"slices"

	"fortio.org/log"
	"github.com/ansipixels/polyedit/edit"
	"github.com/ansipixels/polyedit/models"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func selectCmd() *cobra.Command {
	var vertices []string
	cmd := &cobra.Command{
		Use:   "select <project> [mesh...]",
		Short: "Set the mesh selection and the vertex selection of the target mesh",
		Long: `Set the mesh selection and the vertex selection of the target mesh.

Meshes are given by id or name, in selection order. --vertices takes vertex
ids, "all" or "none" and applies to --mesh or the first listed mesh.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := models.LoadProject(args[0])
			if err != nil {
				return err
			}
			if len(args) > 1 {
				ids := make([]string, 0, len(args)-1)
				for _, ref := range args[1:] {
					m, err := p.Lookup(ref)
					if err != nil {
						return err
					}
					ids = append(ids, m.ID)
				}
				p.Select(ids...)
			}
			if vertices != nil {
				m, err := target(p)
				if err != nil {
					return err
				}
				if err := selectVertices(p, m, vertices); err != nil {
					return err
				}
				log.Infof("%s: %d vertices selected", m.Name, len(p.Selection.Vertices(m.ID)))
			}
			return save(p, args[0])
		},
	}
	cmd.Flags().StringSliceVar(&vertices, "vertices", nil, "Vertex ids, all or none")
	return cmd
}

func selectVertices(p *models.Project, m *models.Mesh, ids []string) error {
	switch {
	case slices.Equal(ids, []string{"all"}):
		p.Selection.Set(m.ID, m.VertexIDs())
	case slices.Equal(ids, []string{"none"}):
		p.Selection.Clear(m.ID)
	default:
		for _, id := range ids {
			if !m.HasVertex(id) {
				return fmt.Errorf("mesh %s has no vertex %q", m.Name, id)
			}
		}
		p.Selection.Set(m.ID, ids)
	}
	return nil
}

// operatorCmd builds a command that applies op to the target mesh of a project.
func operatorCmd(use, short string, op func(ctx *edit.Context, p *models.Project, m *models.Mesh) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := models.LoadProject(args[0])
			if err != nil {
				return err
			}
			m, err := target(p)
			if err != nil {
				return err
			}
			if !p.Selection.Active(m.ID) {
				return fmt.Errorf("%s: %w", m.Name, models.ErrNoSelection)
			}
			if err := op(newContext(p), p, m); err != nil {
				return err
			}
			return save(p, args[0])
		},
	}
}

func createFaceCmd() *cobra.Command {
	cmd := operatorCmd("create-face", "Create a face from the 2 to 4 selected vertices",
		func(ctx *edit.Context, _ *models.Project, m *models.Mesh) error {
			id, ok := edit.CreateFace(ctx, m)
			if !ok {
				return fmt.Errorf("create-face needs 2 to 4 selected vertices, have %d", len(ctx.Selection.Vertices(m.ID)))
			}
			log.Infof("Created face %s on %s", id, m.Name)
			return nil
		})
	cmd.Flags().Float64SliceVar(&viewDir, "view", []float64{0, 0, -1}, "Viewing direction x,y,z used to orient faces without neighbours")
	return cmd
}

func invertCmd() *cobra.Command {
	return operatorCmd("invert", "Flip the winding of the selected faces",
		func(ctx *edit.Context, _ *models.Project, m *models.Mesh) error {
			log.Infof("Inverted %d faces on %s", edit.InvertFaces(ctx, m), m.Name)
			return nil
		})
}

func extrudeCmd() *cobra.Command {
	cmd := operatorCmd("extrude", "Extrude the selected vertices along the face normals",
		func(ctx *edit.Context, _ *models.Project, m *models.Mesh) error {
			created := edit.Extrude(ctx, m)
			log.Infof("Extruded %d vertices on %s", len(created), m.Name)
			return nil
		})
	cmd.Flags().Float64Var(&depth, "depth", edit.DefaultOptions().Depth, "Extrusion distance")
	return cmd
}

func loopCutCmd() *cobra.Command {
	return operatorCmd("loop-cut", "Cut the face ring crossing the selected edge",
		func(ctx *edit.Context, _ *models.Project, m *models.Mesh) error {
			created := edit.LoopCut(ctx, m)
			if created == nil {
				return fmt.Errorf("loop-cut: no face of %s has two selected vertices", m.Name)
			}
			log.Infof("Loop cut added %d vertices to %s", len(created), m.Name)
			return nil
		})
}

func splitCmd() *cobra.Command {
	return operatorCmd("split", "Move the faces touching the selection into a new mesh",
		func(ctx *edit.Context, p *models.Project, m *models.Mesh) error {
			part := edit.SplitMesh(ctx, p, m)
			log.Infof("Split %s into %s (%d faces)", m.Name, part.Name, part.FaceCount())
			return nil
		})
}

func mergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <project> [other-project...]",
		Short: "Merge the selected meshes into the first selected one",
		Long: `Merge the selected meshes into the first selected one.

Meshes of additional project files are appended to the project and to the
mesh selection before merging.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			projects := make([]*models.Project, len(args))
			var g errgroup.Group
			for i, path := range args {
				g.Go(func() error {
					p, err := models.LoadProject(path)
					if err != nil {
						return err
					}
					projects[i] = p
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			p := projects[0]
			for _, other := range projects[1:] {
				for _, m := range other.Meshes {
					p.Add(m)
					p.Selected = append(p.Selected, m.ID)
					p.Selection.Set(m.ID, other.Selection.Vertices(m.ID))
				}
			}
			dest := edit.MergeMeshes(newContext(p), p)
			if dest == nil {
				return fmt.Errorf("merge needs at least 2 selected meshes, have %d", len(p.SelectedMeshes()))
			}
			log.Infof("Merged into %s: %d vertices, %d faces", dest.Name, dest.VertexCount(), dest.FaceCount())
			return save(p, args[0])
		},
	}
}
