// Package edit implements the topology operators of the mesh editor:
// face creation, inversion, extrusion, loop cut, merge and split.
//
// Operators never fail. When there is nothing to do they leave the mesh
// untouched and return a zero result. Every structural change goes through
// models.Face.Extend or the Mesh store, so face UV keys always match the
// face vertex ids afterwards.
package edit

import (
	"github.com/ansipixels/polyedit/math3d"
	"github.com/ansipixels/polyedit/models"
)

// Textures is the read-only texture registry consulted when faces are created.
type Textures interface {
	DefaultTexture() (string, bool)
}

// Options holds numeric operator parameters.
type Options struct {
	Depth float64 // extrusion distance along the averaged normal
}

// DefaultOptions returns the editor defaults.
func DefaultOptions() Options {
	return Options{Depth: 1}
}

// Context carries the collaborators an operator reads and writes: the vertex
// selection store, the current viewing direction and the texture registry.
type Context struct {
	Selection     *models.Selection
	ViewDirection math3d.Vec3
	Textures      Textures
	Options
}

// NewContext creates a context bound to the project's selection and textures,
// looking down the negative Z axis.
func NewContext(p *models.Project) *Context {
	return &Context{
		Selection:     p.Selection,
		ViewDirection: math3d.V3(0, 0, -1),
		Textures:      p,
		Options:       DefaultOptions(),
	}
}

func (c *Context) selected(m *models.Mesh) []string {
	return c.Selection.Vertices(m.ID)
}

func (c *Context) defaultTexture() (string, bool) {
	if c.Textures == nil {
		return "", false
	}
	return c.Textures.DefaultTexture()
}
