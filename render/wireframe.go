package render

import "github.com/ansipixels/polyedit/math3d"

// Wireframe projects geometry outlines and vertex markers into a framebuffer.
type Wireframe struct {
	Camera *Camera
	FB     *Framebuffer
}

// NewWireframe creates a wireframe renderer and matches the camera aspect
// ratio to the framebuffer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	w := &Wireframe{Camera: camera, FB: fb}
	w.Resize()
	return w
}

// Resize updates the camera aspect ratio after the framebuffer changed size.
func (w *Wireframe) Resize() {
	if w.FB.Height > 0 {
		w.Camera.Aspect = float64(w.FB.Width) / float64(w.FB.Height)
	}
}

// Project maps a world position to pixel coordinates. ok is false when the
// point is behind the camera.
func (w *Wireframe) Project(p math3d.Vec3) (x, y int, ok bool) {
	return w.project(w.Camera.ViewProjectionMatrix(), p)
}

func (w *Wireframe) project(viewProj math3d.Mat4, p math3d.Vec3) (x, y int, ok bool) {
	clip := viewProj.MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	x = int((ndc.X + 1) * 0.5 * float64(w.FB.Width))
	y = int((1 - ndc.Y) * 0.5 * float64(w.FB.Height))
	return x, y, true
}

// Draw renders g under transform: outline segments in c, segments of
// selected faces and selected vertices in highlight.
func (w *Wireframe) Draw(g *Geometry, transform math3d.Mat4, c, highlight Color) {
	viewProj := w.Camera.ViewProjectionMatrix()
	for i := 0; i+1 < len(g.Outline); i += 2 {
		col := c
		if g.OutlineHighlight[i/2] {
			col = highlight
		}
		w.drawLine3D(viewProj, transform.MulVec3(g.Outline[i]), transform.MulVec3(g.Outline[i+1]), col)
	}
	for i, p := range g.Points {
		x, y, ok := w.project(viewProj, transform.MulVec3(p))
		if !ok {
			continue
		}
		if g.Selected[i] {
			w.FB.DrawMarker(x, y, 1, highlight)
		} else {
			w.FB.SetPixel(x, y, c)
		}
	}
}

// drawLine3D draws a segment, skipping it when an end is behind the camera.
func (w *Wireframe) drawLine3D(viewProj math3d.Mat4, a, b math3d.Vec3, c Color) {
	x0, y0, okA := w.project(viewProj, a)
	x1, y1, okB := w.project(viewProj, b)
	if !okA || !okB {
		return
	}
	w.FB.DrawLine(x0, y0, x1, y1, c)
}
