// polyedit - Terminal Mesh Editor
// Edit a polyedit project file in your terminal with a live wireframe view.
//
// Controls:
//
//	Mouse drag  - Rotate view (yaw/pitch)
//	Scroll      - Zoom in/out
//	Arrows      - Pitch and yaw
//	Tab         - Cycle the active mesh
//	A           - Select all / no vertices of the active mesh
//	E           - Extrude selection
//	L           - Loop cut across the selected edge
//	F           - Create face from selection
//	I           - Invert selected faces
//	S           - Split selection into a new mesh
//	M           - Merge the active mesh with the next one
//	U           - Undo the last single mesh edit
//	W           - Write the project back to disk
//	R           - Reset view
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"fortio.org/cli"
	"fortio.org/log"
	"fortio.org/terminal/ansipixels"
	"fortio.org/terminal/ansipixels/tcolor"
	"github.com/ansipixels/polyedit/edit"
	"github.com/ansipixels/polyedit/math3d"
	"github.com/ansipixels/polyedit/models"
	"github.com/ansipixels/polyedit/render"
	"github.com/charmbracelet/harmonica"
	"github.com/fsnotify/fsnotify"
)

var (
	targetFPS float64
	watch     bool
	depth     float64
)

func main() {
	flag.Float64Var(&targetFPS, "fps", 30, "Target FPS")
	flag.BoolVar(&watch, "watch", false, "Reload the project when the file changes on disk")
	flag.Float64Var(&depth, "depth", edit.DefaultOptions().Depth, "Extrusion distance")
	cli.ArgsHelp = "<project.yaml|project.json|project.msgpack>"
	cli.MinArgs = 1
	cli.MaxArgs = 1
	cli.Main()
	os.Exit(run(flag.Arg(0)))
}

// RotationAxis tracks position and velocity for one rotation axis with spring decay.
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewRotationAxis creates an axis with harmonica spring for smooth velocity decay.
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0.
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds the view rotation.
type RotationState struct {
	Pitch, Yaw RotationAxis
	fps        int
}

func NewRotationState(fps int) *RotationState {
	r := &RotationState{fps: fps}
	r.Reset()
	return r
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Pitch.Position = 0.4
	r.Yaw.Position = -0.6
}

// Matrix returns the view rotation.
func (r *RotationState) Matrix() math3d.Mat4 {
	return math3d.RotateX(r.Pitch.Position).Mul(math3d.RotateY(r.Yaw.Position))
}

// Editor is the project being edited plus the viewer side state.
type Editor struct {
	path    string
	project *models.Project
	active  int // index into project.Meshes
	undo    []undoEntry
	status  string

	// normalize centers and scales the whole project into the view.
	normalize  math3d.Mat4
	geometries map[string]*render.Geometry
}

type undoEntry struct {
	meshID   string
	snapshot []byte
}

// Load (re)reads the project file.
func (e *Editor) Load() error {
	p, err := models.LoadProject(e.path)
	if err != nil {
		return err
	}
	e.project = p
	e.active = 0
	if sel := p.SelectedMeshes(); len(sel) > 0 {
		e.active = max(0, slices.Index(p.Meshes, sel[0]))
	}
	e.undo = nil
	e.Rebuild()
	return nil
}

// Active returns the mesh operators apply to, or nil for an empty project.
func (e *Editor) Active() *models.Mesh {
	if len(e.project.Meshes) == 0 {
		return nil
	}
	e.active = ((e.active % len(e.project.Meshes)) + len(e.project.Meshes)) % len(e.project.Meshes)
	return e.project.Meshes[e.active]
}

// Rebuild refreshes display buffers and the view normalization.
func (e *Editor) Rebuild() {
	e.geometries = make(map[string]*render.Geometry, len(e.project.Meshes))
	var lo, hi math3d.Vec3
	first := true
	for _, m := range e.project.Meshes {
		e.geometries[m.ID] = render.BuildGeometry(m, e.project.Selection.Vertices(m.ID), e.project)
		for _, p := range m.Vertices() {
			w := m.LocalToWorld(p)
			if first {
				lo, hi, first = w, w, false
				continue
			}
			lo, hi = lo.Min(w), hi.Max(w)
		}
	}
	size := hi.Sub(lo)
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	scale := 1.0
	if maxDim > 0 {
		scale = 2.0 / maxDim
	}
	center := lo.Midpoint(hi)
	e.normalize = math3d.Scale(math3d.V3(scale, scale, scale)).Mul(math3d.Translate(center.Negate()))
}

// Apply runs one editing key against the active mesh.
func (e *Editor) Apply(key byte, view math3d.Mat4) {
	if !strings.ContainsRune("aelfismAELFISM", rune(key)) {
		return
	}
	m := e.Active()
	if m == nil {
		e.status = "project is empty"
		return
	}
	ctx := edit.NewContext(e.project)
	ctx.Depth = depth
	// The camera looks down -Z in view space; bring that into model space.
	ctx.ViewDirection = view.Mul(e.normalize).Inverse().MulVec3Dir(math3d.V3(0, 0, -1)).Normalize()

	snapshot, err := m.Snapshot()
	if err != nil {
		log.Errf("snapshot %s: %v", m.Name, err)
	}
	changed := true
	switch key {
	case 'a', 'A':
		if e.project.Selection.Active(m.ID) {
			e.project.Selection.Clear(m.ID)
		} else {
			e.project.Selection.Set(m.ID, m.VertexIDs())
		}
		e.status = fmt.Sprintf("%d vertices selected", len(e.project.Selection.Vertices(m.ID)))
		changed = false
	case 'e', 'E':
		e.status = fmt.Sprintf("extruded %d vertices", len(edit.Extrude(ctx, m)))
	case 'l', 'L':
		created := edit.LoopCut(ctx, m)
		changed = created != nil
		e.status = fmt.Sprintf("loop cut added %d vertices", len(created))
	case 'f', 'F':
		id, ok := edit.CreateFace(ctx, m)
		changed = ok
		e.status = "create face needs 2 to 4 selected vertices"
		if ok {
			e.status = "created face " + id
		}
	case 'i', 'I':
		n := edit.InvertFaces(ctx, m)
		changed = n > 0
		e.status = fmt.Sprintf("inverted %d faces", n)
	case 's', 'S':
		if part := edit.SplitMesh(ctx, e.project, m); part != nil {
			e.status = "split into " + part.Name
			e.undo = nil
		} else {
			e.status = "nothing selected to split"
		}
		changed = false
	case 'm', 'M':
		changed = false
		if len(e.project.Meshes) < 2 {
			e.status = "merge needs a second mesh"
			break
		}
		next := e.project.Meshes[(e.active+1)%len(e.project.Meshes)]
		e.project.Select(m.ID, next.ID)
		if dest := edit.MergeMeshes(ctx, e.project); dest != nil {
			e.status = "merged into " + dest.Name
			e.undo = nil
		} else {
			e.status = "merge needs a second mesh"
		}
	}
	if changed && snapshot != nil {
		e.undo = append(e.undo, undoEntry{meshID: m.ID, snapshot: snapshot})
	}
	e.Rebuild()
}

// Undo restores the mesh changed by the last recorded edit.
func (e *Editor) Undo() {
	if len(e.undo) == 0 {
		e.status = "nothing to undo"
		return
	}
	last := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	m := e.project.Mesh(last.meshID)
	if m == nil {
		e.status = "mesh no longer exists"
		return
	}
	if err := m.Restore(last.snapshot); err != nil {
		e.status = fmt.Sprintf("undo failed: %v", err)
		return
	}
	e.project.Selection.Retain(m)
	e.status = "undone"
	e.Rebuild()
}

// Draw renders every visible mesh, the active one in its marker color.
func (e *Editor) Draw(w *render.Wireframe, view math3d.Mat4) {
	highlight := render.RGB(255, 255, 0)
	dim := render.RGB(90, 90, 90)
	active := e.Active()
	for _, m := range e.project.Meshes {
		if !m.Visible {
			continue
		}
		c := dim
		if m == active {
			c = render.MarkerColor(m.Color)
		}
		transform := view.Mul(e.normalize).Mul(m.WorldMatrix())
		w.Draw(e.geometries[m.ID], transform, c, highlight)
	}
}

// DrawHUD writes the status lines over the image.
func (e *Editor) DrawHUD(ap *ansipixels.AnsiPixels) {
	ap.WriteCentered(0, "%s", filepath.Base(e.path))
	if m := e.Active(); m != nil {
		ap.WriteAt(0, 0, tcolor.Green.Foreground()+"%s"+tcolor.Reset, m.Name)
		ap.WriteRight(0, tcolor.Cyan.Foreground()+"%d verts %d faces %d sel"+tcolor.Reset,
			m.VertexCount(), m.FaceCount(), len(e.project.Selection.Vertices(m.ID)))
	}
	ap.WriteAt(0, ap.H-1, "%s", e.status)
	ap.WriteRight(ap.H-1, "%se l f i s m u w%s", tcolor.Yellow.Foreground(), tcolor.Reset)
}

// watchFile reports writes to path on the returned channel.
func watchFile(path string) (*fsnotify.Watcher, <-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, nil, err
	}
	changed := make(chan struct{}, 1)
	abs, _ := filepath.Abs(path)
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				evAbs, _ := filepath.Abs(ev.Name)
				if evAbs != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("watch %s: %v", path, err)
			}
		}
	}()
	return watcher, changed, nil
}

//nolint:gocognit,gocyclo,funlen // the main loop is one big switch.
func run(path string) int {
	editor := &Editor{path: path, status: "? toggles this help"}
	if err := editor.Load(); err != nil {
		return log.FErrf("load project: %v", err)
	}

	var reload <-chan struct{}
	if watch {
		watcher, changed, err := watchFile(path)
		if err != nil {
			return log.FErrf("watch %s: %v", path, err)
		}
		defer watcher.Close()
		reload = changed
	}

	ap := ansipixels.NewAnsiPixels(targetFPS)
	if err := ap.Open(); err != nil {
		return log.FErrf("open ansipixels: %v", err)
	}
	defer func() {
		ap.ShowCursor()
		ap.MouseTrackingOff()
		ap.Out.Flush()
		ap.Restore()
	}()
	ap.SyncBackgroundColor()
	ap.MouseTrackingOn()
	ap.HideCursor()

	// Using 2x height for half-block characters
	fb := render.NewFramebuffer(ap.W, ap.H*2)
	fb.BG = render.RGB(ap.Background.R, ap.Background.G, ap.Background.B)
	camera := render.NewCamera()
	wire := render.NewWireframe(camera, fb)

	rotation := NewRotationState(int(math.Round(targetFPS)))
	showHUD := true
	var ignoreReloadUntil time.Time
	lastMouseX, lastMouseY := 0, 0

	ap.OnMouse = func() {
		switch {
		case ap.MouseWheelUp():
			camera.Position.Z = max(1, camera.Position.Z-0.5)
		case ap.MouseWheelDown():
			camera.Position.Z = min(20, camera.Position.Z+0.5)
		case ap.LeftDrag():
			dx := ap.Mx - lastMouseX
			dy := ap.My - lastMouseY
			rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03)
		}
		lastMouseX, lastMouseY = ap.Mx, ap.My
	}
	ap.OnResize = func() error {
		fb.Resize(ap.W, ap.H*2)
		wire.Resize()
		return nil
	}

	err := ap.FPSTicks(func() bool {
		select {
		case <-reload:
			if time.Now().Before(ignoreReloadUntil) {
				break
			}
			if err := editor.Load(); err != nil {
				editor.status = fmt.Sprintf("reload failed: %v", err)
			} else {
				editor.status = "reloaded"
			}
		default:
		}

		view := rotation.Matrix()
		data := ap.Data
		for i := 0; i < len(data); i++ {
			b := data[i]
			// Arrow keys arrive as ESC [ A..D.
			if b == 27 && i+2 < len(data) && data[i+1] == '[' {
				switch data[i+2] {
				case 'A':
					rotation.ApplyImpulse(-0.05, 0)
				case 'B':
					rotation.ApplyImpulse(0.05, 0)
				case 'C':
					rotation.ApplyImpulse(0, 0.05)
				case 'D':
					rotation.ApplyImpulse(0, -0.05)
				}
				i += 2
				continue
			}
			switch b {
			case '\t':
				editor.active++
				if m := editor.Active(); m != nil {
					editor.project.Select(m.ID)
					editor.status = "active mesh " + m.Name
				}
			case 'u', 'U':
				editor.Undo()
			case 'w', 'W':
				if err := models.SaveProject(path, editor.project, ""); err != nil {
					editor.status = fmt.Sprintf("write failed: %v", err)
				} else {
					editor.status = "wrote " + filepath.Base(path)
					ignoreReloadUntil = time.Now().Add(time.Second)
				}
			case 'r', 'R':
				rotation.Reset()
				camera.Position.Z = 5
			case '?':
				showHUD = !showHUD
			case 27, 3, 4: // Escape, Ctrl-C, Ctrl-D
				return false
			default:
				editor.Apply(b, view)
			}
		}

		rotation.Update()
		fb.Clear()
		editor.Draw(wire, rotation.Matrix())

		ap.ClearScreen()
		if err := ap.ShowScaledImage(fb.ToImage()); err != nil {
			log.Errf("show image: %v", err)
			return false
		}
		if showHUD {
			editor.DrawHUD(ap)
		}
		return true
	})
	if err != nil {
		return log.FErrf("main loop: %v", err)
	}
	return 0
}
