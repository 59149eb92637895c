package scene

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"lod-engine/internal/primitives"
	"lod-engine/internal/scenegraph"
)

const (
	gridExtent     = 80
	gridMinorStep  = 1
	gridMajorStep  = 10
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
)

// Scene holds a free-flying raylib camera and draws the visible nodes of a scene graph.
// Update runs camera logic; Draw renders between BeginMode3D and EndMode3D.
type Scene struct {
	Camera      rl.Camera3D
	GridVisible bool

	graph     *scenegraph.Graph
	renderer  *renderer
	view      *scenegraph.Camera
	cursorOff bool
}

// New returns a scene drawing g with materials from reg. The camera starts at
// (0,8,40) looking at the origin with a 45° vertical field of view.
func New(g *scenegraph.Graph, reg *primitives.Registry) *Scene {
	s := &Scene{
		graph:       g,
		renderer:    newRenderer(reg),
		view:        scenegraph.NewCamera(mgl32.Vec3{0, 8, 40}, mgl32.Vec3{}),
		GridVisible: true,
	}
	s.Camera.Position = rl.NewVector3(0, 8, 40)
	s.Camera.Target = rl.NewVector3(0, 0, 0)
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = 45
	s.Camera.Projection = rl.CameraPerspective
	return s
}

// View returns the camera the LOD system evaluates against. It mirrors the
// raylib camera after every Update.
func (s *Scene) View() *scenegraph.Camera {
	return s.view
}

// SetGridVisible sets whether the editor grid is drawn.
func (s *Scene) SetGridVisible(visible bool) {
	s.GridVisible = visible
}

// Update runs once per frame. Uses raylib UpdateCamera with CameraFree so the user can
// move the camera with mouse and keyboard; the cursor is captured on the first call.
func (s *Scene) Update() {
	if !s.cursorOff {
		rl.DisableCursor()
		s.cursorOff = true
	}
	rl.UpdateCamera(&s.Camera, rl.CameraFree)
	s.syncView()
}

func (s *Scene) syncView() {
	c := s.Camera
	s.view.Eye = mgl32.Vec3{c.Position.X, c.Position.Y, c.Position.Z}
	s.view.Target = mgl32.Vec3{c.Target.X, c.Target.Y, c.Target.Z}
	s.view.Up = mgl32.Vec3{c.Up.X, c.Up.Y, c.Up.Z}
	s.view.FovY = c.Fovy
	if w, h := rl.GetScreenWidth(), rl.GetScreenHeight(); w > 0 && h > 0 {
		s.view.Width, s.view.Height = float32(w), float32(h)
	}
}

// Draw renders the grid and every visible node.
func (s *Scene) Draw() {
	rl.BeginMode3D(s.Camera)
	if s.GridVisible {
		drawEditorGrid()
	}
	s.renderer.begin(s.Camera.Position)
	s.graph.Each(func(_ scenegraph.NodeID, n *scenegraph.Node) {
		if n.Visible {
			s.renderer.draw(n)
		}
	})
	rl.EndMode3D()
}

// RenderInfo returns the draw calls and triangles of the last Draw.
func (s *Scene) RenderInfo() (drawCalls, triangles int) {
	return s.renderer.drawCalls, s.renderer.triangles
}

// Unload releases GPU meshes and materials. Call before the window closes.
func (s *Scene) Unload() {
	s.renderer.unload()
}

// drawEditorGrid draws a grid on the XZ plane with major/minor lines and axis lines.
// Reuses start/end vectors to avoid per-frame allocations in the hot loop.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	var start, end rl.Vector3
	for i := -gridExtent; i <= gridExtent; i += gridMinorStep {
		c := major
		if i%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(i), 0, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(i), 0, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
		start.X, start.Y, start.Z = float32(-gridExtent), 0, float32(i)
		end.X, end.Y, end.Z = float32(gridExtent), 0, float32(i)
		rl.DrawLine3D(start, end, c)
	}

	start.X, start.Y, start.Z = float32(-gridExtent), 0.01, 0
	end.X, end.Y, end.Z = float32(gridExtent), 0.01, 0
	rl.DrawLine3D(start, end, axisX)
	start.X, start.Y, start.Z = 0, 0.01, float32(-gridExtent)
	end.X, end.Y, end.Z = 0, 0.01, float32(gridExtent)
	rl.DrawLine3D(start, end, axisZ)
}
