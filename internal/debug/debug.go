package debug

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"lod-engine/internal/lod"
	"lod-engine/internal/perf"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	logLines   = 6
	// updateInterval: only refresh overlay text every N frames to reduce allocations.
	updateInterval = 30
)

// Frame is what the overlay reports on.
type Frame struct {
	Metrics perf.Metrics
	Mode    string
	Stats   lod.Statistics
	Log     []string // recent log lines, oldest first
}

// Debug draws the runtime overlays: frame rate and memory at the top-right, LOD
// statistics under them and recent log lines at the bottom-left.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowLODStats bool
	ShowLog      bool

	frameCount uint32
	fpsText    string
	memText    string
	lodText    []string
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// Draw renders the enabled overlays. Call after the 3D scene in the draw loop.
// Text is only recomputed every updateInterval frames.
func (d *Debug) Draw(f Frame) {
	d.frameCount++
	if d.frameCount%updateInterval == 1 || d.fpsText == "" {
		m := f.Metrics
		d.fpsText = fmt.Sprintf("FPS: %.0f (avg %.1f ±%.1f) %s", m.FPS, m.AverageFPS, m.FPSStdDev, f.Mode)
		d.memText = fmt.Sprintf("Mem: %.2f MiB", float64(m.MemoryUsage)/(1024*1024))
		st := f.Stats
		d.lodText = append(d.lodText[:0],
			fmt.Sprintf("LOD %s: %d/%d visible", st.CurrentQuality, st.VisibleObjects, st.TotalObjects),
			fmt.Sprintf("Polygons: %d", st.TotalPolygons),
			fmt.Sprintf("Culled: %d frustum, %d size", st.FrustumCulled, st.OcclusionCulled),
			fmt.Sprintf("Draw calls: %d", m.DrawCalls),
		)
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)
	right := func(text string) {
		w := rl.MeasureText(text, fontSize)
		rl.DrawText(text, screenW-w-padding, y, fontSize, rl.Green)
		y += lineHeight
	}
	if d.ShowFPS {
		right(d.fpsText)
	}
	if d.ShowMemAlloc {
		right(d.memText)
	}
	if d.ShowLODStats {
		for _, line := range d.lodText {
			right(line)
		}
	}

	if d.ShowLog && len(f.Log) > 0 {
		lines := f.Log[max(0, len(f.Log)-logLines):]
		y := int32(rl.GetScreenHeight()) - int32(len(lines))*lineHeight - padding
		for _, line := range lines {
			rl.DrawText(line, padding, y, fontSize-4, rl.LightGray)
			y += lineHeight
		}
	}
}
