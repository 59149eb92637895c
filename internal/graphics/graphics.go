package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window describes the window Run opens. Zero Width or Height uses the monitor size.
type Window struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	TargetFPS  int // 0 = uncapped
}

// Run opens the window and drives the main loop. Each frame it calls update
// (input, scheduler step, LOD pass), then clears the screen and calls draw.
// ESC is left to the terminal; close via the window button.
func Run(w Window, update, draw func()) {
	flags := uint32(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	if w.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	width, height := w.Width, w.Height
	rl.InitWindow(int32(max(width, 1)), int32(max(height, 1)), w.Title)
	defer rl.CloseWindow()
	if width <= 0 || height <= 0 {
		m := rl.GetCurrentMonitor()
		rl.SetWindowSize(rl.GetMonitorWidth(m), rl.GetMonitorHeight(m))
	}
	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(int32(w.TargetFPS))

	for !rl.WindowShouldClose() {
		update()

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(24, 26, 32, 255))
		draw()
		rl.EndDrawing()
	}
}
