package debug

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"lod-engine/internal/ui"
)

// Panel draws ui nodes: the first node is the box, the rest are text lines
// stacked inside it. Styles are resolved once per class and id.
type Panel struct {
	sheet  *ui.Stylesheet
	styles map[ui.Node]ui.ComputedStyle
}

// NewPanel returns a Panel styled by sheet.
func NewPanel(sheet *ui.Stylesheet) *Panel {
	return &Panel{sheet: sheet, styles: make(map[ui.Node]ui.ComputedStyle)}
}

func (p *Panel) style(n ui.Node) ui.ComputedStyle {
	key := ui.Node{Class: n.Class, ID: n.ID}
	st, ok := p.styles[key]
	if !ok {
		st = p.sheet.Resolve(n.Class, n.ID)
		p.styles[key] = st
	}
	return st
}

// Draw renders nodes. Call after EndMode3D.
func (p *Panel) Draw(nodes []ui.Node) {
	if len(nodes) == 0 {
		return
	}
	box := p.style(nodes[0])
	w, h := box.Width, box.Height
	x, y := box.Left, box.Top
	if box.LeftPct >= 0 {
		x = (int32(rl.GetScreenWidth()) - w) * box.LeftPct / 100
	}
	if box.TopPct >= 0 {
		y = (int32(rl.GetScreenHeight()) - h) * box.TopPct / 100
	}
	if box.Background[3] > 0 {
		rl.DrawRectangle(x, y, w, h, color(box.Background))
	}
	if box.HasBorder && w > 0 && h > 0 {
		rl.DrawRectangleLines(x, y, w, h, color(box.Border))
	}

	ty := y + box.Padding
	for _, n := range nodes[1:] {
		st := p.style(n)
		rl.DrawText(n.Text, x+box.Padding, ty, st.FontSize, color(st.Color))
		ty += st.FontSize + 4
	}
}

func color(c ui.Color) rl.Color {
	return rl.NewColor(c[0], c[1], c[2], c[3])
}
