package ui

import (
	"fmt"
	"strings"

	"lod-engine/internal/lod"
)

// DefaultCSS styles the inspector when no stylesheet file is found.
const DefaultCSS = `
.inspector { background: #181a20e0; border: #50505a; width: 340; height: 230; left: 98%; top: 45%; padding: 10; }
.inspector-title { color: #9fd6ff; font-size: 20; }
.inspector-line { color: #d0d0d0; font-size: 16; }
.inspector-hidden { color: #ff8c69; font-size: 16; }
`

// Node is one styled element of a panel: the panel itself or a text line.
type Node struct {
	Class string
	ID    string
	Text  string
}

// Inspector describes one LOD object as a panel node followed by text lines.
type Inspector struct {
	nodes []Node
}

// Nodes returns the panel for object id. The slice is reused by the next call.
func (in *Inspector) Nodes(id string, cfg lod.Configuration, d lod.DebugInfo) []Node {
	in.nodes = append(in.nodes[:0],
		Node{Class: "inspector"},
		Node{Class: "inspector-title", Text: "LOD " + id},
	)
	line := func(format string, args ...any) {
		in.nodes = append(in.nodes, Node{Class: "inspector-line", Text: fmt.Sprintf(format, args...)})
	}

	if d.Visible {
		line("Level: %d of %d", d.ActiveLevel, len(cfg.Levels))
	} else {
		in.nodes = append(in.nodes, Node{Class: "inspector-hidden", Text: "Hidden: " + string(d.Culled)})
	}
	line("Distance: %.2f", d.Distance)
	line("Screen size: %.1f px (min %.1f)", d.ScreenSize, cfg.MinimumScreenSize)
	line("Polygons: %d", d.PolygonCount)
	line("In frustum: %s", yesNo(d.InFrustum, cfg.EnableFrustumCulling))

	thresholds := make([]string, len(cfg.Levels))
	for i, l := range cfg.Levels {
		thresholds[i] = fmt.Sprintf("%g", l.Distance)
	}
	line("Thresholds: %s", strings.Join(thresholds, " / "))
	line("Hysteresis: %.2f", cfg.Hysteresis)
	return in.nodes
}

func yesNo(in, checked bool) string {
	switch {
	case !checked:
		return "not checked"
	case in:
		return "yes"
	default:
		return "no"
	}
}
