// Package ui styles the viewer's overlay panels with a small CSS subset:
// ".class" and "#id" selectors with "key: value;" declarations. No combinators,
// no @rules, later rules override earlier ones.
package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is RGBA.
type Color [4]uint8

// Rule is one selector and its raw declarations.
type Rule struct {
	Selector string
	Props    map[string]string
}

// Stylesheet is an ordered list of rules.
type Stylesheet struct {
	Rules []Rule
}

// ComputedStyle is what a panel node is drawn with. LeftPct and TopPct are -1
// when the position is given in pixels.
type ComputedStyle struct {
	Background Color
	Color      Color
	Border     Color
	HasBorder  bool
	Width      int32
	Height     int32
	Left       int32
	Top        int32
	LeftPct    int32
	TopPct     int32
	Padding    int32
	FontSize   int32
}

// DefaultStyle is transparent with white 18px text.
func DefaultStyle() ComputedStyle {
	return ComputedStyle{
		Color:    Color{255, 255, 255, 255},
		LeftPct:  -1,
		TopPct:   -1,
		Padding:  4,
		FontSize: 18,
	}
}

// ParseCSS parses content. Blocks with other selectors are skipped; an
// unterminated block is an error.
func ParseCSS(content string) (*Stylesheet, error) {
	sheet := &Stylesheet{}
	rest := stripComments(content)
	for {
		head, body, found := strings.Cut(rest, "{")
		if !found {
			if strings.TrimSpace(head) != "" {
				return nil, fmt.Errorf("ui: trailing text %q", strings.TrimSpace(head))
			}
			return sheet, nil
		}
		block, after, closed := strings.Cut(body, "}")
		if !closed {
			return nil, fmt.Errorf("ui: unterminated block for %q", strings.TrimSpace(head))
		}
		rest = after
		sel := strings.TrimSpace(head)
		if len(sel) < 2 || (sel[0] != '.' && sel[0] != '#') {
			continue
		}
		sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Props: declarations(block)})
	}
}

// Resolve merges the rules matching class or id, in order, over DefaultStyle.
func (s *Stylesheet) Resolve(class, id string) ComputedStyle {
	merged := make(map[string]string)
	if s != nil {
		for _, r := range s.Rules {
			if (class != "" && r.Selector == "."+class) || (id != "" && r.Selector == "#"+id) {
				for k, v := range r.Props {
					merged[k] = v
				}
			}
		}
	}
	return computeStyle(merged)
}

func computeStyle(props map[string]string) ComputedStyle {
	out := DefaultStyle()
	for k, v := range props {
		switch k {
		case "background":
			if c, ok := ParseHexColor(v); ok {
				out.Background = c
			}
		case "color":
			if c, ok := ParseHexColor(v); ok {
				out.Color = c
			}
		case "border":
			if c, ok := ParseHexColor(v); ok {
				out.Border, out.HasBorder = c, true
			}
		case "width":
			if n, ok := ParsePx(v); ok {
				out.Width = n
			}
		case "height":
			if n, ok := ParsePx(v); ok {
				out.Height = n
			}
		case "left":
			if pct, ok := ParsePct(v); ok {
				out.LeftPct = pct
			} else if n, ok := ParsePx(v); ok {
				out.Left = n
			}
		case "top":
			if pct, ok := ParsePct(v); ok {
				out.TopPct = pct
			} else if n, ok := ParsePx(v); ok {
				out.Top = n
			}
		case "padding":
			if n, ok := ParsePx(v); ok && n >= 0 {
				out.Padding = n
			}
		case "font-size":
			if n, ok := ParsePx(v); ok && n > 0 {
				out.FontSize = n
			}
		}
	}
	return out
}

// ParseHexColor parses #RGB, #RRGGBB or #RRGGBBAA.
func ParseHexColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return Color{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

// ParsePx parses "12" or "12px".
func ParsePx(s string) (int32, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// ParsePct parses "N%" with N in [0,100].
func ParsePct(s string) (int32, bool) {
	s = strings.TrimSpace(s)
	num, found := strings.CutSuffix(s, "%")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return int32(n), true
}

func declarations(body string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(body, ";") {
		k, v, ok := strings.Cut(part, ":")
		if k = strings.TrimSpace(k); ok && k != "" {
			props[k] = strings.TrimSpace(v)
		}
	}
	return props
}

func stripComments(s string) string {
	var b strings.Builder
	for {
		before, after, found := strings.Cut(s, "/*")
		b.WriteString(before)
		if !found {
			return b.String()
		}
		_, s, found = strings.Cut(after, "*/")
		if !found {
			return b.String()
		}
	}
}
