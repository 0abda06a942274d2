// Package overlay draws floating panels over a rendered view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Compose overlays content on top of base. On each line, the visible span
// of the overlay (leading and trailing spaces excluded) replaces the base.
// Both inputs may carry ANSI styling.
func Compose(base, overlay string, width int) string {
	baseLines := strings.Split(base, "\n")

	for i, line := range strings.Split(overlay, "\n") {
		if i >= len(baseLines) {
			break
		}
		plain := ansi.Strip(line)
		trimmed := strings.TrimRight(plain, " ")
		startCol := ansi.StringWidth(trimmed) - ansi.StringWidth(strings.TrimLeft(trimmed, " "))
		endCol := ansi.StringWidth(trimmed)
		if endCol == startCol {
			continue
		}

		baseLine := baseLines[i]
		if w := ansi.StringWidth(baseLine); w < width {
			baseLine += strings.Repeat(" ", width-w)
		}

		result := ansi.Cut(baseLine, 0, startCol) + ansi.Cut(line, startCol, endCol)
		if endCol < width {
			result += ansi.Cut(baseLine, endCol, width)
		}
		baseLines[i] = result
	}

	return strings.Join(baseLines, "\n")
}

// Center composes box in the middle of a width x height base.
func Center(base, box string, width, height int) string {
	boxLines := strings.Split(box, "\n")
	boxWidth := 0
	for _, l := range boxLines {
		boxWidth = max(boxWidth, ansi.StringWidth(l))
	}

	top := max((height-len(boxLines))/2, 0)
	left := strings.Repeat(" ", max((width-boxWidth)/2, 0))

	lines := make([]string, top, top+len(boxLines))
	for _, l := range boxLines {
		lines = append(lines, left+l)
	}
	return Compose(base, strings.Join(lines, "\n"), width)
}
