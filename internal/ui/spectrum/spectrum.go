// Package spectrum renders the analysis levels as a one-line strip.
package spectrum

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavedeck/internal/analysis"
	"github.com/llehouerou/wavedeck/internal/ui/styles"
)

// Height is the strip height.
const Height = 1

var glyphs = []rune("▁▂▃▄▅▆▇█")

// palette holds one color per glyph level.
var palette = styles.Blend(len(glyphs), styles.T().LevelLow, styles.T().LevelHigh)

// Level maps a normalized magnitude to a glyph index.
func Level(v float64) int {
	v = max(0, min(v, 1))
	return min(int(v*float64(len(glyphs))), len(glyphs)-1)
}

// Render draws levels across width columns. Bands share the width evenly;
// leftover columns go to the peak meter on the right.
func Render(levels analysis.Levels, width int) string {
	if width <= 0 {
		return ""
	}
	if levels.Silent() || len(levels.Bands) == 0 {
		return styles.T().S().Subtle.Render(strings.Repeat(string(glyphs[0]), width))
	}

	bandWidth := width / len(levels.Bands)
	var b strings.Builder
	for _, v := range levels.Bands {
		b.WriteString(cell(Level(v), bandWidth))
	}
	if rest := width - bandWidth*len(levels.Bands); rest > 0 {
		b.WriteString(cell(Level(levels.Peak), rest))
	}
	return b.String()
}

func cell(level, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(palette[level]).
		Render(strings.Repeat(string(glyphs[level]), width))
}
