package spectrum

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/wavedeck/internal/analysis"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, 0, Level(-1))
	assert.Equal(t, 0, Level(0))
	assert.Equal(t, 4, Level(0.5))
	assert.Equal(t, 7, Level(1))
	assert.Equal(t, 7, Level(2))
}

func TestRender_Silent(t *testing.T) {
	out := ansi.Strip(Render(analysis.Levels{}, 6))
	assert.Equal(t, "▁▁▁▁▁▁", out)
}

func TestRender_Bands(t *testing.T) {
	levels := analysis.Levels{Peak: 1, Bands: []float64{0, 0.5, 1}}

	out := ansi.Strip(Render(levels, 7))
	assert.Equal(t, "▁▁▅▅███", out)
	assert.Equal(t, 7, ansi.StringWidth(out))
}

func TestRender_ZeroWidth(t *testing.T) {
	assert.Empty(t, Render(analysis.Levels{Peak: 1, Bands: []float64{1}}, 0))
}
