package playerbar

import (
	"strings"
	"time"

	"github.com/llehouerou/wavedeck/internal/ui/styles"
)

// ProgressBar renders a width-column bar filled to position/duration.
func ProgressBar(position, duration time.Duration, width int) string {
	if width <= 0 {
		return ""
	}
	var ratio float64
	if duration > 0 {
		ratio = min(float64(position)/float64(duration), 1)
	}
	filled := int(float64(width) * max(ratio, 0))
	st := styles.T().S()
	return st.Playing.Render(strings.Repeat("━", filled)) +
		st.Subtle.Render(strings.Repeat("─", width-filled))
}
