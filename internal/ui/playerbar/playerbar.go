// Package playerbar renders the persistent player bar.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavedeck/internal/playback"
	"github.com/llehouerou/wavedeck/internal/ui/render"
	"github.com/llehouerou/wavedeck/internal/ui/styles"
)

// Height is the player bar height including borders.
const Height = 3

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
)

// State holds everything needed to render the player bar.
type State struct {
	Active   bool
	Playing  bool
	Mix      bool // playing through the widget
	Title    string
	Info     string // artist · collection
	Position time.Duration
	Duration time.Duration
	Feed     string
	Cursor   int // 1-based history position, 0 if none
	Total    int
}

// NewState builds the bar state from a snapshot. The bar stays visible
// during the grace window, when the track outlives the session.
func NewState(s playback.Snapshot) State {
	if s.Track == nil {
		return State{}
	}
	t := s.Track
	info := t.Artist
	switch {
	case t.Collection == "":
	case info == "" || strings.Contains(t.Collection, info):
		info = t.Collection
	default:
		info += " · " + t.Collection
	}
	return State{
		Active:   true,
		Playing:  s.Playing,
		Mix:      s.Backend == playback.BackendWidget,
		Title:    t.Title,
		Info:     info,
		Position: s.Elapsed,
		Duration: s.Duration,
		Feed:     s.Widget.Feed,
		Cursor:   s.Cursor + 1,
		Total:    s.HistoryLen,
	}
}

// Render returns the player bar for width, or "" when nothing is active.
func Render(s State, width int) string {
	if !s.Active || width < 10 {
		return ""
	}
	innerWidth := max(width-6, 0) // border + padding
	st := styles.T().S()

	status := pauseSymbol
	if s.Playing {
		status = playSymbol
	}
	title := s.Title
	if title == "" {
		title = "Unknown track"
	}

	var right string
	switch {
	case s.Mix:
		right = st.Mix.Render("mix " + s.Feed)
	default:
		right = st.Muted.Render(render.Duration(s.Position) + " / " + render.Duration(s.Duration))
	}
	if s.Total > 0 {
		right = st.Subtle.Render(fmt.Sprintf("%d/%d", s.Cursor, s.Total)) + "   " + right
	}

	rightWidth := lipgloss.Width(right)
	leftWidth := max(innerWidth-rightWidth-3, 0)
	left := status + " " + st.Title.Render(title)
	if s.Info != "" {
		left += "   " + st.Muted.Render(s.Info)
	}
	left = render.Truncate(left, leftWidth)

	var bar string
	if !s.Mix {
		barWidth := innerWidth - lipgloss.Width(left) - rightWidth - 6
		if barWidth >= 5 {
			bar = "   " + ProgressBar(s.Position, s.Duration, barWidth)
		}
	}

	content := render.Row(left+bar, right, innerWidth)
	return styles.PanelStyle(false).Padding(0, 2).Width(width - 2).Render(content)
}
