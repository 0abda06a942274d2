package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/wavedeck/internal/keymap"
	"github.com/llehouerou/wavedeck/internal/playback"
	"github.com/llehouerou/wavedeck/internal/playlist"
	"github.com/llehouerou/wavedeck/internal/ui"
	"github.com/llehouerou/wavedeck/internal/ui/headerbar"
	"github.com/llehouerou/wavedeck/internal/ui/overlay"
	"github.com/llehouerou/wavedeck/internal/ui/playerbar"
	"github.com/llehouerou/wavedeck/internal/ui/render"
	"github.com/llehouerou/wavedeck/internal/ui/spectrum"
	"github.com/llehouerou/wavedeck/internal/ui/styles"
)

const (
	helpHeight   = 1
	statusHeight = 1
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width < ui.MinWidth || m.height < 10 {
		return "Terminal too small"
	}

	crumb := ""
	if p, ok := m.product(); ok {
		crumb = p.Name()
	}

	sections := []string{
		headerbar.Render(m.route.tab(), crumb, m.width),
		m.renderBody(),
		spectrum.Render(m.levels, m.width),
	}
	if bar := playerbar.Render(playerbar.NewState(m.snap), m.width); bar != "" {
		sections = append(sections, bar)
	}
	sections = append(sections, m.renderHelp(), m.renderStatus())
	view := strings.Join(sections, "\n")

	if m.snap.Widget.Visible {
		view = overlay.Center(view, m.renderMixPanel(), m.width, m.height)
	}
	return view
}

// bodyHeight returns the height of the list panel including its border.
func (m Model) bodyHeight() int {
	h := m.height - headerbar.Height - spectrum.Height - helpHeight - statusHeight
	if playerbar.NewState(m.snap).Active {
		h -= playerbar.Height
	}
	if m.help.ShowAll {
		rows := 0
		for _, col := range m.helpColumns() {
			rows = max(rows, len(col))
		}
		h -= rows - helpHeight
	}
	return max(h, ui.PanelOverhead+1)
}

func (m Model) renderBody() string {
	title, rows := m.rows()
	height := m.listHeight()
	innerWidth := m.width - 2

	start, end := m.cursor().VisibleRange(len(rows), height)
	lines := make([]string, 0, height+2)
	lines = append(lines, styles.T().S().Title.Render(render.Fit(title, innerWidth)), render.Separator(innerWidth))
	for i := start; i < end; i++ {
		line := render.Fit(rows[i].text, innerWidth)
		switch {
		case i == m.cursor().Pos():
			line = styles.T().S().Cursor.Render(line)
		case rows[i].current:
			line = styles.T().S().Playing.Render(line)
		case rows[i].mix:
			line = styles.T().S().Mix.Render(line)
		}
		lines = append(lines, line)
	}
	for len(lines) < height+2 {
		lines = append(lines, "")
	}

	return styles.PanelStyle(true).Width(innerWidth).Render(strings.Join(lines, "\n"))
}

type row struct {
	text    string
	current bool
	mix     bool
}

func (m Model) rows() (string, []row) {
	switch m.route.Section {
	case SectionCatalog:
		return m.catalogRows()
	case SectionProduct:
		return m.productRows()
	case SectionHistory:
		return m.historyRows()
	}
	return "", nil
}

func (m Model) catalogRows() (string, []row) {
	title := m.catalog.Title
	if title == "" {
		title = "Catalog"
	}
	rows := make([]row, 0, len(m.catalog.Products))
	for _, p := range m.catalog.Products {
		kind := humanize.Comma(int64(len(p.Tracks))) + " samples"
		if p.IsMix() {
			kind = "mix"
		}
		rows = append(rows, row{
			text: render.Row(p.Name(), kind, m.width-4),
			mix:  p.IsMix(),
		})
	}
	return title, rows
}

func (m Model) productRows() (string, []row) {
	p, ok := m.product()
	if !ok {
		return "Unknown product", nil
	}
	if p.IsMix() {
		return p.Name(), []row{{text: "▶ play mix " + p.Feed, mix: true}}
	}

	// Resolved tracklists win over the history.
	patched := playlist.IndexByKey(append(append([]playlist.Track(nil), m.history...), m.merged...))
	var currentKey string
	if m.snap.Track != nil && m.snap.Backend != playback.BackendNone {
		currentKey = m.snap.Track.Key
	}

	tracks := p.Playlist()
	rows := make([]row, 0, len(tracks))
	for i, t := range tracks {
		playlist.PatchOne(&t, patched)
		left := fmt.Sprintf("%2d  %s", i+1, t.Title)
		if t.Artist != "" && t.Artist != p.Artist {
			left += "  ·  " + t.Artist
		}
		rows = append(rows, row{
			text:    render.Row(left, t.Duration, m.width-4),
			current: currentKey != "" && t.Key == currentKey,
		})
	}
	return p.Name(), rows
}

func (m Model) historyRows() (string, []row) {
	rows := make([]row, 0, len(m.history))
	for i, t := range m.history {
		label := t.Title
		if t.Collection != "" {
			label += "  ·  " + t.Collection
		}
		rows = append(rows, row{
			text:    render.Row(humanize.Ordinal(i+1)+"  "+label, t.Duration, m.width-4),
			current: i == m.snap.Cursor,
		})
	}
	return fmt.Sprintf("History (%d)", len(rows)), rows
}

func (m Model) helpColumns() [][]key.Binding {
	return [][]key.Binding{
		keymap.HelpFor("playback"),
		keymap.HelpFor(string(m.route.Section), "list"),
		keymap.HelpFor("global"),
	}
}

func (m Model) renderHelp() string {
	if m.help.ShowAll {
		return m.help.FullHelpView(m.helpColumns())
	}
	return m.help.ShortHelpView(append(keymap.HelpFor(string(m.route.Section)), keymap.HelpFor("playback")[:2]...))
}

func (m Model) renderStatus() string {
	return styles.T().S().Error.Render(render.Truncate(m.status, m.width))
}

func (m Model) renderMixPanel() string {
	w := m.snap.Widget
	title := w.Feed
	if w.Track != nil && w.Track.Title != "" {
		title = w.Track.Title
	}

	state := "connecting"
	switch {
	case w.Playing:
		state = "playing"
	case w.Ready:
		state = "paused"
	}

	st := styles.T().S()
	body := strings.Join([]string{
		st.Title.Render(render.Truncate(title, 36)),
		st.Muted.Render(render.Truncate(w.Feed, 36)),
		"",
		st.Mix.Render(state),
		st.Subtle.Render("w hide · W close"),
	}, "\n")

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.T().Secondary).
		Padding(0, 2).
		Width(40).
		Render(body)
}
