package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavedeck/internal/errmsg"
	"github.com/llehouerou/wavedeck/internal/keymap"
	"github.com/llehouerou/wavedeck/internal/playback"
	"github.com/llehouerou/wavedeck/internal/ui"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case snapshotMsg:
		if msg.sub != m.sub {
			return m, nil
		}
		m.applySnapshot(msg.snap)
		return m, watch(m.sub)

	case subscriptionDoneMsg:
		return m, nil

	case levelsMsg:
		if m.quitting {
			return m, nil
		}
		m.levels = m.ctl.Analysis()
		return m, levelsTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) applySnapshot(snap playback.Snapshot) {
	if snap.HistoryLen != m.snap.HistoryLen || snap.Reason == playback.ReasonPatch {
		m.history = m.ctl.History()
	}
	if snap.Reason == playback.ReasonPatch {
		m.refreshMerged()
	}
	m.snap = snap
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.Resolve(string(m.route.Section), msg.String())
	if action == "" {
		return m, nil
	}

	if m.cursor().HandleAction(action, m.listLen(), m.listHeight()) {
		return m, nil
	}

	prev := m.route
	m.status = ""

	switch action { //nolint:exhaustive // list actions handled above
	case keymap.ActionQuit:
		m.quitting = true
		m.ctl.Unsubscribe(m.sub)
		return m, tea.Quit
	case keymap.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
	case keymap.ActionBack:
		if m.route.Section != SectionCatalog {
			m.enter(CatalogRoute())
		}
	case keymap.ActionCatalog:
		if m.route.Section != SectionCatalog {
			m.enter(CatalogRoute())
		}
	case keymap.ActionHistory:
		if m.route.Section != SectionHistory {
			m.enter(HistoryRoute())
		}

	case keymap.ActionPlayPause:
		m.report(errmsg.OpPlaybackStart, m.ctl.Toggle())
	case keymap.ActionStop:
		m.report(errmsg.OpPlaybackStart, m.ctl.Stop())
	case keymap.ActionNextTrack:
		m.report(errmsg.OpPlaybackStart, m.ctl.Next())
	case keymap.ActionPrevTrack:
		m.report(errmsg.OpPlaybackStart, m.ctl.Previous())
	case keymap.ActionToggleWidget:
		m.toggleWidget()
	case keymap.ActionCloseWidget:
		m.report(errmsg.OpWidgetClose, m.ctl.CloseWidget())

	case keymap.ActionSelect:
		m.selectItem()
	case keymap.ActionPlayAll:
		m.playAll()
	case keymap.ActionEnrich:
		if p, ok := m.product(); ok && p.ReleaseID != "" {
			m.ctl.Enrich(p.ReleaseID, p.Playlist())
			m.status = "fetching tracklist for " + p.Name()
		}
	}

	if m.route != prev {
		return m, watch(m.sub)
	}
	return m, nil
}

func (m *Model) selectItem() {
	pos := m.cursor().Pos()
	switch m.route.Section {
	case SectionCatalog:
		if pos < len(m.catalog.Products) {
			m.enter(ProductRoute(m.catalog.Products[pos].ID))
		}
	case SectionProduct:
		p, ok := m.product()
		if !ok {
			return
		}
		if p.IsMix() {
			desc := mixTrack(p)
			m.report(errmsg.OpWidgetLoad, m.ctl.LoadWidget(p.Feed, playback.WidgetOptions{
				Manual:   true,
				Track:    &desc,
				AutoPlay: true,
			}))
			return
		}
		tracks := p.Playlist()
		if pos < len(tracks) {
			m.report(errmsg.OpPlaybackStart, m.ctl.PlaySingle(tracks[pos]))
		}
	case SectionHistory:
		if pos < len(m.history) {
			m.report(errmsg.OpPlaybackStart, m.ctl.PlaySingle(m.history[pos]))
		}
	}
}

func (m *Model) playAll() {
	p, ok := m.product()
	if !ok || p.IsMix() {
		return
	}
	tracks := p.Playlist()
	m.report(errmsg.OpPlaybackList, m.ctl.PlayList(tracks, min(m.cursor().Pos(), len(tracks)-1)))
}

func (m *Model) toggleWidget() {
	w := m.snap.Widget
	switch {
	case !w.Loaded():
	case w.Visible:
		m.report(errmsg.OpWidgetLoad, m.ctl.HideWidget())
	default:
		m.report(errmsg.OpWidgetLoad, m.ctl.ShowWidget())
	}
}

func (m *Model) report(op errmsg.Op, err error) {
	if err != nil {
		m.setErrorOp(op, err)
	}
}

func (m *Model) setErrorOp(op errmsg.Op, err error) {
	m.status = errmsg.Format(op, err)
	m.logger.Warn().Err(err).Str("op", string(op)).Msg("command failed")
}

// listLen returns the number of rows of the current route.
func (m Model) listLen() int {
	switch m.route.Section {
	case SectionCatalog:
		return len(m.catalog.Products)
	case SectionProduct:
		p, _ := m.product()
		return len(p.Tracks)
	case SectionHistory:
		return len(m.history)
	}
	return 0
}

// listHeight returns the rows available to the list panel.
func (m Model) listHeight() int {
	var b ui.Base
	b.SetSize(m.width, m.bodyHeight())
	return b.ListHeight(ui.PanelOverhead)
}
