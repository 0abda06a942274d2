// Package app is the TUI view layer. Views hold no playback state: they
// send commands to the coordinator and render the snapshots it publishes.
// Each route holds its own subscription, taken when the route is entered
// and dropped when it is left.
package app

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedeck/internal/analysis"
	"github.com/llehouerou/wavedeck/internal/catalog"
	"github.com/llehouerou/wavedeck/internal/errmsg"
	"github.com/llehouerou/wavedeck/internal/keymap"
	"github.com/llehouerou/wavedeck/internal/playback"
	"github.com/llehouerou/wavedeck/internal/playlist"
	"github.com/llehouerou/wavedeck/internal/ui"
	"github.com/llehouerou/wavedeck/internal/ui/cursor"
)

const levelsInterval = 100 * time.Millisecond

// Controller is the coordinator surface the views use.
type Controller interface {
	Subscribe() *playback.Subscription
	Unsubscribe(sub *playback.Subscription)
	Navigate(route string) error

	PlaySingle(track playlist.Track) error
	PlayList(tracks []playlist.Track, start int) error
	Enrich(releaseID string, tracks []playlist.Track)
	Enriched(releaseID string) []playlist.Track
	Next() error
	Previous() error
	Toggle() error
	Stop() error

	LoadWidget(feed string, opts playback.WidgetOptions) error
	ShowWidget() error
	HideWidget() error
	CloseWidget() error

	Snapshot() playback.Snapshot
	History() []playlist.Track
	Analysis() analysis.Levels
}

// Model is the root bubbletea model.
type Model struct {
	ctl     Controller
	catalog *catalog.Catalog
	keys    *keymap.Resolver
	help    help.Model
	logger  zerolog.Logger

	route   Route
	sub     *playback.Subscription
	snap    playback.Snapshot
	history []playlist.Track
	merged  []playlist.Track // resolved tracklist of the product page
	levels  analysis.Levels
	cursors map[string]*cursor.Cursor

	width, height int
	status        string
	quitting      bool
}

// New creates the root model on the catalog route.
func New(ctl Controller, cat *catalog.Catalog, logger zerolog.Logger) Model {
	m := Model{
		ctl:     ctl,
		catalog: cat,
		keys:    keymap.Default,
		help:    help.New(),
		logger:  logger.With().Str("component", "tui").Logger(),
		cursors: make(map[string]*cursor.Cursor),
	}
	m.enter(CatalogRoute())
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(watch(m.sub), levelsTick())
}

// Route returns the current route.
func (m Model) Route() Route {
	return m.route
}

// enter leaves the current route and enters r: the old subscription is
// dropped, the coordinator hears about the transition, and a fresh
// subscription is taken. Mix product pages auto-load their widget.
func (m *Model) enter(r Route) {
	if m.sub != nil {
		m.ctl.Unsubscribe(m.sub)
	}
	m.route = r
	if err := m.ctl.Navigate(r.String()); err != nil {
		m.logger.Debug().Err(err).Str("route", r.String()).Msg("navigate")
	}
	m.sub = m.ctl.Subscribe()
	m.snap = m.ctl.Snapshot()
	m.history = m.ctl.History()
	m.refreshMerged()

	if p, ok := m.product(); ok && p.IsMix() {
		desc := mixTrack(p)
		m.report(errmsg.OpWidgetLoad, m.ctl.LoadWidget(p.Feed, playback.WidgetOptions{Track: &desc}))
	}
}

// refreshMerged reloads the resolved tracklist of the current product.
func (m *Model) refreshMerged() {
	m.merged = nil
	if p, ok := m.product(); ok && p.ReleaseID != "" {
		m.merged = m.ctl.Enriched(p.ReleaseID)
	}
}

// product returns the product of the current product route.
func (m Model) product() (catalog.Product, bool) {
	if m.route.Section != SectionProduct {
		return catalog.Product{}, false
	}
	return m.catalog.Product(m.route.ProductID)
}

func (m Model) cursor() *cursor.Cursor {
	key := m.route.String()
	c, ok := m.cursors[key]
	if !ok {
		nc := cursor.New(ui.ScrollMargin)
		c = &nc
		m.cursors[key] = c
	}
	return c
}

// mixTrack describes a mix product for the player bar and notifications.
func mixTrack(p catalog.Product) playlist.Track {
	t := playlist.NewTrack("", p.Title)
	t.Artist = p.Artist
	t.Collection = p.Name()
	t.ArtworkURL = p.ArtworkURL
	t.Link = p.Link
	return t
}
