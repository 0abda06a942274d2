package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedeck/internal/catalog"
)

// Run starts the TUI and blocks until the user quits.
func Run(ctl Controller, cat *catalog.Catalog, logger zerolog.Logger) error {
	p := tea.NewProgram(New(ctl, cat, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
