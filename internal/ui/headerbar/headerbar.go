// Package headerbar renders the route tabs at the top of the screen.
package headerbar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavedeck/internal/ui/styles"
)

// Height is the fixed height of the header bar.
const Height = 1

type tab struct {
	key   string
	name  string
	route string
}

var tabs = []tab{
	{"F1", "Catalog", "catalog"},
	{"F2", "History", "history"},
}

var (
	activeStyle   = lipgloss.NewStyle().Foreground(styles.T().Primary).Bold(true)
	inactiveKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	inactiveName  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	separatorLine = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(" │ ")
)

// Render returns the header for the active section. crumb names the open
// product, if any; product pages belong to the catalog tab.
func Render(section, crumb string, width int) string {
	if width < 20 {
		return ""
	}

	parts := make([]string, 0, len(tabs)+1)
	for _, t := range tabs {
		if t.route == section {
			parts = append(parts, activeStyle.Render(t.key+" "+t.name))
			continue
		}
		parts = append(parts, inactiveKey.Render(t.key)+" "+inactiveName.Render(t.name))
	}
	if crumb != "" {
		parts = append(parts, styles.T().S().Muted.Render(crumb))
	}

	logo := styles.ApplyBoldGradient("wavedeck", styles.T().Primary, styles.T().Secondary) + " "
	avail := width - lipgloss.Width(logo)
	content := strings.Join(parts, separatorLine)
	if w := lipgloss.Width(content); w < avail {
		content = strings.Repeat(" ", (avail-w)/2) + content
	}
	return logo + content
}
