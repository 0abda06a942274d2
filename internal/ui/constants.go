// Package ui provides shared layout constants and component helpers.
package ui

// Layout constants for consistent sizing across views.
const (
	// ScrollMargin is the number of items kept visible above/below the cursor.
	ScrollMargin = 3

	// BorderHeight is the vertical space consumed by a panel border.
	BorderHeight = 2

	// HeaderHeight is the space for a panel title + separator.
	HeaderHeight = 2

	// PanelOverhead is the vertical overhead of a titled panel.
	PanelOverhead = BorderHeight + HeaderHeight

	// MinWidth is the narrowest terminal the views render in.
	MinWidth = 40
)
