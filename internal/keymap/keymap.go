package keymap

import "github.com/charmbracelet/bubbles/key"

// Binding maps keys to an action, with a description for help.
type Binding struct {
	Action      Action
	Keys        []string
	Description string
	Context     string // "global", "playback", "catalog", "product", "history"
}

// Help returns the binding as a bubbles key binding for help rendering.
func (b Binding) Help() key.Binding {
	label := ""
	if len(b.Keys) > 0 {
		label = b.Keys[0]
		if label == " " {
			label = "space"
		}
	}
	return key.NewBinding(key.WithKeys(b.Keys...), key.WithHelp(label, b.Description))
}

// All contains every key binding.
var All = []Binding{
	// Global
	{ActionQuit, []string{"q", "ctrl+c"}, "quit", "global"},
	{ActionHelp, []string{"?"}, "help", "global"},
	{ActionBack, []string{"esc", "backspace"}, "back", "global"},
	{ActionCatalog, []string{"f1", "1"}, "catalog", "global"},
	{ActionHistory, []string{"f2", "2"}, "history", "global"},

	// Playback
	{ActionPlayPause, []string{" "}, "play/pause", "playback"},
	{ActionStop, []string{"s"}, "stop", "playback"},
	{ActionNextTrack, []string{"n", "pgdown"}, "next", "playback"},
	{ActionPrevTrack, []string{"b", "pgup"}, "previous", "playback"},
	{ActionToggleWidget, []string{"w"}, "show/hide mix", "playback"},
	{ActionCloseWidget, []string{"W"}, "close mix", "playback"},

	// Lists
	{ActionMoveUp, []string{"k", "up"}, "up", "list"},
	{ActionMoveDown, []string{"j", "down"}, "down", "list"},
	{ActionJumpStart, []string{"g", "home"}, "first", "list"},
	{ActionJumpEnd, []string{"G", "end"}, "last", "list"},

	// Catalog
	{ActionSelect, []string{"enter"}, "open", "catalog"},

	// Product
	{ActionSelect, []string{"enter"}, "play track", "product"},
	{ActionPlayAll, []string{"p"}, "play from here", "product"},
	{ActionEnrich, []string{"e"}, "fetch tracklist", "product"},

	// History
	{ActionSelect, []string{"enter"}, "replay", "history"},
}

// ByContext returns key bindings filtered by context.
func ByContext(context string) []Binding {
	var result []Binding
	for _, kb := range All {
		if kb.Context == context {
			result = append(result, kb)
		}
	}
	return result
}

// HelpFor returns the bubbles key bindings of the given contexts, in order.
func HelpFor(contexts ...string) []key.Binding {
	var result []key.Binding
	for _, c := range contexts {
		for _, b := range ByContext(c) {
			result = append(result, b.Help())
		}
	}
	return result
}
