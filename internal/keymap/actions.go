// Package keymap defines key bindings and action dispatch for the TUI.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit    Action = "quit"
	ActionHelp    Action = "help"
	ActionBack    Action = "back"
	ActionCatalog Action = "view_catalog"
	ActionHistory Action = "view_history"

	// Playback actions
	ActionPlayPause Action = "play_pause"
	ActionStop      Action = "stop"
	ActionNextTrack Action = "next_track"
	ActionPrevTrack Action = "prev_track"

	// Widget actions
	ActionToggleWidget Action = "toggle_widget"
	ActionCloseWidget  Action = "close_widget"

	// Navigation actions
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"

	// Selection/activation actions
	ActionSelect  Action = "select"   // enter - open product or play track
	ActionPlayAll Action = "play_all" // p - play the whole product from the cursor
	ActionEnrich  Action = "enrich"   // e - fetch the authoritative tracklist
)
