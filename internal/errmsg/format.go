// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Sample operations
	OpSampleLoad    Op = "load sample"
	OpSamplePlay    Op = "play sample"
	OpSampleRelease Op = "release sample"

	// Widget operations
	OpWidgetLoad  Op = "load mix player"
	OpWidgetReady Op = "connect to mix player"
	OpWidgetPoll  Op = "query mix player"
	OpWidgetPlay  Op = "play mix"
	OpWidgetPause Op = "pause mix"
	OpWidgetClose Op = "close mix player"

	// Exclusion
	OpPageAudioPause Op = "pause page audio"

	// Enrichment operations
	OpEnrichFetch Op = "fetch tracklist"
	OpEnrichCache Op = "cache tracklist"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackList  Op = "play list"

	// Catalog
	OpCatalogLoad Op = "load catalog"

	// Desktop integration
	OpMPRISStart Op = "start media controls"
	OpNotify     Op = "show notification"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Wrap prefixes err with the operation name, keeping it unwrappable.
func Wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
