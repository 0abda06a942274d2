package playback

import (
	"time"

	"github.com/llehouerou/wavedeck/internal/playlist"
	"github.com/llehouerou/wavedeck/internal/widget"
)

// Reason tells subscribers which operation produced a snapshot.
type Reason int

const (
	ReasonPlay Reason = iota
	ReasonPause
	ReasonResume
	ReasonStop
	ReasonNext
	ReasonPrevious
	ReasonAdvance  // a sample ended and the next history entry started
	ReasonEnded    // a sample ended with nothing after it
	ReasonProgress // periodic time update
	ReasonWidget   // widget state discovered asynchronously
	ReasonWidgetStarted
	ReasonWidgetLoad
	ReasonWidgetVisibility
	ReasonWidgetClose
	ReasonNavigate
	ReasonPatch
	ReasonCleared // grace window elapsed
)

var reasonNames = [...]string{
	ReasonPlay:             "play",
	ReasonPause:            "pause",
	ReasonResume:           "resume",
	ReasonStop:             "stop",
	ReasonNext:             "next",
	ReasonPrevious:         "previous",
	ReasonAdvance:          "advance",
	ReasonEnded:            "ended",
	ReasonProgress:         "progress",
	ReasonWidget:           "widget",
	ReasonWidgetStarted:    "widget-started",
	ReasonWidgetLoad:       "widget-load",
	ReasonWidgetVisibility: "widget-visibility",
	ReasonWidgetClose:      "widget-close",
	ReasonNavigate:         "navigate",
	ReasonPatch:            "patch",
	ReasonCleared:          "cleared",
}

// String returns the reason name.
func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// TrackChanged reports whether r can change the current track.
func (r Reason) TrackChanged() bool {
	switch r {
	case ReasonPlay, ReasonNext, ReasonPrevious, ReasonAdvance, ReasonWidgetStarted:
		return true
	default:
		return false
	}
}

// Snapshot is a read-only copy of the coordinator state, taken when an
// operation completed.
type Snapshot struct {
	SessionID string
	Seq       uint64 // strictly increasing per coordinator
	Reason    Reason

	Backend  Backend
	Track    *playlist.Track // session track, kept for the grace window after it ends
	Playing  bool
	Elapsed  time.Duration
	Duration time.Duration

	Widget widget.Mirror

	HistoryLen int
	Cursor     int              // history cursor, -1 if nothing ever played
	Queue      []playlist.Track // visible queue
	QueueIndex int              // cursor position in Queue, -1 if outside
	Route      string
}
