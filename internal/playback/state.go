package playback

import (
	"time"

	"github.com/llehouerou/wavedeck/internal/playlist"
)

// Backend identifies which engine owns the session.
type Backend int

const (
	BackendNone Backend = iota
	BackendSample
	BackendWidget
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendNone:
		return "none"
	case BackendSample:
		return "sample"
	case BackendWidget:
		return "widget"
	default:
		return "unknown"
	}
}

// member returns the exclusion member name of the backend.
func (b Backend) member() string {
	return b.String()
}

// Session is what is playing now. Track survives the end of playback for
// the grace window so idle views can still show what just played.
type Session struct {
	Backend      Backend
	Track        *playlist.Track
	Elapsed      time.Duration
	Duration     time.Duration
	Playing      bool
	LastActivity time.Time
}

func (s Session) clone() Session {
	if s.Track != nil {
		t := *s.Track
		s.Track = &t
	}
	return s
}

// Active reports whether a backend owns the session.
func (s Session) Active() bool {
	return s.Backend != BackendNone
}
