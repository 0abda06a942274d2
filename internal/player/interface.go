// internal/player/interface.go
package player

import "time"

// Interface defines the decode engine contract for dependency injection and testing.
type Interface interface {
	// Play tears down the current resource, opens source and starts playback.
	Play(source string) error
	// Stop releases the current resource immediately.
	Stop()
	Pause()
	Resume()
	Toggle()
	State() State
	TrackInfo() *TrackInfo
	Position() time.Duration
	Duration() time.Duration
	// SetVolume sets a linear level between 0 and 1.
	SetVolume(level float64)
	Volume() float64
	// OnFinished registers fn, called from a background goroutine when the
	// current resource ends. err is nil on a natural end.
	OnFinished(fn func(err error))
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
