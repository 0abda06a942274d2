//go:build !linux

package mpris

import (
	"github.com/llehouerou/wavedeck/internal/playback"
	"github.com/llehouerou/wavedeck/internal/playlist"
)

// Name is the bus name suffix wavedeck registers under.
const Name = "wavedeck"

// Controller is the part of the playback coordinator exposed over MPRIS.
type Controller interface {
	PlaySingle(track playlist.Track) error
	Next() error
	Previous() error
	Pause() error
	Resume() error
	Toggle() error
	Stop() error
	Snapshot() playback.Snapshot
}

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ Controller) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
