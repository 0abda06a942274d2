//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

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

// Adapter connects the playback coordinator to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
}

// New creates and starts a new MPRIS adapter.
func New(ctl Controller) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer(Name, &rootAdapter{}, &playerAdapter{ctl: ctl}),
	}

	go func() {
		_ = a.server.Listen()
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Wavedeck", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	ctl Controller
}

func (p *playerAdapter) Next() error {
	return p.ctl.Next()
}

func (p *playerAdapter) Previous() error {
	return p.ctl.Previous()
}

func (p *playerAdapter) Pause() error {
	return p.ctl.Pause()
}

func (p *playerAdapter) PlayPause() error {
	return p.ctl.Toggle()
}

func (p *playerAdapter) Stop() error {
	return p.ctl.Stop()
}

func (p *playerAdapter) Play() error {
	return p.ctl.Resume()
}

// Samples are short previews; seeking is not offered.
func (p *playerAdapter) Seek(_ types.Microseconds) error {
	return nil
}

func (p *playerAdapter) SetPosition(_ string, _ types.Microseconds) error {
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(uri string) error {
	source := strings.TrimPrefix(uri, "file://")
	return p.ctl.PlaySingle(playlist.NewTrack(source, ""))
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.ctl.Snapshot()), nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	return metadata(p.ctl.Snapshot()), nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.ctl.Snapshot().Elapsed.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	s := p.ctl.Snapshot()
	return s.Cursor >= 0 && s.Cursor < s.HistoryLen-1, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.ctl.Snapshot().Cursor > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.ctl.Snapshot().HistoryLen > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func playbackStatus(s playback.Snapshot) types.PlaybackStatus {
	switch {
	case s.Playing:
		return types.PlaybackStatusPlaying
	case s.Backend != playback.BackendNone:
		return types.PlaybackStatusPaused
	default:
		return types.PlaybackStatusStopped
	}
}

func metadata(s playback.Snapshot) types.Metadata {
	track := s.Track
	if track == nil {
		return types.Metadata{}
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.Key)),
		Length:  types.Microseconds(s.Duration.Microseconds()),
		Title:   track.Title,
		Album:   track.Album,
	}
	if track.Artist != "" {
		meta.Artist = []string{track.Artist}
	}

	switch {
	case track.ArtworkURL != "":
		meta.ArtUrl = track.ArtworkURL
	case !isRemote(track.Source):
		if artPath := FindAlbumArt(track.Source); artPath != "" {
			meta.ArtUrl = "file://" + artPath
		}
	}

	return meta
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func formatTrackID(key string) string {
	h := fnv.New64a()
	h.Write([]byte(key))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
