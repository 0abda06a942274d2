package notify

import (
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedeck/internal/playback"
	"github.com/llehouerou/wavedeck/internal/playlist"
)

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []Notification
	closed []uint32
	nextID uint32
	err    error
}

func (f *fakeNotifier) Notify(n Notification) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, n)
	if n.ReplacesID != 0 {
		return n.ReplacesID, nil
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeNotifier) Close(id uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeNotifier) notifications() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.sent...)
}

func snap(reason playback.Reason, source, title, artist string) playback.Snapshot {
	t := playlist.NewTrack(source, title)
	t.Artist = artist
	t.Album = "Album"
	return playback.Snapshot{Reason: reason, Track: &t}
}

func TestWatcher_NotifiesOnTrackChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var bus playback.Bus
		n := &fakeNotifier{}
		w := Watch(&bus, n, zerolog.Nop())

		bus.Publish(snap(playback.ReasonPlay, "https://x.test/a.mp3", "A", "Artist"))
		bus.Publish(snap(playback.ReasonProgress, "https://x.test/a.mp3", "A", "Artist"))
		bus.Publish(snap(playback.ReasonPause, "https://x.test/a.mp3", "A", "Artist"))
		bus.Publish(snap(playback.ReasonNext, "https://x.test/b.mp3", "B", ""))
		synctest.Wait()

		sent := n.notifications()
		require.Len(t, sent, 2)
		assert.Equal(t, "A", sent[0].Title)
		assert.Equal(t, "Artist - Album", sent[0].Body)
		assert.Equal(t, uint32(0), sent[0].ReplacesID)
		assert.Equal(t, "B", sent[1].Title)
		assert.Equal(t, "Album", sent[1].Body)
		assert.Equal(t, uint32(1), sent[1].ReplacesID)

		require.NoError(t, w.Close())
		assert.Equal(t, []uint32{1}, n.closed)
		assert.Equal(t, 0, bus.Len())
	})
}

func TestWatcher_SameTrackNotRepeated(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var bus playback.Bus
		n := &fakeNotifier{}
		w := Watch(&bus, n, zerolog.Nop())
		defer w.Close()

		bus.Publish(snap(playback.ReasonPlay, "https://x.test/a.mp3", "A", ""))
		bus.Publish(snap(playback.ReasonPrevious, "https://x.test/a.mp3", "A", ""))
		bus.Publish(playback.Snapshot{Reason: playback.ReasonPlay})
		synctest.Wait()

		assert.Len(t, n.notifications(), 1)
	})
}

func TestWatcher_NotifyErrorIsTolerated(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var bus playback.Bus
		n := &fakeNotifier{err: errors.New("no server")}
		w := Watch(&bus, n, zerolog.Nop())

		bus.Publish(snap(playback.ReasonPlay, "https://x.test/a.mp3", "A", ""))
		synctest.Wait()

		require.NoError(t, w.Close())
		assert.Empty(t, n.closed)
	})
}

func TestNowPlaying_FallsBackToSource(t *testing.T) {
	s := snap(playback.ReasonPlay, "https://x.test/a.mp3", "", "")
	s.Track.Album = ""
	s.Track.Collection = "Collection"

	n := nowPlaying(s)
	assert.Equal(t, "https://x.test/a.mp3", n.Title)
	assert.Equal(t, "Collection", n.Body)
	assert.Equal(t, fallbackIcon, n.Icon)
	assert.Equal(t, UrgencyLow, n.Urgency)
}
