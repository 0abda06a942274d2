package notify

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedeck/internal/playback"
)

const watchTimeout = 4000

// Source is what a Watcher subscribes to.
type Source interface {
	Subscribe() *playback.Subscription
	Unsubscribe(sub *playback.Subscription)
}

// Watcher shows a notification whenever a new track starts. Successive
// notifications replace each other.
type Watcher struct {
	src      Source
	notifier Notifier
	logger   zerolog.Logger

	sub     *playback.Subscription
	done    chan struct{}
	lastKey string
	lastID  uint32
}

// Watch subscribes to src and starts notifying.
func Watch(src Source, notifier Notifier, logger zerolog.Logger) *Watcher {
	w := &Watcher{
		src:      src,
		notifier: notifier,
		logger:   logger.With().Str("component", "notify").Logger(),
		sub:      src.Subscribe(),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case snap := <-w.sub.Changed:
			w.handle(snap)
		case <-w.sub.Done:
			return
		}
	}
}

func (w *Watcher) handle(snap playback.Snapshot) {
	if !snap.Reason.TrackChanged() || snap.Track == nil {
		return
	}
	if snap.Track.Key == w.lastKey {
		return
	}
	w.lastKey = snap.Track.Key

	n := nowPlaying(snap)
	n.ReplacesID = w.lastID
	id, err := w.notifier.Notify(n)
	if err != nil {
		w.logger.Debug().Err(err).Msg("notify")
		return
	}
	w.lastID = id
}

// nowPlaying builds the notification for the snapshot track.
func nowPlaying(snap playback.Snapshot) Notification {
	t := *snap.Track
	title := t.Title
	if title == "" {
		title = t.Source
	}
	var body []string
	if t.Artist != "" {
		body = append(body, t.Artist)
	}
	if album := firstNonEmpty(t.Album, t.Collection); album != "" {
		body = append(body, album)
	}
	return Notification{
		Title:   title,
		Body:    strings.Join(body, " - "),
		Icon:    Icon(t),
		Timeout: watchTimeout,
		Urgency: UrgencyLow,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Close unsubscribes, waits for the watcher to stop and closes the last
// notification.
func (w *Watcher) Close() error {
	w.src.Unsubscribe(w.sub)
	<-w.done
	if w.lastID != 0 {
		return w.notifier.Close(w.lastID)
	}
	return nil
}
