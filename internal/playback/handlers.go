package playback

import (
	"time"

	"github.com/llehouerou/wavedeck/internal/playlist"
	"github.com/llehouerou/wavedeck/internal/sample"
	"github.com/llehouerou/wavedeck/internal/widget"
)

// Backend callbacks. Each runs on a backend goroutine with no backend lock
// held, so taking mu here keeps the coordinator-before-backend order.

func (c *Coordinator) onSampleProgress(elapsed, duration time.Duration) {
	c.mu.Lock()
	if c.closed || c.session.Backend != BackendSample || !c.session.Playing {
		c.mu.Unlock()
		return
	}
	c.session.Elapsed = elapsed
	c.session.Duration = duration
	c.unlockAndPublish(ReasonProgress)
}

// onSampleEnded handles natural completion and play errors alike: advance
// to the next history entry, or end the session.
func (c *Coordinator) onSampleEnded(track playlist.Track, reason sample.EndReason) {
	c.mu.Lock()
	if c.closed || c.session.Backend != BackendSample || c.session.Track == nil ||
		c.session.Track.Source != track.Source {
		c.mu.Unlock()
		return
	}

	c.logger.Debug().Str("source", track.Source).Stringer("reason", reason).Msg("sample ended")
	if next := c.history.Next(); next != nil {
		c.syncQueueLocked()
		c.playSampleLocked(*next)
		c.unlockAndPublish(ReasonAdvance)
		return
	}
	c.endSessionLocked()
	c.unlockAndPublish(ReasonEnded)
}

// onSampleStarted runs when a load deferred by a stop ramp begins. A load
// the session no longer belongs to is released on the spot.
func (c *Coordinator) onSampleStarted(track playlist.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.session.Backend != BackendSample {
		if t := c.sample.Track(); t != nil && t.Key == track.Key {
			c.sample.Release()
			c.logger.Debug().Str("source", track.Source).Msg("orphaned deferred sample released")
		}
		return
	}
	if paused := c.exclusion.Started(BackendSample.member()); len(paused) > 0 {
		c.logger.Debug().Str("source", track.Source).Strs("paused", paused).Msg("deferred sample started")
	}
}

// onWidgetChange mirrors asynchronously discovered widget state. A
// transition to playing is left to onWidgetStarted, which always follows.
func (c *Coordinator) onWidgetChange(m widget.Mirror) {
	c.mu.Lock()
	if c.closed || m.Playing {
		c.mu.Unlock()
		return
	}
	if c.session.Backend == BackendWidget {
		c.session.Playing = false
		c.session.LastActivity = time.Now()
	}
	c.unlockAndPublish(ReasonWidget)
}

// onWidgetStarted applies the exclusion rule to a play the widget reported
// on its own, e.g. from its native controls. The report is dropped when the
// widget was paused or reloaded before mu was acquired.
func (c *Coordinator) onWidgetStarted(m widget.Mirror) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if cur := c.widget.Mirror(); !cur.Playing || cur.Generation != m.Generation {
		c.mu.Unlock()
		c.logger.Debug().Uint64("generation", m.Generation).Msg("stale widget start ignored")
		return
	}
	c.startedLocked(BackendWidget)
	if c.session.Backend != BackendWidget {
		c.session.Backend = BackendWidget
		c.session.Track = m.Track
		c.session.Elapsed, c.session.Duration = 0, 0
	}
	c.logger.Debug().Str("feed", m.Feed).Uint64("generation", m.Generation).Msg("widget playing")
	c.unlockAndPublish(ReasonWidgetStarted)
}
