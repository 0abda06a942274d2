// Package sample plays short catalog samples through the decode engine.
//
// A Backend owns a single engine. Load and Stop return immediately; outcomes
// are reported through the callbacks, which always run on the backend's own
// goroutines with no backend lock held.
package sample

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedeck/internal/errmsg"
	"github.com/llehouerou/wavedeck/internal/player"
	"github.com/llehouerou/wavedeck/internal/playlist"
)

// EndReason tells why a sample stopped on its own.
type EndReason int

const (
	EndFinished EndReason = iota
	EndError
)

func (r EndReason) String() string {
	if r == EndError {
		return "error"
	}
	return "finished"
}

// Config holds the backend timings.
type Config struct {
	TickInterval time.Duration // progress cadence
	FadeOut      time.Duration // stop ramp length
	FadeSteps    int           // stop ramp resolution
}

// DefaultConfig returns the default backend timings.
func DefaultConfig() Config {
	return Config{
		TickInterval: 250 * time.Millisecond,
		FadeOut:      300 * time.Millisecond,
		FadeSteps:    12,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = d.TickInterval
	}
	if c.FadeOut <= 0 {
		c.FadeOut = d.FadeOut
	}
	if c.FadeSteps <= 0 {
		c.FadeSteps = d.FadeSteps
	}
	return c
}

// Backend is the sample playback backend.
type Backend struct {
	mu     sync.Mutex
	engine player.Interface
	cfg    Config
	logger zerolog.Logger

	loadMu sync.Mutex // serializes engine.Play calls

	loadID   uint64 // identifies the current load
	engineID uint64 // load whose source the engine holds
	track    *playlist.Track
	playing  bool // expected state
	stopping bool
	pending  *playlist.Track // load deferred by the stop ramp

	cancelTick context.CancelFunc

	onProgress func(elapsed, duration time.Duration)
	onEnded    func(track playlist.Track, reason EndReason)
	onStarted  func(track playlist.Track)
}

// New creates a backend driving engine.
func New(engine player.Interface, cfg Config, logger zerolog.Logger) *Backend {
	b := &Backend{
		engine: engine,
		cfg:    cfg.withDefaults(),
		logger: logger.With().Str("component", "sample").Logger(),
	}
	engine.OnFinished(b.handleFinished)
	return b
}

// OnProgress registers the time update callback, called every tick while
// a sample is playing.
func (b *Backend) OnProgress(fn func(elapsed, duration time.Duration)) {
	b.mu.Lock()
	b.onProgress = fn
	b.mu.Unlock()
}

// OnEnded registers the callback for natural completion and play errors.
func (b *Backend) OnEnded(fn func(track playlist.Track, reason EndReason)) {
	b.mu.Lock()
	b.onEnded = fn
	b.mu.Unlock()
}

// OnStarted registers the callback for loads that start after a stop ramp.
// Loads applied immediately by Load do not fire it.
func (b *Backend) OnStarted(fn func(track playlist.Track)) {
	b.mu.Lock()
	b.onStarted = fn
	b.mu.Unlock()
}

// Load plays track, replacing whatever was loaded. During a stop ramp the
// load is deferred until the ramp completes; the latest deferred load wins.
// It reports whether playback started now.
func (b *Backend) Load(track playlist.Track) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopping {
		t := track
		b.pending = &t
		b.logger.Debug().Str("source", track.Source).Msg("load deferred until stop ramp completes")
		return false
	}
	b.startLocked(track)
	return true
}

// startLocked begins an optimistic load. Caller holds b.mu.
func (b *Backend) startLocked(track playlist.Track) {
	b.loadID++
	id := b.loadID
	t := track
	b.track = &t
	b.playing = true
	b.stopTickLocked()

	ctx, cancel := context.WithCancel(context.Background())
	b.cancelTick = cancel

	go b.play(ctx, id, track.Source)
}

// play hands source to the engine, then drives progress until ctx is done.
func (b *Backend) play(ctx context.Context, id uint64, source string) {
	b.loadMu.Lock()
	if !b.isCurrent(id) {
		b.loadMu.Unlock()
		return
	}
	err := b.engine.Play(source)
	if err == nil && !b.claim(id) {
		// Superseded while the source was opening.
		b.engine.Stop()
		b.loadMu.Unlock()
		return
	}
	b.loadMu.Unlock()

	if err != nil {
		b.logger.Warn().Err(errmsg.Wrap(errmsg.OpSamplePlay, err)).Str("source", source).Msg("sample failed")
		b.end(id, EndError)
		return
	}

	b.mu.Lock()
	paused := b.loadID == id && !b.playing
	b.mu.Unlock()
	if paused {
		b.engine.Pause()
	}

	b.tick(ctx, id)
}

func (b *Backend) isCurrent(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadID == id && !b.stopping
}

// claim records that the engine now holds the source of load id, unless
// the load was superseded while the source was opening.
func (b *Backend) claim(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadID != id || b.stopping {
		return false
	}
	b.engineID = id
	return true
}

// tick pushes progress for load id until ctx is cancelled.
func (b *Backend) tick(ctx context.Context, id uint64) {
	ticker := time.NewTicker(b.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		b.mu.Lock()
		if b.loadID != id || b.stopping || !b.playing {
			b.mu.Unlock()
			continue
		}
		fn := b.onProgress
		b.mu.Unlock()

		if fn != nil {
			fn(b.engine.Position(), b.engine.Duration())
		}
	}
}

// handleFinished is the engine's end-of-resource callback. It ends the
// load the engine was playing, which is not the current one while a newer
// source is still opening.
func (b *Backend) handleFinished(err error) {
	reason := EndFinished
	if err != nil {
		reason = EndError
		b.logger.Warn().Err(errmsg.Wrap(errmsg.OpSamplePlay, err)).Msg("sample stream error")
	}
	b.mu.Lock()
	id := b.engineID
	b.mu.Unlock()
	b.end(id, reason)
}

// end reports the end of load id, unless it was superseded or is being
// faded out.
func (b *Backend) end(id uint64, reason EndReason) {
	b.mu.Lock()
	if b.loadID != id || b.stopping || b.track == nil {
		b.mu.Unlock()
		return
	}
	track := *b.track
	b.playing = false
	b.stopTickLocked()
	fn := b.onEnded
	b.mu.Unlock()

	b.logger.Debug().Str("source", track.Source).Stringer("reason", reason).Msg("sample ended")
	if fn != nil {
		fn(track, reason)
	}
}

// Pause pauses the sample without resetting its position. During a stop
// ramp it cancels the deferred load instead.
func (b *Backend) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopping {
		if b.pending != nil {
			b.logger.Debug().Str("source", b.pending.Source).Msg("deferred load cancelled")
			b.pending = nil
		}
		return
	}
	if b.track == nil || !b.playing {
		return
	}
	b.playing = false
	b.engine.Pause()
}

// Resume resumes a paused sample. It reports whether playback resumed.
func (b *Backend) Resume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopping || b.track == nil || b.playing {
		return false
	}
	if b.engine.State() == player.Stopped {
		// Ended or released: nothing to resume.
		return false
	}
	b.playing = true
	b.engine.Resume()
	return true
}

// Stop fades the sample out and releases it. The ramp runs on its own
// goroutine and owns the engine until it completes. Stopping again during
// the ramp drops the deferred load.
func (b *Backend) Stop() {
	b.mu.Lock()
	if b.stopping {
		b.pending = nil
		b.mu.Unlock()
		return
	}
	if b.track == nil {
		b.pending = nil
		b.mu.Unlock()
		return
	}
	b.playing = false
	b.stopTickLocked()
	if b.engine.State() == player.Stopped {
		// Nothing audible: skip the ramp. A load still opening is now stale.
		b.loadID++
		b.track = nil
		b.mu.Unlock()
		return
	}
	b.stopping = true
	b.mu.Unlock()

	go b.ramp()
}

// ramp lowers the volume linearly to zero, releases the resource, restores
// the volume and runs the deferred load, in that order.
func (b *Backend) ramp() {
	from := b.engine.Volume()
	steps := b.cfg.FadeSteps
	interval := b.cfg.FadeOut / time.Duration(steps)

	for i := 1; i <= steps; i++ {
		time.Sleep(interval)
		b.engine.SetVolume(from * float64(steps-i) / float64(steps))
	}

	b.loadMu.Lock()
	b.engine.Stop()
	b.loadMu.Unlock()
	b.engine.SetVolume(from)

	b.mu.Lock()
	b.stopping = false
	b.track = nil
	b.loadID++
	pending := b.pending
	b.pending = nil
	var started func(playlist.Track)
	if pending != nil {
		b.startLocked(*pending)
		started = b.onStarted
	}
	b.mu.Unlock()

	b.logger.Debug().Bool("deferred_load", pending != nil).Msg("stop ramp completed")
	if pending != nil && started != nil {
		started(*pending)
	}
}

// Release tears the resource down immediately, without a ramp.
func (b *Backend) Release() {
	b.mu.Lock()
	if b.stopping {
		b.mu.Unlock()
		return
	}
	b.loadID++
	b.track = nil
	b.playing = false
	b.pending = nil
	b.stopTickLocked()
	b.mu.Unlock()

	b.engine.Stop()
	b.logger.Debug().Msg("sample resource released")
}

func (b *Backend) stopTickLocked() {
	if b.cancelTick != nil {
		b.cancelTick()
		b.cancelTick = nil
	}
}

// Playing reports the expected playing state. A load deferred by a stop
// ramp counts as playing.
func (b *Backend) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopping {
		return b.pending != nil
	}
	return b.playing
}

func (b *Backend) isStopping() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopping
}

func (b *Backend) loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.track != nil
}

// Track returns the loaded track, or nil.
func (b *Backend) Track() *playlist.Track {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.track == nil {
		return nil
	}
	t := *b.track
	return &t
}

// Elapsed returns the position in the loaded sample.
func (b *Backend) Elapsed() time.Duration {
	return b.engine.Position()
}

// Duration returns the length of the loaded sample.
func (b *Backend) Duration() time.Duration {
	return b.engine.Duration()
}
