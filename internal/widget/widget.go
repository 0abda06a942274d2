// Package widget controls the externally hosted mix player.
//
// The external player cannot be trusted to report its state, so the backend
// keeps an expected-state guess, updated on local commands, and reconciles it
// against the player's authoritative paused flag on every poll tick. Each
// mounted widget session is a generation; poll ticks and events from an older
// generation stop their loop without touching anything.
package widget

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedeck/internal/errmsg"
	"github.com/llehouerou/wavedeck/internal/playlist"
)

// Config holds the widget timings.
type Config struct {
	PollInterval  time.Duration
	ReadyAttempts int
	ReadyDelay    time.Duration
	CallTimeout   time.Duration // bound on a single host or handle call
}

// DefaultConfig returns the default widget timings.
func DefaultConfig() Config {
	return Config{
		PollInterval:  500 * time.Millisecond,
		ReadyAttempts: 10,
		ReadyDelay:    300 * time.Millisecond,
		CallTimeout:   2 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.ReadyAttempts <= 0 {
		c.ReadyAttempts = d.ReadyAttempts
	}
	if c.ReadyDelay <= 0 {
		c.ReadyDelay = d.ReadyDelay
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = d.CallTimeout
	}
	return c
}

// Mirror is the eventually consistent view of the widget.
type Mirror struct {
	Feed            string
	Visible         bool
	Manual          bool
	Ready           bool
	Playing         bool
	Generation      uint64
	Track           *playlist.Track
	LoadedAt        time.Time
	PlayedSinceLoad bool
}

// Loaded reports whether a widget session exists.
func (m Mirror) Loaded() bool {
	return m.Feed != ""
}

func (m Mirror) clone() Mirror {
	if m.Track != nil {
		t := *m.Track
		m.Track = &t
	}
	return m
}

// LoadOptions qualify a Load.
type LoadOptions struct {
	Manual   bool            // explicit user action, survives navigation
	Track    *playlist.Track // descriptor of the mix
	AutoPlay bool            // start playing once ready
}

// Backend is the widget playback backend.
type Backend struct {
	mu     sync.Mutex
	host   Host
	cfg    Config
	logger zerolog.Logger

	hostMu sync.Mutex // serializes Mount and Unmount

	generation uint64
	mirror     Mirror
	handle     Handle
	wantPlay   bool // play as soon as the handshake completes
	failed     bool // mount or handshake of the current generation failed
	cancel     context.CancelFunc

	onChange  func(Mirror)
	onStarted func(Mirror)
}

// New creates a widget backend on host.
func New(host Host, cfg Config, logger zerolog.Logger) *Backend {
	return &Backend{
		host:   host,
		cfg:    cfg.withDefaults(),
		logger: logger.With().Str("component", "widget").Logger(),
	}
}

// OnChange registers the callback for state discovered asynchronously:
// handshake results, poll mismatches and events.
func (b *Backend) OnChange(fn func(Mirror)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// OnStarted registers the callback for play transitions the backend
// discovered on its own (poll or event). It runs after OnChange.
func (b *Backend) OnStarted(fn func(Mirror)) {
	b.mu.Lock()
	b.onStarted = fn
	b.mu.Unlock()
}

// Load mounts feed. Loading the feed that is already mounted only shows it
// (upgrading it to manual when asked); otherwise the previous session is
// torn down and a new one is mounted and handshaken in the background.
// It reports whether the surface was re-pointed.
func (b *Backend) Load(feed string, opts LoadOptions) (bool, error) {
	feed = NormalizeFeed(feed)
	if feed == "" {
		return false, ErrInvalidFeed
	}

	b.mu.Lock()
	if b.mirror.Feed == feed && !b.failed {
		b.mirror.Visible = true
		b.mirror.Manual = b.mirror.Manual || opts.Manual
		if opts.Track != nil {
			t := *opts.Track
			b.mirror.Track = &t
		}
		b.mu.Unlock()
		if opts.AutoPlay {
			b.Play()
		}
		return false, nil
	}

	b.generation++
	gen := b.generation
	b.stopLoopLocked()
	old := b.handle
	b.handle = nil
	b.wantPlay = opts.AutoPlay
	b.failed = false

	var track *playlist.Track
	if opts.Track != nil {
		t := *opts.Track
		track = &t
	}
	b.mirror = Mirror{
		Feed:       feed,
		Visible:    true,
		Manual:     opts.Manual,
		Generation: gen,
		Track:      track,
		LoadedAt:   time.Now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.mu.Unlock()

	b.logger.Debug().Str("feed", feed).Uint64("generation", gen).Bool("manual", opts.Manual).Msg("loading widget")
	go b.session(ctx, gen, old, feed)
	return true, nil
}

// session mounts feed, runs the ready handshake and polls until superseded.
func (b *Backend) session(ctx context.Context, gen uint64, old Handle, feed string) {
	h, ok := b.mount(ctx, gen, old, feed)
	if !ok {
		return
	}
	if !b.handshake(ctx, gen, h) {
		return
	}
	b.poll(ctx, gen, h)
}

func (b *Backend) mount(ctx context.Context, gen uint64, old Handle, feed string) (Handle, bool) {
	b.hostMu.Lock()
	defer b.hostMu.Unlock()

	if old != nil {
		if err := b.host.Unmount(old); err != nil {
			b.logger.Debug().Err(err).Msg("unmount previous widget")
		}
	}
	if !b.isGeneration(gen) {
		return nil, false
	}

	mctx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
	h, err := b.host.Mount(mctx, feed)
	cancel()
	if err != nil {
		b.logger.Warn().Err(errmsg.Wrap(errmsg.OpWidgetLoad, err)).Str("feed", feed).Msg("widget mount failed")
		b.degrade(gen)
		return nil, false
	}

	b.mu.Lock()
	if b.generation != gen {
		b.mu.Unlock()
		_ = b.host.Unmount(h)
		return nil, false
	}
	b.handle = h
	b.mu.Unlock()
	return h, true
}

// handshake waits for the widget to report ready, a bounded number of times.
func (b *Backend) handshake(ctx context.Context, gen uint64, h Handle) bool {
	for attempt := 1; attempt <= b.cfg.ReadyAttempts; attempt++ {
		rctx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
		ready, err := h.Ready(rctx)
		cancel()
		if err != nil {
			b.logger.Debug().Err(err).Int("attempt", attempt).Msg("widget not ready")
		}
		if ready {
			return b.ready(ctx, gen, h)
		}
		if attempt == b.cfg.ReadyAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(b.cfg.ReadyDelay):
		}
	}

	b.logger.Warn().
		Err(errmsg.Wrap(errmsg.OpWidgetReady, context.DeadlineExceeded)).
		Int("attempts", b.cfg.ReadyAttempts).
		Msg("widget never became ready")
	b.degrade(gen)
	return false
}

// ready marks the session ready and applies a pending play.
func (b *Backend) ready(ctx context.Context, gen uint64, h Handle) bool {
	b.mu.Lock()
	if !b.activeLocked(gen, h) {
		b.mu.Unlock()
		return false
	}
	b.mirror.Ready = true
	play := b.wantPlay
	b.wantPlay = false
	if play {
		b.mirror.Playing = true
		b.mirror.PlayedSinceLoad = true
	}
	m := b.mirror.clone()
	change, started := b.onChange, b.onStarted
	b.mu.Unlock()

	if play {
		pctx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
		if err := h.Play(pctx); err != nil {
			b.logger.Warn().Err(errmsg.Wrap(errmsg.OpWidgetPlay, err)).Msg("widget autoplay failed")
		}
		cancel()
	}

	b.logger.Debug().Uint64("generation", gen).Bool("autoplay", play).Msg("widget ready")
	if change != nil {
		change(m)
	}
	if play && started != nil {
		started(m)
	}
	return true
}

// degrade leaves generation gen loaded but unusable: nothing is playing.
func (b *Backend) degrade(gen uint64) {
	b.mu.Lock()
	if b.generation != gen {
		b.mu.Unlock()
		return
	}
	b.failed = true
	b.mirror.Ready = false
	b.mirror.Playing = false
	b.wantPlay = false
	m := b.mirror.clone()
	change := b.onChange
	b.mu.Unlock()

	if change != nil {
		change(m)
	}
}

// poll reconciles the expected state with the widget until ctx is cancelled
// or the session is superseded.
func (b *Backend) poll(ctx context.Context, gen uint64, h Handle) {
	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()
	events := h.Events()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !b.observe(gen, h, ev.Kind == EventPlay) {
				return
			}
		case <-ticker.C:
			if !b.isActive(gen, h) {
				return
			}
			qctx, cancel := context.WithTimeout(ctx, b.cfg.CallTimeout)
			paused, err := h.Paused(qctx)
			cancel()
			if err != nil {
				b.logger.Debug().Err(errmsg.Wrap(errmsg.OpWidgetPoll, err)).Msg("poll failed")
				continue
			}
			if !b.observe(gen, h, !paused) {
				return
			}
		}
	}
}

// observe applies an observed playing state. It returns false when the
// observing session is stale, in which case nothing changed.
func (b *Backend) observe(gen uint64, h Handle, playing bool) bool {
	b.mu.Lock()
	if !b.activeLocked(gen, h) {
		b.mu.Unlock()
		return false
	}
	if b.mirror.Playing == playing {
		b.mu.Unlock()
		return true
	}
	b.mirror.Playing = playing
	if playing {
		b.mirror.PlayedSinceLoad = true
	}
	m := b.mirror.clone()
	change, started := b.onChange, b.onStarted
	b.mu.Unlock()

	b.logger.Debug().Bool("playing", playing).Uint64("generation", gen).Msg("widget state reconciled")
	if change != nil {
		change(m)
	}
	if playing && started != nil {
		started(m)
	}
	return true
}

// Play starts the mix. Before the handshake completes the play is applied
// once the widget is ready. It reports whether a widget is loaded.
func (b *Backend) Play() bool {
	b.mu.Lock()
	if !b.mirror.Loaded() {
		b.mu.Unlock()
		return false
	}
	b.mirror.Visible = true
	h := b.handle
	if h == nil || !b.mirror.Ready {
		b.wantPlay = true
		b.mu.Unlock()
		return true
	}
	b.mirror.Playing = true
	b.mirror.PlayedSinceLoad = true
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.CallTimeout)
	defer cancel()
	if err := h.Play(ctx); err != nil {
		b.logger.Warn().Err(errmsg.Wrap(errmsg.OpWidgetPlay, err)).Msg("widget play failed")
	}
	return true
}

// Pause pauses the mix, if any.
func (b *Backend) Pause() {
	b.mu.Lock()
	b.wantPlay = false
	h := b.handle
	if h == nil || !b.mirror.Playing {
		b.mu.Unlock()
		return
	}
	b.mirror.Playing = false
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.CallTimeout)
	defer cancel()
	if err := h.Pause(ctx); err != nil {
		b.logger.Warn().Err(errmsg.Wrap(errmsg.OpWidgetPause, err)).Msg("widget pause failed")
	}
}

// Show makes the surface visible. It never reloads or plays.
func (b *Backend) Show() {
	b.mu.Lock()
	if b.mirror.Loaded() {
		b.mirror.Visible = true
	}
	b.mu.Unlock()
}

// Hide hides the surface. It never pauses.
func (b *Backend) Hide() {
	b.mu.Lock()
	b.mirror.Visible = false
	b.mu.Unlock()
}

// Close tears the widget session down.
func (b *Backend) Close() {
	b.mu.Lock()
	b.closeLocked()
	b.mu.Unlock()
}

func (b *Backend) closeLocked() {
	if !b.mirror.Loaded() {
		return
	}
	b.generation++
	b.stopLoopLocked()
	old := b.handle
	b.handle = nil
	b.wantPlay = false
	b.failed = false
	b.mirror = Mirror{Generation: b.generation}

	if old != nil {
		go func() {
			b.hostMu.Lock()
			defer b.hostMu.Unlock()
			if err := b.host.Unmount(old); err != nil {
				b.logger.Debug().Err(errmsg.Wrap(errmsg.OpWidgetClose, err)).Msg("unmount widget")
			}
		}()
	}
	b.logger.Debug().Msg("widget closed")
}

// Navigated tears down an auto-loaded widget that never played since it was
// loaded. Manual widgets persist. It reports whether the widget was closed.
func (b *Backend) Navigated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mirror.Loaded() || b.mirror.Manual || b.mirror.PlayedSinceLoad {
		return false
	}
	b.closeLocked()
	return true
}

// Mirror returns a copy of the widget state.
func (b *Backend) Mirror() Mirror {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mirror.clone()
}

// Playing reports the expected playing state.
func (b *Backend) Playing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mirror.Playing
}

func (b *Backend) stopLoopLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *Backend) isGeneration(gen uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation == gen
}

func (b *Backend) isActive(gen uint64, h Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.activeLocked(gen, h)
}

func (b *Backend) activeLocked(gen uint64, h Handle) bool {
	return b.generation == gen && b.handle == h
}
