// Package playback is the session-wide playback coordinator.
//
// A Coordinator owns the play history, the visible queue and the current
// session, and drives the sample and widget backends. Views never hold
// playback state; they send commands and subscribe to snapshots.
//
// Locking: every state change happens under Coordinator.mu. Backends are
// called with mu held (coordinator before backend), and call back only from
// their own goroutines with no backend lock held. Snapshots are published
// after mu is released, in the order the operations completed.
package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/llehouerou/wavedeck/internal/analysis"
	"github.com/llehouerou/wavedeck/internal/enrich"
	"github.com/llehouerou/wavedeck/internal/exclusion"
	"github.com/llehouerou/wavedeck/internal/playlist"
	"github.com/llehouerou/wavedeck/internal/sample"
	"github.com/llehouerou/wavedeck/internal/widget"
)

var (
	ErrClosed       = errors.New("playback coordinator closed")
	ErrEmptyList    = errors.New("empty track list")
	ErrInvalidIndex = errors.New("start index out of range")
)

// Config holds the coordinator timings.
type Config struct {
	GraceWindow time.Duration // how long the last track outlives the session
	IdleRelease time.Duration // inactivity before the sample resource is released
}

// DefaultConfig returns the default coordinator timings.
func DefaultConfig() Config {
	return Config{
		GraceWindow: 4 * time.Second,
		IdleRelease: 30 * time.Second,
	}
}

// Deps are the collaborators of a coordinator. Sample and Widget are
// required.
type Deps struct {
	Sample    *sample.Backend
	Widget    *widget.Backend
	Exclusion *exclusion.Controller // created when nil
	Enrich    *enrich.Pipeline      // optional
	Analyzer  *analysis.Analyzer    // optional
	Config    Config
	Logger    zerolog.Logger
}

// Coordinator is the singleton playback context.
type Coordinator struct {
	mu    sync.Mutex
	pubMu sync.Mutex // orders publishes; acquired before mu is released

	id     string
	cfg    Config
	logger zerolog.Logger

	sample    *sample.Backend
	widget    *widget.Backend
	exclusion *exclusion.Controller
	enrich    *enrich.Pipeline
	analyzer  *analysis.Analyzer

	history *playlist.History
	queue   *playlist.Queue
	session Session
	route   string
	patched map[string]bool // releases Patch has been given

	timerGen uint64 // invalidates pending grace and idle timers
	grace    *time.Timer
	idle     *time.Timer

	bus    Bus
	seq    uint64
	closed bool
}

// New creates a coordinator and wires the backends' callbacks to it.
func New(deps Deps) *Coordinator {
	d := DefaultConfig()
	cfg := deps.Config
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = d.GraceWindow
	}
	if cfg.IdleRelease <= 0 {
		cfg.IdleRelease = d.IdleRelease
	}

	id := uuid.NewString()
	logger := deps.Logger.With().Str("component", "playback").Str("session", id).Logger()

	ex := deps.Exclusion
	if ex == nil {
		ex = exclusion.New(deps.Logger)
	}

	c := &Coordinator{
		id:        id,
		cfg:       cfg,
		logger:    logger,
		sample:    deps.Sample,
		widget:    deps.Widget,
		exclusion: ex,
		enrich:    deps.Enrich,
		analyzer:  deps.Analyzer,
		history:   playlist.NewHistory(),
		queue:     playlist.NewQueue(),
		patched:   make(map[string]bool),
	}

	ex.Register(BackendSample.member(), deps.Sample)
	ex.Register(BackendWidget.member(), deps.Widget)

	deps.Sample.OnProgress(c.onSampleProgress)
	deps.Sample.OnEnded(c.onSampleEnded)
	deps.Sample.OnStarted(c.onSampleStarted)
	deps.Widget.OnChange(c.onWidgetChange)
	deps.Widget.OnStarted(c.onWidgetStarted)
	if deps.Enrich != nil {
		deps.Enrich.SetPatcher(enrich.PatcherFunc(c.Patch))
	}

	logger.Info().Msg("playback coordinator created")
	return c
}

// ID returns the session identifier.
func (c *Coordinator) ID() string {
	return c.id
}

// Subscribe registers a snapshot subscriber.
func (c *Coordinator) Subscribe() *Subscription {
	sub := c.bus.Subscribe()
	c.logger.Trace().Int("subscribers", c.bus.Len()).Msg("subscribed")
	return sub
}

// Unsubscribe removes a subscriber and closes its subscription.
func (c *Coordinator) Unsubscribe(sub *Subscription) {
	c.bus.Unsubscribe(sub)
	c.logger.Trace().Int("subscribers", c.bus.Len()).Msg("unsubscribed")
}

// PlaySingle makes track the whole visible queue and plays it.
func (c *Coordinator) PlaySingle(track playlist.Track) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	track = c.withCachedTitles([]playlist.Track{track})[0]
	offset := c.history.Append(track)
	c.queue.Replace(offset, track)
	entry := c.history.MoveTo(offset)
	c.playSampleLocked(*entry)
	c.unlockAndPublish(ReasonPlay)
	return nil
}

// PlayList appends tracks to the history and plays the one at start.
// The list also needs enrichment when all its tracks share a release.
func (c *Coordinator) PlayList(tracks []playlist.Track, start int) error {
	if len(tracks) == 0 {
		return ErrEmptyList
	}
	if start < 0 || start >= len(tracks) {
		return ErrInvalidIndex
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	played := c.withCachedTitles(tracks)
	offset := c.history.Append(played...)
	c.queue.Replace(offset, played...)
	entry := c.history.MoveTo(offset + start)
	c.playSampleLocked(*entry)
	c.unlockAndPublish(ReasonPlay)

	c.requestEnrichment(tracks)
	return nil
}

// Enrich asks for the authoritative titles of a release's tracklist, as
// shown on a product page. Whatever the outcome, playback is untouched.
func (c *Coordinator) Enrich(releaseID string, tracks []playlist.Track) {
	if c.enrich == nil {
		return
	}
	c.enrich.Request(releaseID, tracks)
}

// Enriched returns the merged tracklist of releaseID already resolved this
// session, or nil. It never fetches.
func (c *Coordinator) Enriched(releaseID string) []playlist.Track {
	if c.enrich == nil || releaseID == "" {
		return nil
	}
	merged, _ := c.enrich.Cached(releaseID)
	return merged
}

// withCachedTitles returns tracks with the display fields of already
// resolved releases applied by key. It never fetches.
func (c *Coordinator) withCachedTitles(tracks []playlist.Track) []playlist.Track {
	out := append([]playlist.Track(nil), tracks...)
	if c.enrich == nil {
		return out
	}
	byRelease := make(map[string]map[string]playlist.Track)
	for i := range out {
		id := out[i].ReleaseID
		if id == "" {
			continue
		}
		byKey, seen := byRelease[id]
		if !seen {
			if merged, ok := c.enrich.Cached(id); ok {
				byKey = playlist.IndexByKey(merged)
			}
			byRelease[id] = byKey
		}
		playlist.PatchOne(&out[i], byKey)
	}
	return out
}

// requestEnrichment enriches a played list that is a single release.
// Called without mu: a cached result is patched synchronously.
func (c *Coordinator) requestEnrichment(tracks []playlist.Track) {
	if c.enrich == nil {
		return
	}
	ids := lo.Uniq(lo.Map(tracks, func(t playlist.Track, _ int) string { return t.ReleaseID }))
	if len(ids) != 1 || ids[0] == "" {
		return
	}
	c.enrich.Request(ids[0], tracks)
}

// Next replays from the next history entry. Without one it does nothing.
func (c *Coordinator) Next() error {
	return c.step(ReasonNext, c.history.Next)
}

// Previous replays from the previous history entry. Without one it does
// nothing.
func (c *Coordinator) Previous() error {
	return c.step(ReasonPrevious, c.history.Previous)
}

func (c *Coordinator) step(reason Reason, move func() *playlist.Track) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	entry := move()
	if entry == nil {
		c.mu.Unlock()
		return nil
	}
	c.syncQueueLocked()
	c.playSampleLocked(*entry)
	c.unlockAndPublish(reason)
	return nil
}

// Pause pauses whichever backend owns the session.
func (c *Coordinator) Pause() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.session.Playing {
		c.mu.Unlock()
		return nil
	}
	switch c.session.Backend {
	case BackendSample:
		c.sample.Pause()
	case BackendWidget:
		c.widget.Pause()
	}
	c.session.Playing = false
	c.session.LastActivity = time.Now()
	c.unlockAndPublish(ReasonPause)
	return nil
}

// Resume resumes the paused backend. With no active session it replays the
// track at the history cursor.
func (c *Coordinator) Resume() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.session.Playing {
		c.mu.Unlock()
		return nil
	}

	reason := ReasonResume
	switch c.session.Backend {
	case BackendSample:
		if !c.sample.Resume() {
			// Ended or released in the meantime: start over.
			c.playSampleLocked(*c.session.Track)
			reason = ReasonPlay
			break
		}
		c.startedLocked(BackendSample)
	case BackendWidget:
		if !c.widget.Play() {
			c.mu.Unlock()
			return nil
		}
		c.startedLocked(BackendWidget)
	default:
		entry := c.history.Current()
		if entry == nil {
			c.mu.Unlock()
			return nil
		}
		c.playSampleLocked(*entry)
		reason = ReasonPlay
	}
	c.unlockAndPublish(reason)
	return nil
}

// Toggle pauses when playing and resumes otherwise.
func (c *Coordinator) Toggle() error {
	c.mu.Lock()
	playing := c.session.Playing
	c.mu.Unlock()
	if playing {
		return c.Pause()
	}
	return c.Resume()
}

// Stop ends the session. The sample fades out; the widget is paused.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.session.Active() {
		c.mu.Unlock()
		return nil
	}
	switch c.session.Backend {
	case BackendSample:
		c.sample.Stop()
	case BackendWidget:
		c.widget.Pause()
	}
	c.endSessionLocked()
	c.unlockAndPublish(ReasonStop)
	return nil
}

// WidgetOptions qualify LoadWidget.
type WidgetOptions = widget.LoadOptions

// LoadWidget mounts the mix at feed. Loading the mounted feed again only
// shows it. With AutoPlay the widget takes the session over.
func (c *Coordinator) LoadWidget(feed string, opts WidgetOptions) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	repointed, err := c.widget.Load(feed, opts)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if opts.AutoPlay {
		c.startedLocked(BackendWidget)
		c.session.Backend = BackendWidget
		c.session.Track = nil
		if opts.Track != nil {
			t := *opts.Track
			c.session.Track = &t
		}
		c.session.Elapsed, c.session.Duration = 0, 0
	}
	c.logger.Debug().Str("feed", feed).Bool("repointed", repointed).Bool("manual", opts.Manual).Msg("widget load")
	c.unlockAndPublish(ReasonWidgetLoad)
	return nil
}

// ShowWidget shows the widget surface without reloading it.
func (c *Coordinator) ShowWidget() error {
	return c.visibility(c.widget.Show)
}

// HideWidget hides the widget surface. A playing mix keeps playing.
func (c *Coordinator) HideWidget() error {
	return c.visibility(c.widget.Hide)
}

func (c *Coordinator) visibility(apply func()) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	apply()
	c.unlockAndPublish(ReasonWidgetVisibility)
	return nil
}

// CloseWidget tears the widget down.
func (c *Coordinator) CloseWidget() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.widget.Close()
	if c.session.Backend == BackendWidget {
		c.endSessionLocked()
	}
	c.unlockAndPublish(ReasonWidgetClose)
	return nil
}

// Navigate records a route transition. An auto-loaded widget that was never
// played is torn down; everything else survives.
func (c *Coordinator) Navigate(route string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.route = route
	if c.widget.Navigated() {
		c.logger.Debug().Str("route", route).Msg("auto-loaded widget dismissed")
		if c.session.Backend == BackendWidget {
			c.endSessionLocked()
		}
	}
	c.unlockAndPublish(ReasonNavigate)
	return nil
}

// AttachPageAudio registers independent audio that must pause whenever
// playback starts.
func (c *Coordinator) AttachPageAudio(id string, a exclusion.PageAudio) {
	c.exclusion.Attach(id, a)
}

// DetachPageAudio removes independent audio registered under id.
func (c *Coordinator) DetachPageAudio(id string) {
	c.exclusion.Detach(id)
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(ReasonProgress)
}

// CurrentTrack returns the session track, or the track at the history
// cursor when nothing is active, or nil when nothing ever played.
func (c *Coordinator) CurrentTrack() *playlist.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTrackLocked()
}

func (c *Coordinator) currentTrackLocked() *playlist.Track {
	if c.session.Track != nil {
		t := *c.session.Track
		return &t
	}
	return c.history.Current()
}

// History returns a copy of every entry queued this session.
func (c *Coordinator) History() []playlist.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Tracks()
}

// Analysis returns the live levels of the sample output.
func (c *Coordinator) Analysis() analysis.Levels {
	if c.analyzer == nil {
		return analysis.Levels{}
	}
	return c.analyzer.Snapshot()
}

// Patch applies merged display fields by key to the session track, the
// history and the visible queue. It never touches a backend. The first patch
// of a release is always published, so views showing it can refresh.
func (c *Coordinator) Patch(releaseID string, merged []playlist.Track) {
	byKey := playlist.IndexByKey(merged)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	changed := c.history.Patch(byKey) + c.queue.Patch(byKey)
	if playlist.PatchOne(c.session.Track, byKey) {
		changed++
	}
	first := !c.patched[releaseID]
	c.patched[releaseID] = true
	if changed == 0 && !first {
		c.mu.Unlock()
		return
	}
	c.logger.Debug().Str("release_id", releaseID).Int("changed", changed).Msg("tracks patched")
	c.unlockAndPublish(ReasonPatch)
}

// Close releases both backends and ends every subscription.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cancelTimersLocked()
	c.sample.Release()
	c.widget.Close()
	c.mu.Unlock()

	c.bus.Close()
	c.logger.Info().Msg("playback coordinator closed")
	return nil
}

// playSampleLocked plays entry on the sample backend, pausing and hiding
// the widget.
func (c *Coordinator) playSampleLocked(entry playlist.Track) {
	c.cancelTimersLocked()
	c.sample.Load(entry)
	c.startedLocked(BackendSample)
	c.widget.Hide()

	t := entry
	c.session = Session{
		Backend:      BackendSample,
		Track:        &t,
		Playing:      true,
		LastActivity: time.Now(),
	}
	c.logger.Debug().Str("source", entry.Source).Int("cursor", c.history.Cursor()).Msg("sample play")
}

// startedLocked applies the exclusion rule for owner and marks the session
// as playing.
func (c *Coordinator) startedLocked(owner Backend) {
	c.cancelTimersLocked()
	c.exclusion.Started(owner.member())
	c.session.Playing = true
	c.session.LastActivity = time.Now()
}

// endSessionLocked leaves nothing playing and keeps the track for the grace
// window.
func (c *Coordinator) endSessionLocked() {
	c.session.Backend = BackendNone
	c.session.Playing = false
	c.session.LastActivity = time.Now()
	c.armGraceLocked()
}

// syncQueueLocked makes sure the visible queue still contains the cursor.
// Stepping back past the start of the visible list shows the history
// entry alone.
func (c *Coordinator) syncQueueLocked() {
	cursor := c.history.Cursor()
	if c.queue.IndexOf(cursor) >= 0 {
		return
	}
	if entry := c.history.At(cursor); entry != nil {
		c.queue.Replace(cursor, *entry)
	}
}

func (c *Coordinator) armGraceLocked() {
	c.cancelTimersLocked()
	gen := c.timerGen
	c.grace = time.AfterFunc(c.cfg.GraceWindow, func() { c.clearSession(gen) })
}

func (c *Coordinator) cancelTimersLocked() {
	c.timerGen++
	if c.grace != nil {
		c.grace.Stop()
		c.grace = nil
	}
	if c.idle != nil {
		c.idle.Stop()
		c.idle = nil
	}
}

// clearSession drops the retained track once the grace window elapsed,
// then schedules the idle release.
func (c *Coordinator) clearSession(gen uint64) {
	c.mu.Lock()
	if c.closed || c.timerGen != gen || c.session.Active() {
		c.mu.Unlock()
		return
	}
	c.session.Track = nil
	c.session.Elapsed, c.session.Duration = 0, 0

	remaining := c.cfg.IdleRelease - time.Since(c.session.LastActivity)
	if remaining <= 0 {
		c.sample.Release()
	} else {
		c.idle = time.AfterFunc(remaining, func() { c.releaseIdle(gen) })
	}
	c.unlockAndPublish(ReasonCleared)
}

func (c *Coordinator) releaseIdle(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.timerGen != gen || c.session.Active() {
		return
	}
	c.sample.Release()
	c.logger.Debug().Msg("idle sample resource released")
}

// unlockAndPublish snapshots the state, releases mu and publishes.
func (c *Coordinator) unlockAndPublish(reason Reason) {
	c.seq++
	snap := c.snapshotLocked(reason)
	c.pubMu.Lock()
	c.mu.Unlock()
	c.bus.Publish(snap)
	c.pubMu.Unlock()
}

func (c *Coordinator) snapshotLocked(reason Reason) Snapshot {
	s := c.session.clone()
	cursor := c.history.Cursor()
	return Snapshot{
		SessionID:  c.id,
		Seq:        c.seq,
		Reason:     reason,
		Backend:    s.Backend,
		Track:      s.Track,
		Playing:    s.Playing,
		Elapsed:    s.Elapsed,
		Duration:   s.Duration,
		Widget:     c.widget.Mirror(),
		HistoryLen: c.history.Len(),
		Cursor:     cursor,
		Queue:      c.queue.Tracks(),
		QueueIndex: c.queue.IndexOf(cursor),
		Route:      c.route,
	}
}
