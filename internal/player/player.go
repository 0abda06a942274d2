package player

import (
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/llehouerou/wavedeck/internal/analysis"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
	extOGA  = ".oga"

	defaultMaxSampleBytes = 32 << 20
	httpTimeout           = 30 * time.Second
)

// Player decodes and plays one sample at a time through the speaker.
type Player struct {
	mu         sync.Mutex
	state      State
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	streamer   beep.StreamSeekCloser
	format     beep.Format
	trackInfo  *TrackInfo
	generation uint64 // identifies the loaded resource
	onFinished func(err error)

	volumeLevel float64

	analyzer   *analysis.Analyzer
	httpClient *http.Client
	maxBytes   int64
}

// TrackInfo describes the loaded resource.
type TrackInfo struct {
	Source     string
	Title      string
	Artist     string
	Album      string
	Duration   time.Duration
	SampleRate int
	Format     string
}

// Option configures a Player.
type Option func(*Player)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Player) { p.httpClient = c }
}

// WithMaxSampleBytes bounds the size of remote samples.
func WithMaxSampleBytes(n int64) Option {
	return func(p *Player) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerSampleRate  beep.SampleRate
)

// New creates a player whose output is routed through analyzer.
func New(analyzer *analysis.Analyzer, opts ...Option) *Player {
	p := &Player{
		state:       Stopped,
		volumeLevel: 1,
		analyzer:    analyzer,
		httpClient:  &http.Client{Timeout: httpTimeout},
		maxBytes:    defaultMaxSampleBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the engine state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// TrackInfo returns information about the loaded resource, or nil.
func (p *Player) TrackInfo() *TrackInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trackInfo == nil {
		return nil
	}
	info := *p.trackInfo
	return &info
}

// Duration returns the duration of the loaded resource.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trackInfo == nil {
		return 0
	}
	return p.trackInfo.Duration
}

// OnFinished registers the end-of-resource callback.
func (p *Player) OnFinished(fn func(err error)) {
	p.mu.Lock()
	p.onFinished = fn
	p.mu.Unlock()
}
