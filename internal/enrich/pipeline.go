// Package enrich replaces placeholder track metadata with authoritative
// tracklists, in the background and without touching playback.
package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/llehouerou/wavedeck/internal/errmsg"
	"github.com/llehouerou/wavedeck/internal/playlist"
)

// Patcher receives merged tracklists. Patching is keyed by track key, so
// applying the same list twice is harmless.
type Patcher interface {
	Patch(releaseID string, merged []playlist.Track)
}

// PatcherFunc adapts a function to Patcher.
type PatcherFunc func(releaseID string, merged []playlist.Track)

func (f PatcherFunc) Patch(releaseID string, merged []playlist.Track) { f(releaseID, merged) }

// Config holds the pipeline limits.
type Config struct {
	CacheSize int64
	CacheTTL  time.Duration
	Timeout   time.Duration // bound on one fetch
}

// DefaultConfig returns the default pipeline limits.
func DefaultConfig() Config {
	return Config{
		CacheSize: 500,
		CacheTTL:  12 * time.Hour,
		Timeout:   15 * time.Second,
	}
}

// Pipeline fetches, merges, caches and propagates tracklists.
type Pipeline struct {
	source  Source
	patcher Patcher
	cfg     Config
	logger  zerolog.Logger

	group singleflight.Group
	cache *ccache.Cache[[]playlist.Track]

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// NewPipeline creates a pipeline reading from source. Close releases it.
func NewPipeline(source Source, cfg Config, logger zerolog.Logger) *Pipeline {
	d := DefaultConfig()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = d.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = d.CacheTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	return &Pipeline{
		source: source,
		cfg:    cfg,
		logger: logger.With().Str("component", "enrich").Logger(),
		cache: ccache.New(
			ccache.Configure[[]playlist.Track]().
				MaxSize(cfg.CacheSize).
				GetsPerPromote(3).
				ItemsToPrune(1),
		),
		inflight: make(map[string]struct{}),
	}
}

// SetPatcher sets where merged tracklists are propagated.
func (p *Pipeline) SetPatcher(patcher Patcher) {
	p.mu.Lock()
	p.patcher = patcher
	p.mu.Unlock()
}

// Request enriches tracks in the background when they need it. A cached
// result is patched immediately; a request for a release that is already
// being fetched is dropped, the outstanding fetch fills the cache for it.
func (p *Pipeline) Request(releaseID string, tracks []playlist.Track) {
	if releaseID == "" || !NeedsEnrichment(tracks) {
		return
	}

	if merged, ok := p.Cached(releaseID); ok {
		p.patch(releaseID, merged)
		return
	}

	p.mu.Lock()
	if _, busy := p.inflight[releaseID]; busy {
		p.mu.Unlock()
		p.logger.Debug().Str("release_id", releaseID).Msg("enrichment already in flight")
		return
	}
	p.inflight[releaseID] = struct{}{}
	p.wg.Add(1)
	p.mu.Unlock()

	snapshot := append([]playlist.Track(nil), tracks...)
	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			delete(p.inflight, releaseID)
			p.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
		defer cancel()

		merged, err := p.Enrich(ctx, releaseID, snapshot)
		if err != nil {
			p.logger.Info().Err(err).Str("release_id", releaseID).Msg("enrichment failed, keeping existing titles")
			return
		}
		p.patch(releaseID, merged)
	}()
}

// Enrich returns tracks merged with the authoritative tracklist of
// releaseID. Concurrent calls for the same release share one fetch and its
// outcome. Failures are not cached.
func (p *Pipeline) Enrich(ctx context.Context, releaseID string, tracks []playlist.Track) ([]playlist.Track, error) {
	if merged, ok := p.Cached(releaseID); ok {
		return merged, nil
	}

	v, err, shared := p.group.Do(releaseID, func() (any, error) {
		entries, err := p.source.Tracklist(ctx, releaseID)
		if err != nil {
			return nil, errmsg.Wrap(errmsg.OpEnrichFetch, err)
		}
		if len(entries) == 0 {
			return nil, errmsg.Wrap(errmsg.OpEnrichFetch, ErrEmpty)
		}
		merged := Merge(tracks, entries)
		p.cache.Set(releaseID, merged, p.cfg.CacheTTL)
		p.logger.Debug().
			Str("release_id", releaseID).
			Int("entries", len(entries)).
			Int("tracks", len(merged)).
			Msg("tracklist merged")
		return merged, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		p.logger.Trace().Str("release_id", releaseID).Msg("joined in-flight enrichment")
	}
	return clone(v.([]playlist.Track)), nil
}

// Cached returns the merged tracklist of releaseID when one is cached. It
// never fetches.
func (p *Pipeline) Cached(releaseID string) ([]playlist.Track, bool) {
	item := p.cache.Get(releaseID)
	if item == nil || item.Expired() {
		return nil, false
	}
	return clone(item.Value()), true
}

func (p *Pipeline) patch(releaseID string, merged []playlist.Track) {
	p.mu.Lock()
	patcher := p.patcher
	p.mu.Unlock()
	if patcher != nil {
		patcher.Patch(releaseID, merged)
	}
}

// Wait blocks until background requests have finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Close waits for background requests and stops the cache.
func (p *Pipeline) Close() {
	p.wg.Wait()
	p.cache.Stop()
}

func clone(tracks []playlist.Track) []playlist.Track {
	return append([]playlist.Track(nil), tracks...)
}
