package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedeck/internal/analysis"
	"github.com/llehouerou/wavedeck/internal/config"
	"github.com/llehouerou/wavedeck/internal/enrich"
	"github.com/llehouerou/wavedeck/internal/lastfm"
	"github.com/llehouerou/wavedeck/internal/mbcache"
	"github.com/llehouerou/wavedeck/internal/mount"
	"github.com/llehouerou/wavedeck/internal/mpris"
	"github.com/llehouerou/wavedeck/internal/mprisctl"
	"github.com/llehouerou/wavedeck/internal/musicbrainz"
	"github.com/llehouerou/wavedeck/internal/notify"
	"github.com/llehouerou/wavedeck/internal/playback"
	"github.com/llehouerou/wavedeck/internal/player"
	"github.com/llehouerou/wavedeck/internal/sample"
	"github.com/llehouerou/wavedeck/internal/widget"
)

const sessionBusAudio = "session-bus"

// deck holds everything the play command starts.
type deck struct {
	coordinator *playback.Coordinator
	pipeline    *enrich.Pipeline
	mpris       *mpris.Adapter
	watcher     *notify.Watcher
	logger      zerolog.Logger
}

// build mounts the process resources and the playback coordinator.
func build(cfg *config.Config, logger zerolog.Logger) (*deck, error) {
	r := mount.Global()
	d := &deck{logger: logger}

	conn, err := mount.Get(r, "dbus", func() (*dbus.Conn, error) {
		return dbus.ConnectSessionBus()
	})
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}

	source, err := tracklistSource(cfg, r, logger)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	d.pipeline = enrich.NewPipeline(source, cfg.EnrichConfig(), logger)

	d.coordinator, err = playback.Default(func() (*playback.Coordinator, error) {
		analyzer := analysis.New(0)
		engine := player.New(analyzer, player.WithMaxSampleBytes(cfg.MaxSampleBytes()))
		host := mprisctl.NewHost(conn, cfg.Widget.Player, cfg.Widget.BaseURL, logger)
		return playback.New(playback.Deps{
			Sample:   sample.New(engine, cfg.SampleConfig(), logger),
			Widget:   widget.New(host, cfg.WidgetConfig(), logger),
			Enrich:   d.pipeline,
			Analyzer: analyzer,
			Config:   cfg.PlaybackConfig(),
			Logger:   logger,
		}), nil
	})
	if err != nil {
		d.pipeline.Close()
		_ = r.Close()
		return nil, err
	}

	// Other players on the bus stand in for page-embedded audio.
	d.coordinator.AttachPageAudio(sessionBusAudio,
		mprisctl.NewSweeper(conn, logger, mpris.Name, cfg.Widget.Player))

	if d.mpris, err = mpris.New(d.coordinator); err != nil {
		logger.Warn().Err(err).Msg("media keys unavailable")
	}
	d.watcher = notifyDesktop(d.coordinator, logger)

	return d, nil
}

// Close stops the front ends first, then unmounts the coordinator and the
// shared connections.
func (d *deck) Close() {
	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.logger.Debug().Err(err).Msg("close notification")
		}
	}
	if d.mpris != nil {
		_ = d.mpris.Close()
	}
	d.coordinator.DetachPageAudio(sessionBusAudio)
	d.pipeline.Close()
	if err := mount.Global().Close(); err != nil {
		d.logger.Error().Err(err).Msg("unmount")
	}
}

// tracklistSource asks MusicBrainz, then Last.fm when configured. Answers
// are kept in the sqlite cache unless it is disabled.
func tracklistSource(cfg *config.Config, r *mount.Registry, logger zerolog.Logger) (enrich.Source, error) {
	chain := enrich.Chain{musicbrainz.NewClient(
		musicbrainz.WithBaseURL(cfg.MusicBrainz.BaseURL),
		musicbrainz.WithUserAgent(cfg.MusicBrainz.UserAgent),
	)}
	if cfg.HasLastfmConfig() {
		chain = append(chain, lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret))
	}
	if !cfg.PersistentCache() {
		return chain, nil
	}

	db, err := mount.Get(r, "mbcache", func() (*sql.DB, error) {
		path, err := mbcache.DefaultPath()
		if err != nil {
			return nil, err
		}
		return mbcache.Open(path)
	})
	if err != nil {
		logger.Warn().Err(err).Msg("tracklist cache unavailable")
		return chain, nil
	}

	cache := mbcache.New(db, chain, cfg.PersistentTTLDays(), logger)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if n, err := cache.Purge(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Warn().Err(err).Msg("purge tracklist cache")
	} else if n > 0 {
		logger.Debug().Int64("rows", n).Msg("expired tracklists purged")
	}
	return cache, nil
}
