package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedeck/internal/config"
	"github.com/llehouerou/wavedeck/internal/enrich"
	"github.com/llehouerou/wavedeck/internal/mount"
)

func TestFormatLength(t *testing.T) {
	assert.Equal(t, "-", formatLength(0))
	assert.Equal(t, "0:59", formatLength(59*time.Second))
	assert.Equal(t, "3:42", formatLength(3*time.Minute+41600*time.Millisecond))
	assert.Equal(t, "1:01:00", formatLength(61*time.Minute))
}

func TestTracklistSource_WithoutCache(t *testing.T) {
	off := false
	cfg := &config.Config{}
	cfg.Enrich.Persistent = &off

	r := mount.NewRegistry()
	src, err := tracklistSource(cfg, r, zerolog.Nop())
	require.NoError(t, err)

	chain, ok := src.(enrich.Chain)
	require.True(t, ok)
	assert.Len(t, chain, 1)
	assert.Empty(t, r.Names())
}

func TestTracklistSource_LastfmFallback(t *testing.T) {
	off := false
	cfg := &config.Config{}
	cfg.Enrich.Persistent = &off
	cfg.Lastfm.APIKey = "key"
	cfg.Lastfm.APISecret = "secret"

	src, err := tracklistSource(cfg, mount.NewRegistry(), zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, src.(enrich.Chain), 2)
}
