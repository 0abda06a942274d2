// Package lastfm is the fallback tracklist source, backed by the Last.fm
// album.getInfo method.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shkh/lastfm-go/lastfm"

	"github.com/llehouerou/wavedeck/internal/enrich"
)

// ErrNoCredentials is returned when no API key is configured.
var ErrNoCredentials = errors.New("last.fm api key not configured")

// albumAPI is the part of the Last.fm API the client uses.
type albumAPI interface {
	GetInfo(args map[string]any) (lastfm.AlbumGetInfo, error)
}

// Client looks up album tracklists on Last.fm.
type Client struct {
	album  albumAPI
	apiKey string
}

// New creates a new Last.fm client with the given API credentials.
func New(apiKey, apiSecret string) *Client {
	return &Client{
		album:  lastfm.New(apiKey, apiSecret).Album,
		apiKey: apiKey,
	}
}

// Configured reports whether the client has credentials.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Tracklist returns the tracklist of the album whose MusicBrainz release id
// is releaseID. The underlying API is not cancellable: ctx only bounds how
// long the caller waits.
func (c *Client) Tracklist(ctx context.Context, releaseID string) ([]enrich.Entry, error) {
	if !c.Configured() {
		return nil, ErrNoCredentials
	}

	type result struct {
		info lastfm.AlbumGetInfo
		err  error
	}
	done := make(chan result, 1)
	go func() {
		info, err := c.album.GetInfo(lastfm.P{"mbid": releaseID, "autocorrect": 1})
		done <- result{info, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("album.getInfo: %w", r.err)
		}
		return entries(r.info), nil
	}
}

func entries(info lastfm.AlbumGetInfo) []enrich.Entry {
	albumArtist := strings.TrimSpace(info.Artist)
	result := make([]enrich.Entry, 0, len(info.Tracks))
	for _, t := range info.Tracks {
		e := enrich.Entry{Title: strings.TrimSpace(t.Name)}
		if secs, err := strconv.Atoi(strings.TrimSpace(t.Duration)); err == nil && secs > 0 {
			e.Length = time.Duration(secs) * time.Second
		}
		if name := strings.TrimSpace(t.Artist.Name); name != albumArtist {
			e.Artist = name
		}
		result = append(result, e)
	}
	return result
}

// Verify Client implements enrich.Source at compile time.
var _ enrich.Source = (*Client)(nil)
