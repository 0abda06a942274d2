package musicbrainz

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/llehouerou/wavedeck/internal/enrich"
)

// Tracklist returns the authoritative tracklist of a release, in medium
// then position order. Track artists are only reported when they differ
// from the release artist.
func (c *Client) Tracklist(ctx context.Context, releaseID string) ([]enrich.Entry, error) {
	details, err := c.GetRelease(ctx, releaseID)
	if err != nil {
		return nil, err
	}
	return lo.Map(details.Tracks, func(t Track, _ int) enrich.Entry {
		e := enrich.Entry{
			Title:  t.Title,
			Length: time.Duration(t.Length) * time.Millisecond,
		}
		if t.Artist != details.Artist {
			e.Artist = t.Artist
		}
		return e
	}), nil
}

// Verify Client implements enrich.Source at compile time.
var _ enrich.Source = (*Client)(nil)
