package lastfm

import (
	"context"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/shkh/lastfm-go/lastfm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedeck/internal/enrich"
)

const albumXML = `<album>
  <name>Music Has the Right to Children</name>
  <artist>Boards of Canada</artist>
  <mbid>3f1e1b1d</mbid>
  <tracks>
    <track rank="1"><name>Wildlife Analysis</name><duration>77</duration><artist><name>Boards of Canada</name></artist></track>
    <track rank="2"><name>An Eagle in Your Mind</name><duration>383</duration><artist><name>Boards of Canada</name></artist></track>
    <track rank="3"><name> Telephasic Workshop </name><duration></duration><artist><name>BoC &amp; Friend</name></artist></track>
  </tracks>
</album>`

type fakeAlbum struct {
	args map[string]any
	info lastfm.AlbumGetInfo
	err  error
	wait chan struct{}
}

func (f *fakeAlbum) GetInfo(args map[string]any) (lastfm.AlbumGetInfo, error) {
	f.args = args
	if f.wait != nil {
		<-f.wait
	}
	return f.info, f.err
}

func TestTracklist(t *testing.T) {
	var info lastfm.AlbumGetInfo
	require.NoError(t, xml.Unmarshal([]byte(albumXML), &info))
	fake := &fakeAlbum{info: info}
	c := &Client{album: fake, apiKey: "key"}

	entries, err := c.Tracklist(context.Background(), "3f1e1b1d")
	require.NoError(t, err)

	assert.Equal(t, "3f1e1b1d", fake.args["mbid"])
	assert.Equal(t, []enrich.Entry{
		{Title: "Wildlife Analysis", Length: 77 * time.Second},
		{Title: "An Eagle in Your Mind", Length: 383 * time.Second},
		{Title: "Telephasic Workshop", Artist: "BoC & Friend"},
	}, entries)
}

func TestTracklist_Errors(t *testing.T) {
	t.Run("no credentials", func(t *testing.T) {
		_, err := New("", "").Tracklist(context.Background(), "x")
		assert.ErrorIs(t, err, ErrNoCredentials)
	})

	t.Run("api error", func(t *testing.T) {
		boom := errors.New("Album not found")
		c := &Client{album: &fakeAlbum{err: boom}, apiKey: "key"}
		_, err := c.Tracklist(context.Background(), "x")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("caller gives up", func(t *testing.T) {
		fake := &fakeAlbum{wait: make(chan struct{})}
		defer close(fake.wait)
		c := &Client{album: fake, apiKey: "key"}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Tracklist(ctx, "x")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
