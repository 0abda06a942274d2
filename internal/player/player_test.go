package player

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelToVolume(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{1, 0},
		{1.5, 0},
		{0.5, -1},
		{0.25, -2},
		{0, -10},
		{-1, -10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, levelToVolume(tt.level), 1e-9, "level %v", tt.level)
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		source string
		want   bool
	}{
		{"/music/a.mp3", true},
		{"/music/a.FLAC", true},
		{"/music/a.wav", true},
		{"/music/a.ogg", true},
		{"https://cdn.example.com/s/a.mp3?sig=1", true},
		{"https://cdn.example.com/s/a.m4a", false},
		{"/music/a.txt", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupported(tt.source))
		})
	}
}

func TestSetVolume_ClampsWithoutResource(t *testing.T) {
	p := New(nil)

	p.SetVolume(2)
	assert.InDelta(t, 1.0, p.Volume(), 1e-9)

	p.SetVolume(-1)
	assert.InDelta(t, 0.0, p.Volume(), 1e-9)
}

func TestFetch(t *testing.T) {
	payload := []byte("not really audio")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/noext":
			w.Header().Set("Content-Type", "audio/mpeg; charset=binary")
			_, _ = w.Write(payload)
		case "/big.mp3":
			_, _ = w.Write(make([]byte, 64))
		case "/missing.mp3":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write(payload)
		}
	}))
	defer srv.Close()

	p := New(nil, WithHTTPClient(srv.Client()), WithMaxSampleBytes(32))

	t.Run("extension from path", func(t *testing.T) {
		body, ext, err := p.open(srv.URL + "/a.flac")
		require.NoError(t, err)
		defer body.Close()
		assert.Equal(t, extFLAC, ext)
		got, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("extension from content type", func(t *testing.T) {
		body, ext, err := p.open(srv.URL + "/noext")
		require.NoError(t, err)
		defer body.Close()
		assert.Equal(t, extMP3, ext)
	})

	t.Run("too large", func(t *testing.T) {
		_, _, err := p.open(srv.URL + "/big.mp3")
		assert.True(t, errors.Is(err, ErrSampleTooLarge))
	})

	t.Run("bad status", func(t *testing.T) {
		_, _, err := p.open(srv.URL + "/missing.mp3")
		assert.Error(t, err)
	})
}

func TestPlay_UnsupportedLocalFile(t *testing.T) {
	p := New(nil)
	path := t.TempDir() + "/notes.txt"
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	err := p.Play(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, Stopped, p.State())
}

func TestMock_FinishedCallback(t *testing.T) {
	m := NewMock()
	var got []error
	m.OnFinished(func(err error) { got = append(got, err) })

	require.NoError(t, m.Play("/samples/a.mp3"))
	boom := errors.New("decode failed")
	m.SimulateFinished(boom)
	// Already stopped: no second callback.
	m.SimulateFinished(nil)

	assert.Equal(t, []error{boom}, got)
	assert.Equal(t, Stopped, m.State())
	assert.Equal(t, []string{"/samples/a.mp3"}, m.PlayCalls())
}

func TestMock_VolumeTrace(t *testing.T) {
	m := NewMock()
	m.SetVolume(0.5)
	m.SetVolume(2)
	assert.Equal(t, []float64{0.5, 1}, m.VolumeCalls())
	assert.InDelta(t, 1.0, m.Volume(), 1e-9)
}
