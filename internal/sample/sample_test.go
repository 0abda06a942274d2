package sample

import (
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedeck/internal/player"
	"github.com/llehouerou/wavedeck/internal/playlist"
)

var testConfig = Config{
	TickInterval: 250 * time.Millisecond,
	FadeOut:      300 * time.Millisecond,
	FadeSteps:    3,
}

type recorder struct {
	mu       sync.Mutex
	progress int
	ended    []EndReason
	endedOn  []string
	started  []string
}

func (r *recorder) attach(b *Backend) {
	b.OnProgress(func(time.Duration, time.Duration) {
		r.mu.Lock()
		r.progress++
		r.mu.Unlock()
	})
	b.OnEnded(func(t playlist.Track, reason EndReason) {
		r.mu.Lock()
		r.ended = append(r.ended, reason)
		r.endedOn = append(r.endedOn, t.Key)
		r.mu.Unlock()
	})
	b.OnStarted(func(t playlist.Track) {
		r.mu.Lock()
		r.started = append(r.started, t.Key)
		r.mu.Unlock()
	})
}

func (r *recorder) progressCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

func newTestBackend() (*Backend, *player.Mock, *recorder) {
	m := player.NewMock()
	m.SetDuration(30 * time.Second)
	b := New(m, testConfig, zerolog.Nop())
	r := &recorder{}
	r.attach(b)
	return b, m, r
}

func track(key string) playlist.Track {
	return playlist.NewTrack(key, "Track "+key)
}

func TestLoad_PlaysOptimistically(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, _ := newTestBackend()
		defer b.Release()

		assert.True(t, b.Load(track("/s/a.mp3")))
		assert.True(t, b.Playing(), "playing is reported before the engine confirms")

		synctest.Wait()
		assert.Equal(t, []string{"/s/a.mp3"}, m.PlayCalls())
		assert.Equal(t, player.Playing, m.State())
		require.NotNil(t, b.Track())
		assert.Equal(t, "/s/a.mp3", b.Track().Key)
	})
}

func TestProgress_PushedEveryTick(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, _, r := newTestBackend()
		defer b.Release()

		b.Load(track("/s/a.mp3"))
		synctest.Wait()

		time.Sleep(3*testConfig.TickInterval + time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 3, r.progressCount())

		b.Pause()
		time.Sleep(2 * testConfig.TickInterval)
		synctest.Wait()
		assert.Equal(t, 3, r.progressCount(), "no progress while paused")
	})
}

func TestPauseResume_KeepsResource(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, _ := newTestBackend()
		defer b.Release()

		b.Load(track("/s/a.mp3"))
		synctest.Wait()

		b.Pause()
		assert.False(t, b.Playing())
		assert.Equal(t, player.Paused, m.State())

		assert.True(t, b.Resume())
		assert.True(t, b.Playing())
		assert.Equal(t, player.Playing, m.State())
		assert.Len(t, m.PlayCalls(), 1)
	})
}

func TestEnded_NaturalAndError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, r := newTestBackend()
		defer b.Release()

		b.Load(track("/s/a.mp3"))
		synctest.Wait()
		m.SimulateFinished(nil)
		assert.False(t, b.Playing())

		m.SetPlayError(errors.New("corrupt frame"))
		b.Load(track("/s/b.mp3"))
		synctest.Wait()

		r.mu.Lock()
		defer r.mu.Unlock()
		assert.Equal(t, []EndReason{EndFinished, EndError}, r.ended)
		assert.Equal(t, []string{"/s/a.mp3", "/s/b.mp3"}, r.endedOn)
	})
}

func TestStop_RampIsMonotonicAndDefersLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, r := newTestBackend()
		defer b.Release()

		m.SetVolume(0.9)
		b.Load(track("/s/a.mp3"))
		synctest.Wait()
		before := len(m.VolumeCalls())

		b.Stop()
		assert.True(t, b.isStopping())
		assert.False(t, b.Playing())

		// Mid-ramp: commands do not touch the engine.
		time.Sleep(testConfig.FadeOut/2 + time.Millisecond)
		synctest.Wait()
		b.Pause()
		assert.False(t, b.Resume())
		assert.False(t, b.Load(track("/s/b.mp3")))
		assert.False(t, b.Load(track("/s/c.mp3")), "latest deferred load wins")
		assert.True(t, b.Playing(), "a deferred load counts as playing")
		assert.Equal(t, []string{"/s/a.mp3"}, m.PlayCalls())
		assert.Equal(t, 0, m.StopCalls())
		m.SimulateFinished(nil)
		assert.Equal(t, 0, r.progressCount(), "no progress during the ramp")

		time.Sleep(testConfig.FadeOut)
		synctest.Wait()

		trace := m.VolumeCalls()[before:]
		require.Len(t, trace, testConfig.FadeSteps+1)
		ramp := trace[:testConfig.FadeSteps]
		for i := 1; i < len(ramp); i++ {
			assert.LessOrEqual(t, ramp[i], ramp[i-1], "volume trace must not increase")
		}
		assert.InDelta(t, 0.0, ramp[len(ramp)-1], 1e-9)
		assert.InDelta(t, 0.9, trace[len(trace)-1], 1e-9, "volume restored after release")
		assert.Equal(t, 1, m.StopCalls())

		assert.Equal(t, []string{"/s/a.mp3", "/s/c.mp3"}, m.PlayCalls())
		assert.False(t, b.isStopping())
		assert.True(t, b.Playing())
		r.mu.Lock()
		assert.Equal(t, []string{"/s/c.mp3"}, r.started)
		assert.Empty(t, r.ended, "finish during the ramp is not reported")
		r.mu.Unlock()
	})
}

func TestStop_WithoutPendingLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, r := newTestBackend()

		b.Load(track("/s/a.mp3"))
		synctest.Wait()
		b.Stop()
		b.Stop()

		time.Sleep(testConfig.FadeOut + time.Millisecond)
		synctest.Wait()

		assert.Equal(t, player.Stopped, m.State())
		assert.Nil(t, b.Track())
		assert.False(t, b.loaded())
		assert.InDelta(t, 1.0, m.Volume(), 1e-9)
		assert.Empty(t, r.started)
	})
}

func TestStop_SilentEngineSkipsRamp(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, _ := newTestBackend()

		b.Load(track("/s/a.mp3"))
		synctest.Wait()
		m.SimulateFinished(nil)

		b.Stop()
		assert.False(t, b.isStopping())
		assert.Nil(t, b.Track())
		assert.Empty(t, m.VolumeCalls())
	})
}

func TestRelease(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, r := newTestBackend()

		b.Load(track("/s/a.mp3"))
		synctest.Wait()
		b.Release()

		assert.Equal(t, player.Stopped, m.State())
		assert.False(t, b.loaded())
		assert.False(t, b.Resume())

		time.Sleep(2 * testConfig.TickInterval)
		synctest.Wait()
		assert.Equal(t, 0, r.progressCount())
	})
}

func TestPause_CancelsDeferredLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, r := newTestBackend()
		defer b.Release()

		b.Load(track("/s/a.mp3"))
		synctest.Wait()
		b.Stop()
		b.Load(track("/s/b.mp3"))
		require.True(t, b.Playing())

		b.Pause()
		assert.False(t, b.Playing())

		time.Sleep(testConfig.FadeOut + time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"/s/a.mp3"}, m.PlayCalls())
		assert.Equal(t, player.Stopped, m.State())
		assert.Nil(t, b.Track())
		r.mu.Lock()
		assert.Empty(t, r.started)
		r.mu.Unlock()
	})
}

func TestStop_DuringRampDropsDeferredLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, _ := newTestBackend()
		defer b.Release()

		b.Load(track("/s/a.mp3"))
		synctest.Wait()
		b.Stop()
		b.Load(track("/s/b.mp3"))
		b.Stop()

		time.Sleep(testConfig.FadeOut + time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"/s/a.mp3"}, m.PlayCalls())
		assert.False(t, b.loaded())
	})
}

func TestFinished_ReplacedSourceDoesNotEndNewLoad(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, m, r := newTestBackend()
		defer b.Release()

		b.Load(track("/s/a.mp3"))
		synctest.Wait()

		// b is still opening when a's end arrives.
		b.loadMu.Lock()
		b.Load(track("/s/b.mp3"))
		m.SimulateFinished(nil)
		b.loadMu.Unlock()
		synctest.Wait()

		r.mu.Lock()
		assert.Empty(t, r.endedOn)
		r.mu.Unlock()
		assert.Equal(t, []string{"/s/a.mp3", "/s/b.mp3"}, m.PlayCalls())
		assert.True(t, b.Playing())

		m.SimulateFinished(nil)
		r.mu.Lock()
		assert.Equal(t, []string{"/s/b.mp3"}, r.endedOn)
		r.mu.Unlock()
	})
}
