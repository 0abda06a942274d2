package widget

import (
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	PollInterval:  500 * time.Millisecond,
	ReadyAttempts: 3,
	ReadyDelay:    100 * time.Millisecond,
	CallTimeout:   time.Second,
}

type changes struct {
	mu      sync.Mutex
	changed []Mirror
	started []Mirror
}

func (c *changes) attach(b *Backend) {
	b.OnChange(func(m Mirror) {
		c.mu.Lock()
		c.changed = append(c.changed, m)
		c.mu.Unlock()
	})
	b.OnStarted(func(m Mirror) {
		c.mu.Lock()
		c.started = append(c.started, m)
		c.mu.Unlock()
	})
}

func (c *changes) startedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.started)
}

func newTestBackend() (*Backend, *FakeHost, *changes) {
	host := NewFakeHost()
	b := New(host, testConfig, zerolog.Nop())
	c := &changes{}
	c.attach(b)
	return b, host, c
}

func TestNormalizeFeed(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/dj/mix-one/", "/dj/mix-one"},
		{"/dj/mix-one", "/dj/mix-one"},
		{"dj/mix-one", "/dj/mix-one"},
		{"https://www.mixcloud.com/DJ/Mix-One/", "/DJ/Mix-One"},
		{"/dj/mix?utm=1#t=30", "/dj/mix"},
		{"  /dj/mix//  ", "/dj/mix"},
		{"/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFeed(tt.in))
		})
	}
}

func TestLoad_InvalidFeed(t *testing.T) {
	b, host, _ := newTestBackend()
	_, err := b.Load(" / ", LoadOptions{})
	require.ErrorIs(t, err, ErrInvalidFeed)
	assert.Empty(t, host.Mounts())
}

func TestLoad_SameFeedRepointsOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, _ := newTestBackend()
		defer b.Close()

		repointed, err := b.Load("/dj/mix-one", LoadOptions{})
		require.NoError(t, err)
		assert.True(t, repointed)
		synctest.Wait()

		b.Hide()
		repointed, err = b.Load("/dj/mix-one/", LoadOptions{Manual: true})
		require.NoError(t, err)
		assert.False(t, repointed)
		synctest.Wait()

		assert.Equal(t, []string{"/dj/mix-one"}, host.Mounts())
		m := b.Mirror()
		assert.True(t, m.Visible, "reload re-shows the hidden widget")
		assert.True(t, m.Manual, "reload upgrades to manual")
		assert.True(t, m.Ready)
	})
}

func TestLoad_NewFeedTearsDownPrevious(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, _ := newTestBackend()
		defer b.Close()

		_, _ = b.Load("/dj/one", LoadOptions{})
		synctest.Wait()
		first := host.Last()
		gen := b.Mirror().Generation

		_, _ = b.Load("/dj/two", LoadOptions{})
		synctest.Wait()

		assert.Equal(t, []string{"/dj/one", "/dj/two"}, host.Mounts())
		assert.True(t, first.Unmounted())
		assert.Greater(t, b.Mirror().Generation, gen)
		assert.Equal(t, "/dj/two", b.Mirror().Feed)
	})
}

func TestHandshake_BoundedRetry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, c := newTestBackend()
		defer b.Close()
		host.SetReadyAfter(0)

		_, _ = b.Load("/dj/never", LoadOptions{AutoPlay: true})
		time.Sleep(10 * testConfig.ReadyDelay)
		synctest.Wait()

		h := host.Last()
		assert.Equal(t, testConfig.ReadyAttempts, h.ReadyCalls())
		m := b.Mirror()
		assert.False(t, m.Ready)
		assert.False(t, m.Playing)
		assert.Zero(t, c.startedCount())

		time.Sleep(3 * testConfig.PollInterval)
		synctest.Wait()
		assert.Zero(t, h.PausedCalls(), "polling never starts without a handshake")
		assert.Zero(t, h.PlayCalls())

		// A failed session can be loaded again.
		host.SetReadyAfter(1)
		repointed, err := b.Load("/dj/never", LoadOptions{})
		require.NoError(t, err)
		assert.True(t, repointed)
		synctest.Wait()
		assert.True(t, b.Mirror().Ready)
	})
}

func TestHandshake_ReadyAfterRetries(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, _ := newTestBackend()
		defer b.Close()
		host.SetReadyAfter(3)

		_, _ = b.Load("/dj/slow", LoadOptions{})
		synctest.Wait()
		assert.False(t, b.Mirror().Ready)

		time.Sleep(2*testConfig.ReadyDelay + time.Millisecond)
		synctest.Wait()
		assert.True(t, b.Mirror().Ready)
		assert.Equal(t, 3, host.Last().ReadyCalls())
	})
}

func TestPoll_DiscoversNativePlay(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, c := newTestBackend()
		defer b.Close()

		_, _ = b.Load("/dj/mix", LoadOptions{})
		synctest.Wait()
		h := host.Last()

		h.SetPaused(false)
		time.Sleep(testConfig.PollInterval)
		synctest.Wait()

		assert.True(t, b.Playing())
		assert.True(t, b.Mirror().PlayedSinceLoad)
		assert.Equal(t, 1, c.startedCount())

		// Unchanged state: no further callbacks.
		time.Sleep(2 * testConfig.PollInterval)
		synctest.Wait()
		assert.Equal(t, 1, c.startedCount())

		h.SetPaused(true)
		time.Sleep(testConfig.PollInterval)
		synctest.Wait()
		assert.False(t, b.Playing())
		assert.Equal(t, 1, c.startedCount())
	})
}

func TestEvents_AppliedLikePolls(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, c := newTestBackend()
		defer b.Close()

		_, _ = b.Load("/dj/mix", LoadOptions{})
		synctest.Wait()

		host.Last().Emit(Event{Kind: EventPlay})
		synctest.Wait()
		assert.True(t, b.Playing())
		assert.Equal(t, 1, c.startedCount())

		host.Last().Emit(Event{Kind: EventFinish})
		synctest.Wait()
		assert.False(t, b.Playing())
	})
}

func TestStalePoller_Terminates(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, c := newTestBackend()
		defer b.Close()

		_, _ = b.Load("/dj/old", LoadOptions{})
		synctest.Wait()
		old := host.Last()

		_, _ = b.Load("/dj/new", LoadOptions{})
		synctest.Wait()
		polls := old.PausedCalls()

		// The old widget starts playing on its own: nobody must notice.
		old.SetPaused(false)
		old.Emit(Event{Kind: EventPlay})
		time.Sleep(3 * testConfig.PollInterval)
		synctest.Wait()

		assert.Equal(t, polls, old.PausedCalls(), "stale loop stopped polling")
		assert.False(t, b.Playing())
		assert.Zero(t, c.startedCount())
		assert.Equal(t, "/dj/new", b.Mirror().Feed)
		assert.Positive(t, host.Last().PausedCalls())
	})
}

func TestPlayPause_UpdateExpectedState(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, c := newTestBackend()
		defer b.Close()

		assert.False(t, b.Play(), "nothing loaded")

		_, _ = b.Load("/dj/mix", LoadOptions{})
		synctest.Wait()
		h := host.Last()

		assert.True(t, b.Play())
		assert.True(t, b.Playing())
		assert.Equal(t, 1, h.PlayCalls())

		time.Sleep(testConfig.PollInterval)
		synctest.Wait()
		assert.True(t, b.Playing(), "poll agrees with the guess")
		assert.Zero(t, c.startedCount(), "local play is not reported back")

		b.Pause()
		assert.False(t, b.Playing())
		assert.Equal(t, 1, h.PauseCalls())
	})
}

func TestPlay_BeforeReadyIsApplied(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, c := newTestBackend()
		defer b.Close()
		host.SetReadyAfter(2)

		_, _ = b.Load("/dj/mix", LoadOptions{})
		assert.True(t, b.Play())
		synctest.Wait()
		assert.Zero(t, host.Last().PlayCalls())

		time.Sleep(testConfig.ReadyDelay + time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, host.Last().PlayCalls())
		assert.True(t, b.Playing())
		assert.Equal(t, 1, c.startedCount())
	})
}

func TestShowHide_NeverPause(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, _ := newTestBackend()
		defer b.Close()

		_, _ = b.Load("/dj/mix", LoadOptions{AutoPlay: true})
		synctest.Wait()
		require.True(t, b.Playing())

		b.Hide()
		assert.False(t, b.Mirror().Visible)
		assert.True(t, b.Playing())
		assert.Zero(t, host.Last().PauseCalls())

		b.Show()
		assert.True(t, b.Mirror().Visible)
		assert.Len(t, host.Mounts(), 1)
	})
}

func TestNavigated(t *testing.T) {
	t.Run("auto-loaded and never played is torn down", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			b, host, _ := newTestBackend()

			_, _ = b.Load("/dj/mix", LoadOptions{})
			synctest.Wait()

			assert.True(t, b.Navigated())
			synctest.Wait()
			assert.False(t, b.Mirror().Loaded())
			assert.Equal(t, 1, host.Unmounts())
		})
	})

	t.Run("manual persists", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			b, _, _ := newTestBackend()
			defer b.Close()

			_, _ = b.Load("/dj/mix", LoadOptions{Manual: true})
			synctest.Wait()
			assert.False(t, b.Navigated())
			assert.True(t, b.Mirror().Loaded())
		})
	})

	t.Run("auto-loaded that played persists", func(t *testing.T) {
		synctest.Test(t, func(t *testing.T) {
			b, _, _ := newTestBackend()
			defer b.Close()

			_, _ = b.Load("/dj/mix", LoadOptions{})
			synctest.Wait()
			b.Play()
			b.Pause()
			assert.False(t, b.Navigated())
		})
	})
}

func TestMountFailure_Degrades(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		b, host, c := newTestBackend()
		defer b.Close()
		host.SetMountError(errors.New("no such player"))

		_, _ = b.Load("/dj/mix", LoadOptions{AutoPlay: true})
		synctest.Wait()

		m := b.Mirror()
		assert.True(t, m.Loaded())
		assert.False(t, m.Ready)
		assert.False(t, m.Playing)
		assert.Zero(t, c.startedCount())
	})
}
