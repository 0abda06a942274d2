package widget

import (
	"context"
	"sync"
)

// FakeHost is an in-memory Host for tests.
type FakeHost struct {
	mu         sync.Mutex
	mounts     []string
	unmounts   int
	handles    []*FakeHandle
	readyAfter int
	mountErr   error
}

// NewFakeHost creates a host whose handles are ready on the first query.
func NewFakeHost() *FakeHost {
	return &FakeHost{readyAfter: 1}
}

// SetReadyAfter makes new handles report ready only from the n-th query on.
// Zero or less means never ready.
func (f *FakeHost) SetReadyAfter(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readyAfter = n
}

// SetMountError makes Mount fail with err.
func (f *FakeHost) SetMountError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mountErr = err
}

func (f *FakeHost) Mount(_ context.Context, feed string) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mounts = append(f.mounts, feed)
	if f.mountErr != nil {
		return nil, f.mountErr
	}
	h := &FakeHandle{
		feed:       feed,
		paused:     true,
		readyAfter: f.readyAfter,
		events:     make(chan Event, 8),
	}
	f.handles = append(f.handles, h)
	return h, nil
}

func (f *FakeHost) Unmount(h Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmounts++
	if fh, ok := h.(*FakeHandle); ok {
		fh.mu.Lock()
		fh.unmounted = true
		fh.paused = true
		fh.mu.Unlock()
	}
	return nil
}

// Mounts returns every feed passed to Mount, in order.
func (f *FakeHost) Mounts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.mounts...)
}

// Unmounts returns the number of Unmount calls.
func (f *FakeHost) Unmounts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unmounts
}

// Last returns the most recently mounted handle, or nil.
func (f *FakeHost) Last() *FakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.handles) == 0 {
		return nil
	}
	return f.handles[len(f.handles)-1]
}

// FakeHandle is the handle of a FakeHost widget session.
type FakeHandle struct {
	mu         sync.Mutex
	feed       string
	paused     bool
	readyAfter int
	readyCalls int
	pausedCall int
	playCalls  int
	pauseCalls int
	unmounted  bool
	events     chan Event
}

func (h *FakeHandle) Ready(context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readyCalls++
	return h.readyAfter > 0 && h.readyCalls >= h.readyAfter, nil
}

func (h *FakeHandle) Paused(context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pausedCall++
	return h.paused, nil
}

func (h *FakeHandle) Play(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playCalls++
	h.paused = false
	return nil
}

func (h *FakeHandle) Pause(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauseCalls++
	h.paused = true
	return nil
}

func (h *FakeHandle) Events() <-chan Event {
	return h.events
}

// Test helpers

// SetPaused changes the state behind the backend's back, like the player's
// own controls would.
func (h *FakeHandle) SetPaused(paused bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = paused
}

// Emit delivers an event, dropping it if the buffer is full.
func (h *FakeHandle) Emit(ev Event) {
	select {
	case h.events <- ev:
	default:
	}
}

func (h *FakeHandle) Feed() string {
	return h.feed
}

func (h *FakeHandle) ReadyCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.readyCalls
}

func (h *FakeHandle) PausedCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pausedCall
}

func (h *FakeHandle) PlayCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playCalls
}

func (h *FakeHandle) PauseCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pauseCalls
}

func (h *FakeHandle) Unmounted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unmounted
}

// Verify FakeHost implements Host at compile time.
var _ Host = (*FakeHost)(nil)
