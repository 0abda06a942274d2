package playback

import "sync"

const snapshotBufferSize = 16

// Subscription delivers snapshots to one subscriber.
//
// Sends never block the coordinator. When the buffer is full the oldest
// pending snapshot is dropped, so the newest one always gets through.
type Subscription struct {
	Changed <-chan Snapshot
	Done    <-chan struct{}

	mu     sync.Mutex
	ch     chan Snapshot
	doneCh chan struct{}
	closed bool
}

// newSubscription creates a new subscription with a buffered channel.
func newSubscription() *Subscription {
	s := &Subscription{
		ch:     make(chan Snapshot, snapshotBufferSize),
		doneCh: make(chan struct{}),
	}
	s.Changed = s.ch
	s.Done = s.doneCh
	return s
}

// send queues snap (non-blocking, drops the oldest when full).
func (s *Subscription) send(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// close signals the subscriber to stop by closing Done.
func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.doneCh)
}

// Bus fans snapshots out to subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	closed bool
}

// Subscribe adds a subscriber. Subscribing to a closed bus returns a
// subscription that is already done.
func (b *Bus) Subscribe() *Subscription {
	sub := newSubscription()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.close()
		return sub
	}
	b.subs = append(b.subs, sub)
	return sub
}

// Unsubscribe removes sub and closes it. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	sub.close()
}

// Publish sends snap to every subscriber.
func (b *Bus) Publish(snap Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		s.send(snap)
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription. Later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.closed = true
	b.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
}
