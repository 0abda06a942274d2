package widget

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidFeed is returned for feed paths that normalize to nothing.
var ErrInvalidFeed = errors.New("invalid feed path")

// EventKind is a best-effort notification from the external player.
type EventKind int

const (
	EventPlay EventKind = iota
	EventPause
	EventFinish
)

func (k EventKind) String() string {
	switch k {
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// Event is delivered by a Handle when the external player reports a change.
// Delivery is not guaranteed.
type Event struct {
	Kind EventKind
}

// Host is the single surface the external player is mounted on.
type Host interface {
	// Mount re-points the surface at feed and returns the handle of the new
	// widget session. Every call yields a new identity.
	Mount(ctx context.Context, feed string) (Handle, error)
	// Unmount tears down a handle returned by Mount.
	Unmount(h Handle) error
}

// Handle is the embedding API of one mounted widget session.
type Handle interface {
	Ready(ctx context.Context) (bool, error)
	Paused(ctx context.Context) (bool, error)
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Events() <-chan Event
}

// NormalizeFeed reduces a feed path or URL to its canonical path: leading
// slash, no trailing slash, no query or fragment, case kept.
// An empty result means the feed is invalid.
func NormalizeFeed(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if u, err := url.Parse(s); err == nil && u.Scheme != "" && u.Host != "" {
		s = u.Path
	}
	s, _, _ = strings.Cut(s, "#")
	s, _, _ = strings.Cut(s, "?")
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return strings.TrimRight(s, "/")
}
