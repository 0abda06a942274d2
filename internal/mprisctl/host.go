package mprisctl

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedeck/internal/widget"
)

// Host mounts mixes in an external MPRIS player. A mount opens the feed URL
// in the player and pauses it; the widget backend decides when it plays.
type Host struct {
	conn    *dbus.Conn
	player  string
	baseURL string
	logger  zerolog.Logger
}

// NewHost creates a host driving player (bus name suffix) on conn. Feed
// paths are appended to baseURL.
func NewHost(conn *dbus.Conn, player, baseURL string, logger zerolog.Logger) *Host {
	return &Host{
		conn:    conn,
		player:  player,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "mprisctl").Str("player", player).Logger(),
	}
}

// Player returns the bus name suffix of the driven player.
func (h *Host) Player() string {
	return h.player
}

// URL returns the location opened for feed.
func (h *Host) URL(feed string) string {
	return h.baseURL + widget.NormalizeFeed(feed)
}

// Mount implements widget.Host.
func (h *Host) Mount(ctx context.Context, feed string) (widget.Handle, error) {
	dest, err := resolve(ctx, h.conn, h.player)
	if err != nil {
		return nil, err
	}
	var owner string
	if err := h.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.GetNameOwner", 0, dest).Store(&owner); err != nil {
		return nil, err
	}

	obj := h.conn.Object(dest, objectPath)
	if err := call(ctx, obj, "OpenUri", h.URL(feed)); err != nil {
		return nil, fmt.Errorf("open %s: %w", feed, err)
	}
	// Players start playing on OpenUri; the session starts paused.
	if err := call(ctx, obj, "Pause"); err != nil {
		h.logger.Debug().Err(err).Msg("pause after open")
	}

	hd := &handle{
		conn:   h.conn,
		obj:    obj,
		owner:  owner,
		rule:   matchRule(dest),
		events: make(chan widget.Event, 8),
		sigs:   make(chan *dbus.Signal, 16),
		done:   make(chan struct{}),
	}
	if err := h.conn.AddMatchSignalContext(ctx, hd.rule...); err != nil {
		return nil, err
	}
	h.conn.Signal(hd.sigs)
	go hd.dispatch()

	h.logger.Debug().Str("feed", feed).Str("dest", dest).Msg("widget mounted")
	return hd, nil
}

// Unmount implements widget.Host.
func (h *Host) Unmount(wh widget.Handle) error {
	hd, ok := wh.(*handle)
	if !ok {
		return fmt.Errorf("unmount: foreign handle %T", wh)
	}
	return hd.close()
}

func matchRule(dest string) []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchSender(dest),
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(propsInterface),
		dbus.WithMatchMember("PropertiesChanged"),
	}
}

// handle is one widget session in the external player.
type handle struct {
	conn  *dbus.Conn
	obj   dbus.BusObject
	owner string // unique name of the player connection
	rule  []dbus.MatchOption

	events chan widget.Event
	sigs   chan *dbus.Signal
	done   chan struct{}
	once   sync.Once
}

// Ready reports whether the player holds the opened media.
func (hd *handle) Ready(ctx context.Context) (bool, error) {
	status, err := playbackStatus(ctx, hd.obj)
	if err != nil {
		return false, err
	}
	return status != StatusStopped, nil
}

func (hd *handle) Paused(ctx context.Context) (bool, error) {
	status, err := playbackStatus(ctx, hd.obj)
	if err != nil {
		return false, err
	}
	return status != StatusPlaying, nil
}

func (hd *handle) Play(ctx context.Context) error {
	return call(ctx, hd.obj, "Play")
}

func (hd *handle) Pause(ctx context.Context) error {
	return call(ctx, hd.obj, "Pause")
}

func (hd *handle) Events() <-chan widget.Event {
	return hd.events
}

// dispatch turns PlaybackStatus changes of the player into events.
func (hd *handle) dispatch() {
	defer close(hd.events)
	for {
		select {
		case <-hd.done:
			return
		case sig, ok := <-hd.sigs:
			if !ok {
				return
			}
			if sig.Sender != hd.owner {
				continue
			}
			kind, ok := statusEvent(sig)
			if !ok {
				continue
			}
			select {
			case hd.events <- widget.Event{Kind: kind}:
			default:
				// Events are best effort; polling catches up.
			}
		}
	}
}

func (hd *handle) close() error {
	var err error
	hd.once.Do(func() {
		hd.conn.RemoveSignal(hd.sigs)
		close(hd.done)
		err = hd.conn.RemoveMatchSignal(hd.rule...)
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		if stopErr := call(ctx, hd.obj, "Stop"); err == nil {
			err = stopErr
		}
	})
	return err
}

// statusEvent extracts a play, pause or finish event from a
// PropertiesChanged signal of the player interface.
func statusEvent(sig *dbus.Signal) (widget.EventKind, bool) {
	if sig == nil || sig.Name != propsInterface+".PropertiesChanged" || len(sig.Body) < 2 {
		return 0, false
	}
	iface, ok := sig.Body[0].(string)
	if !ok || iface != playerInterface {
		return 0, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return 0, false
	}
	v, ok := changed["PlaybackStatus"]
	if !ok {
		return 0, false
	}
	status, _ := v.Value().(string)
	switch status {
	case StatusPlaying:
		return widget.EventPlay, true
	case StatusPaused:
		return widget.EventPause, true
	case StatusStopped:
		return widget.EventFinish, true
	default:
		return 0, false
	}
}

// Verify Host implements widget.Host at compile time.
var _ widget.Host = (*Host)(nil)
