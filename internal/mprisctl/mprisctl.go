// Package mprisctl drives other media players over the MPRIS D-Bus API.
//
// It provides the widget Host used to play mixes in an external player,
// and the sweeper that pauses every other player on the session bus.
package mprisctl

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	busPrefix       = "org.mpris.MediaPlayer2."
	objectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootInterface   = "org.mpris.MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
	propsInterface  = "org.freedesktop.DBus.Properties"
)

// Playback statuses reported by MPRIS players.
const (
	StatusPlaying = "Playing"
	StatusPaused  = "Paused"
	StatusStopped = "Stopped"
)

// ErrNoPlayer is returned when the configured player is not on the bus.
var ErrNoPlayer = errors.New("mpris player not found")

// Player describes one MPRIS player on the session bus.
type Player struct {
	Name     string // bus name suffix, e.g. "mpv" or "firefox.instance_1_42"
	Identity string
	Status   string
}

// BusName returns the full D-Bus name of the player.
func (p Player) BusName() string {
	return busPrefix + p.Name
}

// playerNames returns the suffixes of the MPRIS names in names, sorted,
// without those in exclude.
func playerNames(names []string, exclude ...string) []string {
	var out []string
	for _, n := range names {
		suffix, ok := strings.CutPrefix(n, busPrefix)
		if !ok || suffix == "" {
			continue
		}
		if slices.ContainsFunc(exclude, func(e string) bool { return matches(suffix, e) }) {
			continue
		}
		out = append(out, suffix)
	}
	slices.Sort(out)
	return out
}

// matches reports whether the player suffix belongs to name. Players with
// several instances append ".instance..." to their base name.
func matches(suffix, name string) bool {
	if name == "" {
		return false
	}
	return suffix == name || strings.HasPrefix(suffix, name+".")
}

func listNames(ctx context.Context, conn *dbus.Conn) ([]string, error) {
	var names []string
	err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names)
	return names, err
}

// resolve returns the full bus name of the first player matching name.
func resolve(ctx context.Context, conn *dbus.Conn, name string) (string, error) {
	names, err := listNames(ctx, conn)
	if err != nil {
		return "", err
	}
	for _, suffix := range playerNames(names) {
		if matches(suffix, name) {
			return busPrefix + suffix, nil
		}
	}
	return "", ErrNoPlayer
}

func property(ctx context.Context, obj dbus.BusObject, iface, name string) (dbus.Variant, error) {
	var v dbus.Variant
	err := obj.CallWithContext(ctx, propsInterface+".Get", 0, iface, name).Store(&v)
	return v, err
}

func stringProperty(ctx context.Context, obj dbus.BusObject, iface, name string) (string, error) {
	v, err := property(ctx, obj, iface, name)
	if err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", errors.New(name + ": not a string")
	}
	return s, nil
}

func playbackStatus(ctx context.Context, obj dbus.BusObject) (string, error) {
	return stringProperty(ctx, obj, playerInterface, "PlaybackStatus")
}

func call(ctx context.Context, obj dbus.BusObject, method string, args ...any) error {
	return obj.CallWithContext(ctx, playerInterface+"."+method, 0, args...).Err
}

// Players lists the MPRIS players on the session bus.
func Players(ctx context.Context, conn *dbus.Conn) ([]Player, error) {
	names, err := listNames(ctx, conn)
	if err != nil {
		return nil, err
	}
	suffixes := playerNames(names)
	players := make([]Player, 0, len(suffixes))
	for _, suffix := range suffixes {
		obj := conn.Object(busPrefix+suffix, objectPath)
		p := Player{Name: suffix}
		p.Identity, _ = stringProperty(ctx, obj, rootInterface, "Identity")
		p.Status, _ = playbackStatus(ctx, obj)
		players = append(players, p)
	}
	return players, nil
}
