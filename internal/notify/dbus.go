//go:build linux

package notify

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"

	callTimeout = 2 * time.Second
)

// caller is the part of dbus.BusObject the notifier uses.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...any) *dbus.Call
}

// dbusNotifier sends notifications via D-Bus.
type dbusNotifier struct {
	obj caller
}

// New connects to the session bus notification daemon.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	return &dbusNotifier{obj: conn.Object(dbusNotifyDest, dbusNotifyPath)}, nil
}

func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
		"category":      dbus.MakeVariant("x-wavedeck.nowplaying"),
	}
	if filepath.IsAbs(n.Icon) {
		h["image-path"] = dbus.MakeVariant(n.Icon)
	}
	return h
}

// Notify sends notif and returns the id the daemon assigned. The method is
// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout).
func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var id uint32
	err := n.obj.CallWithContext(ctx,
		dbusNotifyInterface+".Notify",
		0,
		appName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		[]string{},
		hints(notif),
		notif.Timeout,
	).Store(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Close closes a notification by ID.
func (n *dbusNotifier) Close(id uint32) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	return n.obj.CallWithContext(ctx, dbusNotifyInterface+".CloseNotification", 0, id).Err
}
