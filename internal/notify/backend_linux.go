//go:build linux

package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	fdoService   = "org.freedesktop.Notifications"
	fdoPath      = "/org/freedesktop/Notifications"
	fdoNotify    = "org.freedesktop.Notifications.Notify"
	appName      = "SnapClick"
	expireMillis = int32(3000)
)

// dbusBackend talks to the freedesktop notification daemon on the session
// bus. Each notification replaces the previous one.
type dbusBackend struct {
	mu   sync.Mutex
	conn *dbus.Conn
	last uint32
}

// NewPlatformBackend returns the freedesktop D-Bus backend.
func NewPlatformBackend(_ zerolog.Logger) Backend {
	return &dbusBackend{}
}

func (b *dbusBackend) Send(ctx context.Context, title, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		b.conn = conn
	}

	obj := b.conn.Object(fdoService, fdoPath)
	call := obj.CallWithContext(ctx, fdoNotify, 0,
		appName,
		b.last,
		"input-mouse",
		title,
		message,
		[]string{},
		map[string]dbus.Variant{},
		expireMillis,
	)
	if call.Err != nil {
		return fmt.Errorf("notify call failed: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err == nil {
		b.last = id
	}
	return nil
}
