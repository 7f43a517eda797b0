// Package desktop delivers alerts as freedesktop.org desktop
// notifications over the session D-Bus.
package desktop

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/goodtune/focusd/internal/notify"
)

const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyMethod    = "org.freedesktop.Notifications.Notify"
	expireTimeoutMs = 10000
)

// Sink sends alerts via org.freedesktop.Notifications.
type Sink struct {
	conn   *dbus.Conn
	logger zerolog.Logger
}

// NewSink connects to the session bus.
func NewSink(logger zerolog.Logger) (*Sink, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &Sink{
		conn:   conn,
		logger: logger.With().Str("component", "desktop-sink").Logger(),
	}, nil
}

// Close releases the bus connection.
func (s *Sink) Close() error {
	return s.conn.Close()
}

// Send delivers one alert as a desktop notification.
func (s *Sink) Send(alert notify.Alert) error {
	obj := s.conn.Object(notifyService, dbus.ObjectPath(notifyPath))
	call := obj.Call(notifyMethod, 0,
		"focusd",            // app_name
		uint32(0),           // replaces_id
		iconFor(alert.Kind), // app_icon
		alert.Title,         // summary
		alert.Body,          // body
		[]string{},          // actions
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(urgencyFor(alert.Kind)),
		},
		int32(expireTimeoutMs),
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}

	s.logger.Debug().
		Str("kind", string(alert.Kind)).
		Str("title", alert.Title).
		Msg("Desktop notification sent")
	return nil
}

func iconFor(kind notify.AlertKind) string {
	switch kind {
	case notify.KindUsageLimit:
		return "dialog-warning"
	case notify.KindBreakReminder:
		return "appointment-soon"
	case notify.KindRewardUnlocked:
		return "emblem-favorite"
	default:
		return "task-due"
	}
}

func urgencyFor(kind notify.AlertKind) byte {
	if kind == notify.KindUsageLimit {
		return 2 // critical
	}
	return 1 // normal
}
