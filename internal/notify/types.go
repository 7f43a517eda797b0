package notify

import "time"

// AlertKind identifies which trigger produced an alert.
type AlertKind string

const (
	KindDailyReminder  AlertKind = "daily-reminder"
	KindUsageLimit     AlertKind = "usage-limit"
	KindBreakReminder  AlertKind = "break-reminder"
	KindRewardUnlocked AlertKind = "reward-unlocked"
)

// Alert is one notification presented to the user.
type Alert struct {
	Kind      AlertKind
	Title     string
	Body      string
	CreatedAt time.Time
}

// Sink delivers visible alerts to the user.
type Sink interface {
	Send(alert Alert) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(alert Alert) error

func (f SinkFunc) Send(alert Alert) error {
	return f(alert)
}

// ChannelState tracks one alert channel's lifecycle. A dismissed alert
// returns the channel straight to idle.
type ChannelState string

const (
	StateIdle    ChannelState = "idle"
	StatePending ChannelState = "pending"
	StateVisible ChannelState = "visible"
)

// channelID names the two single-slot alert channels.
type channelID string

const (
	channelUsage    channelID = "usage"
	channelReminder channelID = "reminder"
)

// channelFor routes an alert kind to its channel. Usage alerts, break
// reminders and reward unlocks share one slot; daily task reminders get
// their own.
func channelFor(kind AlertKind) channelID {
	if kind == KindDailyReminder {
		return channelReminder
	}
	return channelUsage
}
