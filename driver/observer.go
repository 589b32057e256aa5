package driver

import (
	"context"
	"log/slog"
	"time"
)

// Kind discriminates driver notifications.
type Kind uint8

const (
	// KindReset marks a notification emitted after Machine.Reset.
	KindReset Kind = iota + 1
	// KindEvent marks a notification emitted after Machine.HandleEvent.
	KindEvent
	// KindTick marks a notification emitted after Machine.Tick.
	KindTick
)

// String names the kind for logs.
func (k Kind) String() string {
	switch k {
	case KindReset:
		return "reset"
	case KindEvent:
		return "event"
	case KindTick:
		return "tick"
	default:
		return "unknown"
	}
}

// Notification describes one completed machine call. Active is the active
// set right after the call; under concurrent drivers another call may already
// have run by the time an observer looks at it.
type Notification[T comparable, E comparable] struct {
	MachineID string
	Kind      Kind
	Event     E // meaningful only when Kind is KindEvent
	Active    []T
	Err       error
	At        time.Time
}

// Observer is notified after every driver call, outside the machine lock.
// Notify runs on the driver's goroutine: implementations that can block
// should hand the notification off, the way Hub does.
type Observer[T comparable, E comparable] interface {
	Notify(ctx context.Context, n Notification[T, E])
}

// LogObserver writes notifications to a slog logger: info for clean calls,
// error for calls that surfaced an action fault.
type LogObserver[T comparable, E comparable] struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver. A nil logger falls back to
// slog.Default.
func NewLogObserver[T comparable, E comparable](logger *slog.Logger) *LogObserver[T, E] {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver[T, E]{logger: logger}
}

// Notify implements Observer.
func (o *LogObserver[T, E]) Notify(ctx context.Context, n Notification[T, E]) {
	attrs := []slog.Attr{
		slog.String("machine_id", n.MachineID),
		slog.String("kind", n.Kind.String()),
		slog.Any("active", n.Active),
	}
	if n.Kind == KindEvent {
		attrs = append(attrs, slog.Any("event", n.Event))
	}
	if n.Err != nil {
		attrs = append(attrs, slog.Any("error", n.Err))
		o.logger.LogAttrs(ctx, slog.LevelError, "machine call failed", attrs...)
		return
	}
	o.logger.LogAttrs(ctx, slog.LevelInfo, "machine call handled", attrs...)
}
