package tokenfsm

import "time"

// Option configures a Machine at construction.
type Option func(*options)

type options struct {
	id    string
	clock func() time.Time
}

func defaultOptions() options {
	return options{clock: time.Now}
}

// WithClock sets the time source consulted once per Reset, HandleEvent, and
// Tick call. After conditions compare against it, so tests inject a manual
// clock here. Nil is ignored.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithID replaces the generated machine identifier. Empty is ignored.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}
