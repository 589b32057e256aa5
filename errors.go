package tokenfsm

import "errors"

// Configuration and driver-contract errors. Dispatch itself is total: an
// event that matches no active occurrence's transitions is a no-op, never an
// error. Errors returned by HandleEvent, Tick, and Reset beyond the
// sentinels below originate in user actions and are passed through wrapped.
var (
	// ErrSealed is returned by registration calls made after the first Reset.
	ErrSealed = errors.New("tokenfsm: definition sealed after first reset")

	// ErrNotStarted is returned by HandleEvent and Tick before the first Reset.
	ErrNotStarted = errors.New("tokenfsm: machine has not been reset")

	// ErrNilAction is returned when a nil Action is registered.
	ErrNilAction = errors.New("tokenfsm: nil action")

	// ErrNoCondition is returned when a transition is registered with the
	// zero Condition value.
	ErrNoCondition = errors.New("tokenfsm: condition not set")

	// ErrNoEvents is returned when a multi-event condition is assembled from
	// an empty event list.
	ErrNoEvents = errors.New("tokenfsm: multi-event condition needs at least one event")
)
