package tokenfsm

import (
	"fmt"
	"time"
)

// conditionKind discriminates the closed set of condition variants. The zero
// value is deliberately invalid so that an unset Condition fails registration
// instead of silently never firing.
type conditionKind uint8

const (
	condUnset conditionKind = iota
	condAlways
	condNever
	condSingle
	condMulti
	condAfter
)

// Condition guards a transition. It is an immutable value shared by every
// registration that uses it; accumulating variants keep their observations in
// the per-occurrence scratch owned by the active-state registry, never in the
// Condition itself.
type Condition[E comparable] struct {
	kind   conditionKind
	event  E
	events []E
	wait   time.Duration
}

// Always returns a condition that holds on every dispatch pass, including
// ticks. It backs unconditional and default transitions.
func Always[E comparable]() Condition[E] {
	return Condition[E]{kind: condAlways}
}

// Never returns a condition that never holds. A Never transition is a
// placeholder: it documents an intentionally dead edge while a chart is being
// wired, and evaluation skips past it to lower-priority transitions.
func Never[E comparable]() Condition[E] {
	return Condition[E]{kind: condNever}
}

// Is returns a condition that holds exactly when the dispatched event equals
// event.
func Is[E comparable](event E) Condition[E] {
	return Condition[E]{kind: condSingle, event: event}
}

// AllOf returns a condition that holds once every listed event has been
// observed at least once since the owning state became active. Order is
// irrelevant and duplicate arrivals are harmless. The observed set lives in
// the occurrence and is discarded when the occurrence is removed, so leaving
// the state by any route resets the accumulator.
func AllOf[E comparable](first E, rest ...E) Condition[E] {
	events := make([]E, 0, 1+len(rest))
	events = append(events, first)
	for _, e := range rest {
		if !contains(events, e) {
			events = append(events, e)
		}
	}
	return Condition[E]{kind: condMulti, events: events}
}

// After returns a condition that holds once the owning state has been active
// for at least wait. It ignores event identity entirely: any dispatch pass
// past the deadline satisfies it, including a Tick carrying no event.
func After[E comparable](wait time.Duration) Condition[E] {
	return Condition[E]{kind: condAfter, wait: wait}
}

// evaluate reports whether the condition holds for one dispatch pass.
// hasEvent is false during a tick. occ is the occurrence under evaluation and
// slot identifies the transition within its source state's fixed order, which
// keys the occurrence's observed-event scratch.
func (c Condition[E]) evaluate(event E, hasEvent bool, now time.Time, occ *occurrence[E], slot int) bool {
	switch c.kind {
	case condAlways:
		return true
	case condSingle:
		return hasEvent && event == c.event
	case condMulti:
		seen := occ.seen(slot)
		if hasEvent && contains(c.events, event) {
			seen[event] = struct{}{}
		}
		return len(seen) == len(c.events)
	case condAfter:
		return now.Sub(occ.enteredAt) >= c.wait
	default: // condNever, condUnset
		return false
	}
}

// validate rejects conditions that cannot have been produced by a
// constructor. Registration calls it so misconfiguration fails fast.
func (c Condition[E]) validate() error {
	switch c.kind {
	case condUnset:
		return ErrNoCondition
	case condMulti:
		if len(c.events) == 0 {
			return ErrNoEvents
		}
	}
	return nil
}

// String renders the condition for graph export and logs.
func (c Condition[E]) String() string {
	switch c.kind {
	case condAlways:
		return "always"
	case condNever:
		return "never"
	case condSingle:
		return fmt.Sprintf("on %v", c.event)
	case condMulti:
		return fmt.Sprintf("all of %v", c.events)
	case condAfter:
		return fmt.Sprintf("after %v", c.wait)
	default:
		return "unset"
	}
}

func contains[E comparable](events []E, event E) bool {
	for _, e := range events {
		if e == event {
			return true
		}
	}
	return false
}
