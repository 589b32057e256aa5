package tokenfsm

import (
	"context"
	"fmt"
	"time"
)

// Reset seals the definition and reinitializes the active set to exactly the
// start states, activating each in registration order and running its entry
// chain. A start state that is also an end state is activated like any other:
// token consumption applies only to states reached via a transition.
//
// An entry action error aborts the remaining start-state activations and
// surfaces to the caller. As in dispatch, entry actions run before the state
// is recorded active, so the faulting state and everything after it stay
// inactive while the states activated before the error remain.
func (m *Machine[T, E, P]) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
	now := m.clock()
	m.active.clear()
	for _, s := range m.start {
		if err := m.entry[s].run(ctx); err != nil {
			return fmt.Errorf("entering start state %v: %w", s, err)
		}
		m.active.insert(s, now)
	}
	return nil
}

// HandleEvent runs one dispatch round for event. Every occurrence active at
// the start of the call independently fires its first matching transition, if
// any; occurrences created during the round wait for the next one. An event
// matching nothing is a no-op, not an error.
//
// The returned error is nil unless an action failed (the error is the
// action's, wrapped) or the machine was never Reset.
func (m *Machine[T, E, P]) HandleEvent(ctx context.Context, event E) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}
	return m.dispatch(ctx, event, true)
}

// Tick runs a dispatch round with no event, letting time-based transitions
// fire without event traffic. Event-matching conditions cannot hold during a
// tick; After conditions compare the machine clock against each occurrence's
// entry time. Drivers that rely on After transitions should call Tick
// periodically, since the machine never wakes itself up.
func (m *Machine[T, E, P]) Tick(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}
	var none E
	return m.dispatch(ctx, none, false)
}

// dispatch runs one evaluation round over a snapshot of the active set. A
// snapshot entry is skipped unless the registry still holds that exact
// occurrence: a token that was consumed or replaced earlier in the round must
// not act, and a token moved into an already-active state must not act twice
// on one event.
func (m *Machine[T, E, P]) dispatch(ctx context.Context, event E, hasEvent bool) error {
	now := m.clock()
	for _, tok := range m.active.snapshot() {
		if m.active.get(tok.state) != tok.occ {
			continue
		}
		if err := m.advance(ctx, tok, event, hasEvent, now); err != nil {
			return err
		}
	}
	return nil
}

// advance fires at most one transition for tok: the first whose condition
// holds, in descending priority order with registration order breaking ties.
// On a match it runs the source's exit chain, the transition chain, and the
// destination's entry chain, then removes the source occurrence and activates
// the destination unless it is an end state. Action errors abort before the
// registry is touched, so the source occurrence survives a failed firing.
func (m *Machine[T, E, P]) advance(ctx context.Context, tok token[T, E], event E, hasEvent bool, now time.Time) error {
	for slot, tr := range m.transitions[tok.state] {
		if !tr.when.evaluate(event, hasEvent, now, tok.occ, slot) {
			continue
		}
		if err := m.exit[tok.state].run(ctx); err != nil {
			return fmt.Errorf("leaving %v: %w", tok.state, err)
		}
		if err := tr.chain.run(ctx); err != nil {
			return fmt.Errorf("transition %v -> %v: %w", tr.source, tr.dest, err)
		}
		if err := m.entry[tr.dest].run(ctx); err != nil {
			return fmt.Errorf("entering %v: %w", tr.dest, err)
		}
		m.active.remove(tok.state)
		if _, end := m.endSet[tr.dest]; !end {
			m.active.insert(tr.dest, now)
		}
		return nil
	}
	return nil
}
