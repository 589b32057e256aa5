// Package builder assembles tokenfsm machines from a fluent description.
//
// The builder accumulates immutable declaration records and defers all
// validation to Build, so a chart can be written as one uninterrupted chain
// without per-call error handling:
//
//	b := builder.New[string, string, int](0)
//	b.State("loader").AsStart().On("done").Then("intro")
//	b.State("intro").On("done").Then("menu")
//	b.States("intro", "menu").OnExit(cleanup)
//	b.State("exit").AsEnd()
//	m, err := b.Build()
//
// Build reports every recorded problem at once, joined into a single error.
package builder

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/tokenflow/tokenfsm"
)

// Builder collects a machine description. The zero value is not usable;
// construct with New.
type Builder[T comparable, E comparable, P cmp.Ordered] struct {
	defaultPriority P
	machineOpts     []tokenfsm.Option
	decls           []decl[T, E, P]
	errs            []error
}

// decl is one recorded construction step. Build replays the declarations in
// order, which makes transition registration order, and with it equal-priority
// tie-breaking, follow the order of the fluent calls.
type decl[T comparable, E comparable, P cmp.Ordered] struct {
	apply func(m *tokenfsm.Machine[T, E, P]) error
}

// New creates a Builder. Transitions declared without WithPriority get
// defaultPriority. Machine options are passed through to tokenfsm.New.
func New[T comparable, E comparable, P cmp.Ordered](defaultPriority P, opts ...tokenfsm.Option) *Builder[T, E, P] {
	return &Builder[T, E, P]{defaultPriority: defaultPriority, machineOpts: opts}
}

// State opens a scope over a single state.
func (b *Builder[T, E, P]) State(state T) *StateSet[T, E, P] {
	return &StateSet[T, E, P]{b: b, states: []T{state}}
}

// States opens a scope over several states; every declaration made on the
// scope applies to each of them. Calling it with no states is recorded as an
// error.
func (b *Builder[T, E, P]) States(states ...T) *StateSet[T, E, P] {
	if len(states) == 0 {
		b.errs = append(b.errs, errors.New("builder: States called with no states"))
	}
	return &StateSet[T, E, P]{b: b, states: append([]T(nil), states...)}
}

// Build constructs the machine and replays every recorded declaration against
// it. All accumulated errors, from the fluent calls and from registration,
// are joined into the returned error; on any error the machine is discarded.
func (b *Builder[T, E, P]) Build() (*tokenfsm.Machine[T, E, P], error) {
	errs := append([]error(nil), b.errs...)
	m := tokenfsm.New[T, E, P](b.machineOpts...)
	for _, d := range b.decls {
		if err := d.apply(m); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

func (b *Builder[T, E, P]) record(apply func(m *tokenfsm.Machine[T, E, P]) error) {
	b.decls = append(b.decls, decl[T, E, P]{apply: apply})
}

// StateSet is a fluent scope over one or more source states.
type StateSet[T comparable, E comparable, P cmp.Ordered] struct {
	b      *Builder[T, E, P]
	states []T
}

// Except narrows the scope, dropping the listed states. Narrowing the scope
// to nothing is recorded as an error.
func (s *StateSet[T, E, P]) Except(states ...T) *StateSet[T, E, P] {
	kept := make([]T, 0, len(s.states))
	for _, st := range s.states {
		if !containsState(states, st) {
			kept = append(kept, st)
		}
	}
	if len(kept) == 0 && len(s.states) > 0 {
		s.b.errs = append(s.b.errs, fmt.Errorf("builder: Except(%v) leaves no states in scope", states))
	}
	return &StateSet[T, E, P]{b: s.b, states: kept}
}

// AsStart marks every state in scope as a start state.
func (s *StateSet[T, E, P]) AsStart() *StateSet[T, E, P] {
	for _, st := range s.states {
		state := st
		s.b.record(func(m *tokenfsm.Machine[T, E, P]) error {
			return m.AddStartState(state)
		})
	}
	return s
}

// AsEnd marks every state in scope as an end state.
func (s *StateSet[T, E, P]) AsEnd() *StateSet[T, E, P] {
	for _, st := range s.states {
		state := st
		s.b.record(func(m *tokenfsm.Machine[T, E, P]) error {
			return m.AddEndState(state)
		})
	}
	return s
}

// OnEntry appends actions to the entry chain of every state in scope.
func (s *StateSet[T, E, P]) OnEntry(actions ...tokenfsm.Action) *StateSet[T, E, P] {
	for _, st := range s.states {
		state := st
		s.b.record(func(m *tokenfsm.Machine[T, E, P]) error {
			return m.AddEntryActions(state, actions...)
		})
	}
	return s
}

// OnExit appends actions to the exit chain of every state in scope.
func (s *StateSet[T, E, P]) OnExit(actions ...tokenfsm.Action) *StateSet[T, E, P] {
	for _, st := range s.states {
		state := st
		s.b.record(func(m *tokenfsm.Machine[T, E, P]) error {
			return m.AddExitActions(state, actions...)
		})
	}
	return s
}

// On opens a transition from every state in scope. One event guards with a
// single-event match; several guard with an all-of match that accumulates the
// events in any order.
func (s *StateSet[T, E, P]) On(first E, rest ...E) *Edge[T, E, P] {
	if len(rest) == 0 {
		return s.When(tokenfsm.Is(first))
	}
	return s.When(tokenfsm.AllOf(first, rest...))
}

// When opens a transition guarded by an explicit condition.
func (s *StateSet[T, E, P]) When(when tokenfsm.Condition[E]) *Edge[T, E, P] {
	return &Edge[T, E, P]{set: s, when: when, priority: s.b.defaultPriority}
}

// Always opens a transition that fires on every dispatch pass.
func (s *StateSet[T, E, P]) Always() *Edge[T, E, P] {
	return s.When(tokenfsm.Always[E]())
}

// Never opens a transition that never fires.
func (s *StateSet[T, E, P]) Never() *Edge[T, E, P] {
	return s.When(tokenfsm.Never[E]())
}

// After opens a transition that fires once the source state has been active
// for at least wait.
func (s *StateSet[T, E, P]) After(wait time.Duration) *Edge[T, E, P] {
	return s.When(tokenfsm.After[E](wait))
}

// Edge is a transition under construction: condition fixed, destination
// pending. Then completes it.
type Edge[T comparable, E comparable, P cmp.Ordered] struct {
	set      *StateSet[T, E, P]
	when     tokenfsm.Condition[E]
	priority P
	actions  []tokenfsm.Action
}

// WithPriority overrides the builder's default priority for this edge.
func (e *Edge[T, E, P]) WithPriority(priority P) *Edge[T, E, P] {
	e.priority = priority
	return e
}

// Do appends actions to run when this edge fires, after the source's exit
// chain and before the destination's entry chain.
func (e *Edge[T, E, P]) Do(actions ...tokenfsm.Action) *Edge[T, E, P] {
	e.actions = append(e.actions, actions...)
	return e
}

// Then completes the edge into dest, one transition per state in scope, and
// returns the scope so further declarations can chain.
func (e *Edge[T, E, P]) Then(dest T) *StateSet[T, E, P] {
	when, priority := e.when, e.priority
	actions := append([]tokenfsm.Action(nil), e.actions...)
	for _, st := range e.set.states {
		source := st
		e.set.b.record(func(m *tokenfsm.Machine[T, E, P]) error {
			return m.AddTransition(source, dest, when, priority, actions...)
		})
	}
	return e.set
}

func containsState[T comparable](states []T, state T) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
