package tokenfsm

import (
	"cmp"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Machine is a finite automaton that can hold several states active at once.
// Each active state is an independently progressing token sharing one event
// stream: a single HandleEvent call can fire zero, one, or many transitions,
// at most one per active source state.
//
// T identifies states, E identifies events; both are user-supplied opaque
// values. P orders transition priorities, higher firing first.
//
// A Machine has two phases. During construction the Add methods populate the
// definition: transitions, start and end states, entry and exit chains.
// The first Reset seals the definition and creates the active set; after that
// only Reset, HandleEvent, Tick, and the read accessors may be used. All of
// them serialize on one internal lock, so a Machine is safe for concurrent
// drivers, with each call running to completion before the next begins.
type Machine[T comparable, E comparable, P cmp.Ordered] struct {
	id    string
	clock func() time.Time

	mu          sync.Mutex
	transitions map[T][]transition[T, E, P]
	start       []T
	startSet    map[T]struct{}
	end         []T
	endSet      map[T]struct{}
	entry       map[T]ActionChain
	exit        map[T]ActionChain
	known       []T
	knownSet    map[T]struct{}

	active  *activeSet[T, E]
	started bool
}

// New creates an empty Machine. Without WithID the machine gets a random
// UUID; without WithClock it reads time.Now.
func New[T comparable, E comparable, P cmp.Ordered](opts ...Option) *Machine[T, E, P] {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	return &Machine[T, E, P]{
		id:          cfg.id,
		clock:       cfg.clock,
		transitions: make(map[T][]transition[T, E, P]),
		startSet:    make(map[T]struct{}),
		endSet:      make(map[T]struct{}),
		entry:       make(map[T]ActionChain),
		exit:        make(map[T]ActionChain),
		knownSet:    make(map[T]struct{}),
		active:      newActiveSet[T, E](),
	}
}

// ID returns the machine identifier used for log and trace correlation.
func (m *Machine[T, E, P]) ID() string {
	return m.id
}

// AddTransition registers a transition from source to dest guarded by when,
// with the given priority and action chain. Among transitions sharing a
// source, higher priority is evaluated first; equal priority keeps
// registration order. Source and dest become known states.
func (m *Machine[T, E, P]) AddTransition(source, dest T, when Condition[E], priority P, actions ...Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("%w: transition %v -> %v", ErrSealed, source, dest)
	}
	if err := when.validate(); err != nil {
		return fmt.Errorf("transition %v -> %v: %w", source, dest, err)
	}
	for _, a := range actions {
		if a == nil {
			return fmt.Errorf("transition %v -> %v: %w", source, dest, ErrNilAction)
		}
	}
	m.note(source)
	m.note(dest)
	m.transitions[source] = insertByPriority(m.transitions[source], transition[T, E, P]{
		source:   source,
		dest:     dest,
		when:     when,
		priority: priority,
		chain:    Chain(actions...),
	})
	return nil
}

// AddStartState marks state as a start state. Reset activates start states in
// the order they were first registered; repeated registration is a no-op.
func (m *Machine[T, E, P]) AddStartState(state T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("%w: start state %v", ErrSealed, state)
	}
	m.note(state)
	if _, ok := m.startSet[state]; !ok {
		m.startSet[state] = struct{}{}
		m.start = append(m.start, state)
	}
	return nil
}

// AddEndState marks state as an end state: reaching it via a transition runs
// its entry chain and consumes the token instead of keeping it active.
func (m *Machine[T, E, P]) AddEndState(state T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("%w: end state %v", ErrSealed, state)
	}
	m.note(state)
	if _, ok := m.endSet[state]; !ok {
		m.endSet[state] = struct{}{}
		m.end = append(m.end, state)
	}
	return nil
}

// AddEntryActions appends actions to state's entry chain.
func (m *Machine[T, E, P]) AddEntryActions(state T, actions ...Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("%w: entry actions for %v", ErrSealed, state)
	}
	for _, a := range actions {
		if a == nil {
			return fmt.Errorf("entry actions for %v: %w", state, ErrNilAction)
		}
	}
	m.note(state)
	m.entry[state] = m.entry[state].Append(actions...)
	return nil
}

// AddExitActions appends actions to state's exit chain.
func (m *Machine[T, E, P]) AddExitActions(state T, actions ...Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return fmt.Errorf("%w: exit actions for %v", ErrSealed, state)
	}
	for _, a := range actions {
		if a == nil {
			return fmt.Errorf("exit actions for %v: %w", state, ErrNilAction)
		}
	}
	m.note(state)
	m.exit[state] = m.exit[state].Append(actions...)
	return nil
}

// IsActive reports whether state is currently active.
func (m *Machine[T, E, P]) IsActive(state T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active.contains(state)
}

// ActiveStates returns the currently active states in activation order. The
// slice is a copy.
func (m *Machine[T, E, P]) ActiveStates() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active.states()
}

// note records state as known. States are registered implicitly by being
// referenced; there is no standalone state registration.
func (m *Machine[T, E, P]) note(state T) {
	if _, ok := m.knownSet[state]; ok {
		return
	}
	m.knownSet[state] = struct{}{}
	m.known = append(m.known, state)
}
