package tokenfsm

import "cmp"

// TransitionView describes one registered transition for tooling: the graph
// exporter, debug dumps, and tests. Condition is the rendered form, not the
// value, so a view can never evaluate or mutate anything.
type TransitionView[T comparable, P cmp.Ordered] struct {
	Source    T
	Dest      T
	Condition string
	Priority  P
}

// Definition is a read-only structural snapshot of the automaton: every known
// state in first-reference order, the start and end state lists, and the
// transition table with each source's transitions in evaluation order.
type Definition[T comparable, P cmp.Ordered] struct {
	ID          string
	States      []T
	StartStates []T
	EndStates   []T
	Transitions []TransitionView[T, P]
}

// Definition snapshots the machine's structure. It may be called in either
// phase; tooling typically calls it once after construction.
func (m *Machine[T, E, P]) Definition() Definition[T, P] {
	m.mu.Lock()
	defer m.mu.Unlock()
	def := Definition[T, P]{
		ID:          m.id,
		States:      append([]T(nil), m.known...),
		StartStates: append([]T(nil), m.start...),
		EndStates:   append([]T(nil), m.end...),
	}
	for _, state := range m.known {
		for _, tr := range m.transitions[state] {
			def.Transitions = append(def.Transitions, TransitionView[T, P]{
				Source:    tr.source,
				Dest:      tr.dest,
				Condition: tr.when.String(),
				Priority:  tr.priority,
			})
		}
	}
	return def
}
