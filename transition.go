package tokenfsm

import "cmp"

// transition is one immutable edge of the automaton: source, destination,
// guarding condition, priority, and the action chain fired with it. Many
// transitions may share a source; their relative order is fixed at
// registration and never changes afterwards.
type transition[T comparable, E comparable, P cmp.Ordered] struct {
	source   T
	dest     T
	when     Condition[E]
	priority P
	chain    ActionChain
}

// insertByPriority places tr into list keeping descending priority order.
// At equal priority the new transition goes after the existing ones, so
// registration order breaks ties. Dispatch walks the result as-is.
func insertByPriority[T comparable, E comparable, P cmp.Ordered](list []transition[T, E, P], tr transition[T, E, P]) []transition[T, E, P] {
	at := len(list)
	for i := range list {
		if list[i].priority < tr.priority {
			at = i
			break
		}
	}
	list = append(list, transition[T, E, P]{})
	copy(list[at+1:], list[at:])
	list[at] = tr
	return list
}
