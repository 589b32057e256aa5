package tokenfsm

import "time"

// occurrence is the runtime record of one active state: when it was entered
// and the per-transition scratch used by accumulating conditions. Scratch
// lives here rather than in the shared Condition values and dies with the
// occurrence.
type occurrence[E comparable] struct {
	enteredAt time.Time
	matches   map[int]map[E]struct{}
}

// seen returns the observed-event set for the transition at slot, creating it
// on first use. The maps are allocated lazily because most occurrences never
// face a multi-event condition.
func (o *occurrence[E]) seen(slot int) map[E]struct{} {
	if o.matches == nil {
		o.matches = make(map[int]map[E]struct{})
	}
	set := o.matches[slot]
	if set == nil {
		set = make(map[E]struct{})
		o.matches[slot] = set
	}
	return set
}

// token pairs a state with the exact occurrence that was active when a
// dispatch round began. Dispatch compares occurrence identity so a fresh
// occurrence created mid-round is never processed in that round.
type token[T comparable, E comparable] struct {
	state T
	occ   *occurrence[E]
}

// activeSet is the Active-State Registry: the mutable mapping from currently
// active states to their occurrences. Activation order is preserved so that
// dispatch rounds and ActiveStates are deterministic.
type activeSet[T comparable, E comparable] struct {
	occ   map[T]*occurrence[E]
	order []T
}

func newActiveSet[T comparable, E comparable]() *activeSet[T, E] {
	return &activeSet[T, E]{occ: make(map[T]*occurrence[E])}
}

// insert activates state as of now. A state cannot be active twice: inserting
// an already-active state keeps its activation slot but installs a fresh
// occurrence, resetting its timer and accumulators.
func (r *activeSet[T, E]) insert(state T, now time.Time) {
	if _, active := r.occ[state]; !active {
		r.order = append(r.order, state)
	}
	r.occ[state] = &occurrence[E]{enteredAt: now}
}

func (r *activeSet[T, E]) remove(state T) {
	if _, active := r.occ[state]; !active {
		return
	}
	delete(r.occ, state)
	for i := range r.order {
		if r.order[i] == state {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *activeSet[T, E]) clear() {
	clear(r.occ)
	r.order = r.order[:0]
}

func (r *activeSet[T, E]) contains(state T) bool {
	_, active := r.occ[state]
	return active
}

func (r *activeSet[T, E]) get(state T) *occurrence[E] {
	return r.occ[state]
}

// snapshot captures the active set in activation order. Dispatch iterates the
// copy, never the live registry.
func (r *activeSet[T, E]) snapshot() []token[T, E] {
	snap := make([]token[T, E], 0, len(r.order))
	for _, s := range r.order {
		snap = append(snap, token[T, E]{state: s, occ: r.occ[s]})
	}
	return snap
}

// states returns the active states in activation order.
func (r *activeSet[T, E]) states() []T {
	return append([]T(nil), r.order...)
}
