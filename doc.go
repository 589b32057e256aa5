// Package tokenfsm is a runtime for concurrent, multi-active-state finite
// automata: one automaton definition over which several states can be active
// simultaneously, each an independent token advancing over a single shared
// event stream.
//
// # Model
//
// A Machine[T, E, P] is defined by transitions {source, dest, condition,
// priority, actions}, a set of start states, a set of end states, and
// per-state entry and exit action chains. States and events are opaque
// comparable values; priorities are ordered, higher firing first.
//
// Conditions form a closed set of variants: Always, Never, Is (single event
// match), AllOf (order-independent accumulation of several events), and
// After (elapsed time in state). Accumulating and time-based conditions keep
// their working state per active occurrence, owned by the machine's registry
// and discarded whenever the occurrence ends, so condition values themselves
// stay immutable and shareable.
//
// # Dispatch
//
// Reset activates the start states. Each HandleEvent call takes a snapshot of
// the active set and lets every snapshotted occurrence fire at most its first
// matching transition: exit chain, transition chain, entry chain, then the
// token moves. A destination that is an end state consumes the token after
// its entry chain runs. Because only the snapshot is consulted, a single
// event can never chain through a freshly entered state.
//
// Tick runs the same pass with no event so that After transitions fire
// without event traffic; the machine never wakes itself, so drivers with
// timer transitions call Tick periodically (package driver ships a runner
// that does this).
//
// # Construction
//
//	m := tokenfsm.New[GameState, GameEvent, int]()
//	err := errors.Join(
//		m.AddStartState(Loader),
//		m.AddEndState(Exit),
//		m.AddTransition(Loader, Intro, tokenfsm.Is(Done), 0),
//		m.AddTransition(Menu, Exit, tokenfsm.Is(Escape), 0),
//	)
//
// The fluent layer in package builder wraps this registration interface; the
// machine itself only checks and stores. The first Reset seals the
// definition: registration afterwards returns ErrSealed.
//
// # Concurrency
//
// All driver-phase methods serialize on one internal lock spanning the whole
// call, so concurrent drivers are safe but actions must never call back into
// the machine that is running them. The core performs no I/O and never
// blocks; time comes from an injectable clock (WithClock).
package tokenfsm
