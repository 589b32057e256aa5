package tokenfsm

import "context"

// Action is a side-effecting callback run when a state is entered or exited,
// or when a transition fires. A non-nil error aborts the dispatch round and
// surfaces to the driver unchanged.
//
// Actions run while the machine's internal lock is held: an Action must not
// call back into the Machine that invoked it. Actions receive no event
// because entry chains also run from Reset, where no event exists; a
// transition action that needs its triggering event can close over it, since
// the event set is fixed at registration time.
type Action func(ctx context.Context) error

// ActionChain is an ordered sequence of actions. Invoking the chain invokes
// each action in order, stopping at the first error. Chains compose by
// concatenation: appending one chain to another preserves both orders.
type ActionChain []Action

// Chain builds an ActionChain that runs the given actions in order.
func Chain(actions ...Action) ActionChain {
	return ActionChain(actions)
}

// Append returns a chain with more actions added after the existing ones.
// The receiver is not modified.
func (c ActionChain) Append(actions ...Action) ActionChain {
	return append(c[:len(c):len(c)], actions...)
}

// run invokes every action in order. The first error stops the chain.
func (c ActionChain) run(ctx context.Context) error {
	for _, a := range c {
		if err := a(ctx); err != nil {
			return err
		}
	}
	return nil
}
