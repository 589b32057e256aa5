// Package testutil provides helpers shared by the tokenfsm test suites: a
// manual clock for driving After conditions deterministically and a recorder
// that fabricates actions which log their execution order.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/tokenflow/tokenfsm"
)

// Clock is a manual time source. Pass its Now method to tokenfsm.WithClock
// and move it with Advance or Set; nothing ever moves it implicitly.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a Clock reading start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current manual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Recorder hands out named actions and keeps the order they executed in.
// The zero value is ready to use.
type Recorder struct {
	mu    sync.Mutex
	steps []string
}

// Act returns an action that records name when it runs.
func (r *Recorder) Act(name string) tokenfsm.Action {
	return func(context.Context) error {
		r.record(name)
		return nil
	}
}

// Fail returns an action that records name and then fails with err.
func (r *Recorder) Fail(name string, err error) tokenfsm.Action {
	return func(context.Context) error {
		r.record(name)
		return err
	}
}

// Steps returns a copy of the recorded execution order.
func (r *Recorder) Steps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

// Clear forgets everything recorded so far.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = r.steps[:0]
}

func (r *Recorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, name)
}
