package driver

import (
	"cmp"
	"context"
	"errors"
	"sync"
	"time"
)

// Runner errors.
var (
	// ErrQueueFull is returned by Send when the event queue is at capacity.
	ErrQueueFull = errors.New("driver: event queue full")

	// ErrStopped is returned by Send once the dispatch loop has ended,
	// whether through Stop or through cancellation of the Start context.
	ErrStopped = errors.New("driver: runner stopped")
)

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// TickInterval is the period between Tick calls. Zero disables ticking;
	// machines without After transitions do not need it.
	TickInterval time.Duration

	// QueueSize is the event queue capacity. Defaults to 64.
	QueueSize int
}

// Runner drives a machine from its own goroutine: events queued with Send
// are dispatched in order, interleaved with periodic ticks so time-based
// transitions fire without event traffic. Dispatch errors do not stop the
// loop; they reach the application through the driver's observers.
type Runner[T comparable, E comparable, P cmp.Ordered] struct {
	driver *Driver[T, E, P]
	tick   time.Duration
	events chan E

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
	done    bool
}

// NewRunner creates a Runner over driver. Start must be called before the
// runner does anything; events may be queued with Send beforehand and are
// dispatched once it runs.
func NewRunner[T comparable, E comparable, P cmp.Ordered](driver *Driver[T, E, P], cfg RunnerConfig) *Runner[T, E, P] {
	size := cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	return &Runner[T, E, P]{
		driver:  driver,
		tick:    cfg.TickInterval,
		events:  make(chan E, size),
		stopped: make(chan struct{}),
	}
}

// Start resets the machine and launches the dispatch loop. It returns the
// reset error, if any, without starting the loop. The loop runs until ctx is
// cancelled or Stop is called.
func (r *Runner[T, E, P]) Start(ctx context.Context) error {
	if err := r.driver.Reset(ctx); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	go r.loop(loopCtx)
	return nil
}

// Send queues an event for dispatch. It never blocks: when the queue is full
// it returns ErrQueueFull and drops the event.
func (r *Runner[T, E, P]) Send(event E) error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done {
		return ErrStopped
	}

	select {
	case r.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop ends the dispatch loop and waits for it to wind down. Events still
// queued are discarded. Stop is safe to call more than once, but only after
// Start.
func (r *Runner[T, E, P]) Stop() {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		<-r.stopped
		return
	}
	r.done = true
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	<-r.stopped
}

func (r *Runner[T, E, P]) loop(ctx context.Context) {
	// However the loop ends, further sends must fail rather than queue into
	// a channel nothing drains.
	defer func() {
		r.mu.Lock()
		r.done = true
		r.mu.Unlock()
		close(r.stopped)
	}()

	var tickC <-chan time.Time
	if r.tick > 0 {
		ticker := time.NewTicker(r.tick)
		defer ticker.Stop()
		tickC = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.events:
			_ = r.driver.HandleEvent(ctx, event)
		case <-tickC:
			_ = r.driver.Tick(ctx)
		}
	}
}
