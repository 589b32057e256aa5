package driver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenflow/tokenfsm/driver"
)

func note(kind driver.Kind, active ...string) driver.Notification[string, string] {
	return driver.Notification[string, string]{
		MachineID: "hub-test",
		Kind:      kind,
		Active:    active,
		At:        time.Now(),
	}
}

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := driver.NewHub[string, string](4)
	defer hub.Close()

	ctx := context.Background()
	a := hub.Subscribe(ctx)
	b := hub.Subscribe(ctx)

	hub.Notify(ctx, note(driver.KindReset, "LOADER"))

	for _, sub := range []*driver.Subscription[string, string]{a, b} {
		select {
		case n := <-sub.C():
			assert.Equal(t, driver.KindReset, n.Kind)
			assert.Equal(t, []string{"LOADER"}, n.Active)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	hub := driver.NewHub[string, string](1)
	defer hub.Close()

	ctx := context.Background()
	slow := hub.Subscribe(ctx)

	// The first notification fills the buffer; the second finds it full and
	// evicts the subscriber instead of blocking.
	hub.Notify(ctx, note(driver.KindEvent, "a"))
	hub.Notify(ctx, note(driver.KindEvent, "b"))

	n, ok := <-slow.C()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, n.Active)

	require.Eventually(t, func() bool {
		select {
		case _, open := <-slow.C():
			return !open
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond, "slow subscriber channel should close")
}

func TestHubContextCancelEndsSubscription(t *testing.T) {
	hub := driver.NewHub[string, string](4)
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := hub.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-sub.C():
			return !open
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Notifications after cancellation go nowhere, without panicking.
	hub.Notify(context.Background(), note(driver.KindTick))
}

func TestHubCloseWithBackgroundSubscriber(t *testing.T) {
	hub := driver.NewHub[string, string](4)
	sub := hub.Subscribe(context.Background())

	// Background has no Done channel, so no watcher holds Close up.
	done := make(chan struct{})
	go func() {
		hub.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	_, open := <-sub.C()
	assert.False(t, open)
}

func TestHubCloseWaitsForContextWatchers(t *testing.T) {
	hub := driver.NewHub[string, string](4)
	ctx, cancel := context.WithCancel(context.Background())
	hub.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		hub.Close()
		close(done)
	}()

	// The subscriber's watcher is still parked on its context, so Close
	// cannot have finished yet.
	select {
	case <-done:
		t.Fatal("Close returned while a subscriber context was still live")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after cancellation")
	}
}

func TestHubClose(t *testing.T) {
	hub := driver.NewHub[string, string](4)
	ctx := context.Background()
	sub := hub.Subscribe(ctx)

	hub.Close()
	hub.Close() // idempotent

	_, open := <-sub.C()
	assert.False(t, open)

	// Subscribing to a closed hub yields an already-closed subscription.
	late := hub.Subscribe(ctx)
	_, open = <-late.C()
	assert.False(t, open)

	// Broadcasting on a closed hub is a no-op.
	hub.Notify(ctx, note(driver.KindReset))
}
