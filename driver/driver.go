// Package driver runs tokenfsm machines against live event sources.
//
// The core Machine is a passive library: something has to feed it events,
// tick its timers, and tell the rest of the system what happened. This
// package supplies that layer in three parts:
//
//   - Driver wraps a machine, traces every call through OpenTelemetry, and
//     fans completion notifications out to observers.
//   - Observer implementations consume those notifications: LogObserver
//     writes them to slog, Hub re-broadcasts them to channel subscribers.
//   - Runner owns a goroutine that drains an event queue into the driver and
//     ticks it on a fixed interval, for machines with After transitions.
//
// Machine actions must never touch the machine that runs them; anything that
// wants to react to machine progress belongs here, behind an Observer, where
// the machine lock is no longer held.
package driver

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tokenflow/tokenfsm"
)

const tracerName = "github.com/tokenflow/tokenfsm/driver"

// Config configures a Driver.
type Config[T comparable, E comparable] struct {
	// Observers are notified after every call, in order, on the calling
	// goroutine.
	Observers []Observer[T, E]

	// TracerProvider overrides the global OpenTelemetry provider. Leave nil
	// to use otel.GetTracerProvider, which is a no-op unless the embedding
	// application installed one.
	TracerProvider trace.TracerProvider
}

// Driver dispatches into one machine, wrapping every call in a trace span
// and notifying observers with the outcome. Concurrent callers are allowed;
// the machine serializes them.
type Driver[T comparable, E comparable, P cmp.Ordered] struct {
	machine   *tokenfsm.Machine[T, E, P]
	observers []Observer[T, E]
	tracer    trace.Tracer
}

// New wraps machine in a Driver.
func New[T comparable, E comparable, P cmp.Ordered](machine *tokenfsm.Machine[T, E, P], cfg Config[T, E]) *Driver[T, E, P] {
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Driver[T, E, P]{
		machine:   machine,
		observers: append([]Observer[T, E](nil), cfg.Observers...),
		tracer:    tp.Tracer(tracerName),
	}
}

// Machine returns the wrapped machine.
func (d *Driver[T, E, P]) Machine() *tokenfsm.Machine[T, E, P] {
	return d.machine
}

// Reset resets the machine to its start states.
func (d *Driver[T, E, P]) Reset(ctx context.Context) error {
	ctx, span := d.startSpan(ctx, "tokenfsm.reset")
	defer span.End()

	err := d.machine.Reset(ctx)
	d.finish(ctx, span, Notification[T, E]{Kind: KindReset, Err: err})
	return err
}

// HandleEvent dispatches one event.
func (d *Driver[T, E, P]) HandleEvent(ctx context.Context, event E) error {
	ctx, span := d.startSpan(ctx, "tokenfsm.handle_event",
		attribute.String("tokenfsm.event", fmt.Sprint(event)))
	defer span.End()

	err := d.machine.HandleEvent(ctx, event)
	d.finish(ctx, span, Notification[T, E]{Kind: KindEvent, Event: event, Err: err})
	return err
}

// Tick runs one no-event dispatch round, firing due time transitions.
func (d *Driver[T, E, P]) Tick(ctx context.Context) error {
	ctx, span := d.startSpan(ctx, "tokenfsm.tick")
	defer span.End()

	err := d.machine.Tick(ctx)
	d.finish(ctx, span, Notification[T, E]{Kind: KindTick, Err: err})
	return err
}

func (d *Driver[T, E, P]) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("tokenfsm.machine_id", d.machine.ID()))
	return d.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// finish stamps the notification, annotates the span, and runs the
// observers. The machine lock is released by now; the active set is a fresh
// post-call snapshot.
func (d *Driver[T, E, P]) finish(ctx context.Context, span trace.Span, n Notification[T, E]) {
	n.MachineID = d.machine.ID()
	n.Active = d.machine.ActiveStates()
	n.At = time.Now()

	span.SetAttributes(attribute.Int("tokenfsm.active_count", len(n.Active)))
	if n.Err != nil {
		span.RecordError(n.Err)
		span.SetStatus(codes.Error, n.Err.Error())
	}

	for _, obs := range d.observers {
		obs.Notify(ctx, n)
	}
}
