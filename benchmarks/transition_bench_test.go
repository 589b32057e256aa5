// Package benchmarks provides dispatch cost benchmarks for the engine core.
package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/tokenflow/tokenfsm"
)

func BenchmarkDispatchRing(b *testing.B) {
	ctx := context.Background()
	for _, n := range []int{2, 100, 1000} {
		b.Run(fmt.Sprintf("states=%d", n), func(b *testing.B) {
			m, err := GenRing(n)
			if err != nil {
				b.Fatal(err)
			}
			if err := m.Reset(ctx); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if err := m.HandleEvent(ctx, "tick"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDispatchTokens(b *testing.B) {
	ctx := context.Background()
	for _, pairs := range []int{1, 8, 64} {
		b.Run(fmt.Sprintf("pairs=%d", pairs), func(b *testing.B) {
			m, err := GenPairs(pairs)
			if err != nil {
				b.Fatal(err)
			}
			if err := m.Reset(ctx); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if err := m.HandleEvent(ctx, "tick"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDispatchWideScan(b *testing.B) {
	ctx := context.Background()
	for _, edges := range []int{4, 16, 64} {
		b.Run(fmt.Sprintf("edges=%d", edges), func(b *testing.B) {
			m, err := GenWide(edges)
			if err != nil {
				b.Fatal(err)
			}
			if err := m.Reset(ctx); err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if err := m.HandleEvent(ctx, "tick"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDispatchAllOf(b *testing.B) {
	// Every second event completes the pair, so half the dispatches
	// accumulate and half fire.
	m := tokenfsm.New[string, string, int](tokenfsm.WithID("allof"))
	if err := m.AddStartState("a"); err != nil {
		b.Fatal(err)
	}
	if err := m.AddTransition("a", "z", tokenfsm.AllOf("x", "y"), 0); err != nil {
		b.Fatal(err)
	}
	if err := m.AddTransition("z", "a", tokenfsm.AllOf("x", "y"), 0); err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	if err := m.Reset(ctx); err != nil {
		b.Fatal(err)
	}
	events := [2]string{"x", "y"}
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := m.HandleEvent(ctx, events[i%2]); err != nil {
			b.Fatal(err)
		}
	}
}
