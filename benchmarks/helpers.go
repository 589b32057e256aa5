// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tokenflow/tokenfsm"
	"github.com/tokenflow/tokenfsm/yamldef"
)

// GenRing creates a machine of n states cycling via "tick" events.
func GenRing(n int) (*tokenfsm.Machine[string, string, int], error) {
	if n < 1 {
		n = 1
	}
	m := tokenfsm.New[string, string, int](tokenfsm.WithID(fmt.Sprintf("ring_%d", n)))
	if err := m.AddStartState("s0"); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		from := fmt.Sprintf("s%d", i)
		to := fmt.Sprintf("s%d", (i+1)%n)
		if err := m.AddTransition(from, to, tokenfsm.Is("tick"), 0); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GenPairs creates n independent token pairs; every "tick" advances all of
// them in one dispatch.
func GenPairs(n int) (*tokenfsm.Machine[string, string, int], error) {
	if n < 1 {
		n = 1
	}
	m := tokenfsm.New[string, string, int](tokenfsm.WithID(fmt.Sprintf("pairs_%d", n)))
	for i := 0; i < n; i++ {
		left := fmt.Sprintf("left%d", i)
		right := fmt.Sprintf("right%d", i)
		if err := m.AddStartState(left); err != nil {
			return nil, err
		}
		if err := m.AddTransition(left, right, tokenfsm.Is("tick"), 0); err != nil {
			return nil, err
		}
		if err := m.AddTransition(right, left, tokenfsm.Is("tick"), 0); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GenWide creates one "main" state with many outgoing edges. All but the
// lowest-priority edge are Never placeholders, so every dispatch scans the
// whole list before matching the self-loop at the end.
func GenWide(edges int) (*tokenfsm.Machine[string, string, int], error) {
	if edges < 1 {
		edges = 1
	}
	m := tokenfsm.New[string, string, int](tokenfsm.WithID(fmt.Sprintf("wide_%d", edges)))
	if err := m.AddStartState("main"); err != nil {
		return nil, err
	}
	for i := 0; i < edges-1; i++ {
		dead := fmt.Sprintf("dead%d", i)
		if err := m.AddTransition("main", dead, tokenfsm.Never[string](), edges-i); err != nil {
			return nil, err
		}
	}
	if err := m.AddTransition("main", "main", tokenfsm.Is("tick"), 0); err != nil {
		return nil, err
	}
	return m, nil
}

// GenChartYAML renders a ring document of the given size as YAML bytes.
func GenChartYAML(states int) []byte {
	if states < 2 {
		states = 2
	}
	doc := yamldef.Document{
		ID:          fmt.Sprintf("ring_%d", states),
		StartStates: []string{"s0"},
	}
	for i := 0; i < states; i++ {
		doc.Transitions = append(doc.Transitions, yamldef.Transition{
			From: fmt.Sprintf("s%d", i),
			To:   fmt.Sprintf("s%d", (i+1)%states),
			On:   "tick",
		})
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}
