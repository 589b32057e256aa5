// Package dot renders tokenfsm definitions as Graphviz DOT graphs.
//
// The graph is built from a Machine's Definition snapshot, so it can be
// produced before the machine starts or at any point afterwards. Node
// decoration marks start states with a heavy border, end states with a double
// border, and, when requested, currently active states with a fill color.
package dot

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/tokenflow/tokenfsm"
)

// Marshal renders def as DOT source with no active-state highlighting.
func Marshal[T comparable, P cmp.Ordered](def tokenfsm.Definition[T, P]) []byte {
	return MarshalActive(def, nil)
}

// MarshalActive renders def as DOT source, filling the given active states.
// Pair it with Machine.Definition and Machine.ActiveStates to snapshot a
// running machine.
func MarshalActive[T comparable, P cmp.Ordered](def tokenfsm.Definition[T, P], active []T) []byte {
	activeSet := make(map[T]struct{}, len(active))
	for _, s := range active {
		activeSet[s] = struct{}{}
	}
	starts := make(map[T]struct{}, len(def.StartStates))
	for _, s := range def.StartStates {
		starts[s] = struct{}{}
	}
	ends := make(map[T]struct{}, len(def.EndStates))
	for _, s := range def.EndStates {
		ends[s] = struct{}{}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", quote(def.ID))
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, fontsize=10, style=rounded];\n")
	buf.WriteString("  edge [fontsize=9];\n")

	for _, state := range def.States {
		var attrs []string
		if _, ok := starts[state]; ok {
			attrs = append(attrs, "penwidth=2")
		}
		if _, ok := ends[state]; ok {
			attrs = append(attrs, "peripheries=2")
		}
		if _, ok := activeSet[state]; ok {
			attrs = append(attrs, `style="rounded,filled"`, "fillcolor=lightgreen")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %s;\n", quote(fmt.Sprint(state)))
			continue
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(fmt.Sprint(state)), strings.Join(attrs, " "))
	}

	var zero P
	for _, tr := range def.Transitions {
		label := tr.Condition
		if tr.Priority != zero {
			label = fmt.Sprintf("%s (prio %v)", label, tr.Priority)
		}
		fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n",
			quote(fmt.Sprint(tr.Source)), quote(fmt.Sprint(tr.Dest)), quote(label))
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

// quote wraps s in DOT double quotes, escaping embedded quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
