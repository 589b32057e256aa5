package dot_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenflow/tokenfsm"
	"github.com/tokenflow/tokenfsm/dot"
)

func traffic(t *testing.T) *tokenfsm.Machine[string, string, int] {
	t.Helper()
	m := tokenfsm.New[string, string, int](tokenfsm.WithID("traffic"))
	require.NoError(t, m.AddStartState("red"))
	require.NoError(t, m.AddEndState("off"))
	require.NoError(t, m.AddTransition("red", "green", tokenfsm.After[string](time.Minute), 0))
	require.NoError(t, m.AddTransition("green", "red", tokenfsm.Is("stop"), 0))
	require.NoError(t, m.AddTransition("green", "off", tokenfsm.Is("shutdown"), 5))
	return m
}

func TestMarshal(t *testing.T) {
	out := string(dot.Marshal(traffic(t).Definition()))

	assert.True(t, strings.HasPrefix(out, `digraph "traffic" {`))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, "rankdir=LR;")

	// Start states get a heavy border, end states a double one.
	assert.Contains(t, out, `"red" [penwidth=2];`)
	assert.Contains(t, out, `"off" [peripheries=2];`)
	assert.Contains(t, out, `"green";`)

	assert.Contains(t, out, `"red" -> "green" [label="after 1m0s"];`)
	assert.Contains(t, out, `"green" -> "red" [label="on stop"];`)
	// Non-default priorities show up on the edge label.
	assert.Contains(t, out, `"green" -> "off" [label="on shutdown (prio 5)"];`)
}

func TestEdgesKeepEvaluationOrder(t *testing.T) {
	out := string(dot.Marshal(traffic(t).Definition()))

	// green's priority-5 edge is evaluated before its priority-0 edge and
	// must be emitted first.
	shutdown := strings.Index(out, `"green" -> "off"`)
	stop := strings.Index(out, `"green" -> "red"`)
	require.NotEqual(t, -1, shutdown)
	require.NotEqual(t, -1, stop)
	assert.Less(t, shutdown, stop)
}

func TestMarshalActiveHighlights(t *testing.T) {
	m := traffic(t)
	require.NoError(t, m.Reset(context.Background()))

	out := string(dot.MarshalActive(m.Definition(), m.ActiveStates()))
	assert.Contains(t, out, `"red" [penwidth=2 style="rounded,filled" fillcolor=lightgreen];`)
	assert.NotContains(t, out, `"green" [`)
}

func TestMarshalQuotesAwkwardNames(t *testing.T) {
	m := tokenfsm.New[string, string, int](tokenfsm.WithID(`say "hi"`))
	require.NoError(t, m.AddStartState(`state "a"`))
	require.NoError(t, m.AddTransition(`state "a"`, "b", tokenfsm.Always[string](), 0))

	out := string(dot.Marshal(m.Definition()))
	assert.Contains(t, out, `digraph "say \"hi\"" {`)
	assert.Contains(t, out, `"state \"a\"" [penwidth=2];`)
	assert.Contains(t, out, `"state \"a\"" -> "b" [label="always"];`)
}
