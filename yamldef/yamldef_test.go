package yamldef_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenflow/tokenfsm/testutil"
	"github.com/tokenflow/tokenfsm/yamldef"
)

const gameDoc = `
id: game
start: [LOADER]
end: [EXIT]
entry:
  MENU: [announce]
transitions:
  - {from: LOADER, to: INTRO, on: DONE}
  - {from: INTRO, to: MENU, on: DONE}
  - {from: MENU, to: GET_READY, on: START}
  - {from: MENU, to: EXIT, on: ESCAPE}
  - {from: GET_READY, to: LEVEL, on: DONE}
  - {from: LEVEL, to: GAME_OVER, on: DEAD}
  - {from: GAME_OVER, to: MENU, on: DONE}
  - {from: MENU, to: CONFIGURATION, allOf: [FIRE_A, FIRE_B]}
  - {from: CONFIGURATION, to: MENU, allOf: [FIRE_A, FIRE_B]}
  - {from: CONFIGURATION, to: INTRO, on: FIRE_A}
`

func TestLoadGameDocument(t *testing.T) {
	rec := &testutil.Recorder{}
	m, err := yamldef.Load([]byte(gameDoc), yamldef.Actions{"announce": rec.Act("announce")})
	require.NoError(t, err)
	assert.Equal(t, "game", m.ID())

	ctx := context.Background()
	require.NoError(t, m.Reset(ctx))
	assert.Equal(t, []string{"LOADER"}, m.ActiveStates())

	for _, e := range []string{"DONE", "DONE"} {
		require.NoError(t, m.HandleEvent(ctx, e))
	}
	assert.Equal(t, []string{"MENU"}, m.ActiveStates())
	assert.Equal(t, []string{"announce"}, rec.Steps())

	// The cheat code still accumulates in either order.
	for _, e := range []string{"FIRE_B", "FIRE_A"} {
		require.NoError(t, m.HandleEvent(ctx, e))
	}
	assert.Equal(t, []string{"CONFIGURATION"}, m.ActiveStates())

	// EXIT consumes the token.
	require.NoError(t, m.HandleEvent(ctx, "FIRE_A"))
	require.NoError(t, m.HandleEvent(ctx, "DONE"))
	require.NoError(t, m.HandleEvent(ctx, "ESCAPE"))
	assert.Empty(t, m.ActiveStates())
}

func TestLoadDurations(t *testing.T) {
	doc := `
start: [red]
transitions:
  - {from: red, to: green, after: 1m30s}
  - {from: green, to: red, on: stop, priority: 2}
`
	m, err := yamldef.Load([]byte(doc), nil)
	require.NoError(t, err)

	def := m.Definition()
	require.Len(t, def.Transitions, 2)
	assert.Equal(t, "after 1m30s", def.Transitions[0].Condition)
	assert.Equal(t, 2, def.Transitions[1].Priority)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	doc := `
start: [a]
transitions:
  - {from: a, to: b, on: go, colour: red}
`
	_, err := yamldef.Parse([]byte(doc))
	require.Error(t, err)
	assert.ErrorContains(t, err, "colour")
}

func TestLoadEmptyDocument(t *testing.T) {
	_, err := yamldef.Load(nil, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "empty document")
}

func TestLoadCollectsAllErrors(t *testing.T) {
	doc := `
start: []
entry:
  a: [missing]
transitions:
  - {from: a, to: b}
  - {from: a, to: c, on: go, always: true}
  - {from: "", to: d, on: go}
  - {from: a, to: e, on: go, actions: [also-missing]}
`
	_, err := yamldef.Load([]byte(doc), yamldef.Actions{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "no start states")
	assert.ErrorContains(t, err, `unknown action "missing"`)
	assert.ErrorContains(t, err, "transition 0 (a -> b): need exactly one of")
	assert.ErrorContains(t, err, "transition 1 (a -> c): need exactly one of")
	assert.ErrorContains(t, err, "from and to are required")
	assert.ErrorContains(t, err, `unknown action "also-missing"`)
}

func TestLoadEmptyAllOf(t *testing.T) {
	doc := `
start: [a]
transitions:
  - {from: a, to: b, allOf: []}
`
	_, err := yamldef.Load([]byte(doc), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "transition 0 (a -> b): allOf must name at least one event")

	// Alongside another condition it is rejected, not silently ignored.
	doc = `
start: [a]
transitions:
  - {from: a, to: b, on: go, allOf: []}
`
	_, err = yamldef.Load([]byte(doc), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "allOf must name at least one event")
}

func TestLoadBadDuration(t *testing.T) {
	doc := `
start: [a]
transitions:
  - {from: a, to: b, after: soon}
`
	_, err := yamldef.Load([]byte(doc), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, `parse duration "soon"`)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(gameDoc), 0o644))

	m, err := yamldef.LoadFile(path, yamldef.Actions{"announce": func(context.Context) error { return nil }})
	require.NoError(t, err)
	assert.Equal(t, "game", m.ID())

	_, err = yamldef.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocumentRoundTrip(t *testing.T) {
	doc, err := yamldef.Parse([]byte(gameDoc))
	require.NoError(t, err)
	assert.Equal(t, "game", doc.ID)
	assert.Equal(t, []string{"LOADER"}, doc.StartStates)
	require.Len(t, doc.Transitions, 10)
	assert.Equal(t, []string{"FIRE_A", "FIRE_B"}, doc.Transitions[7].AllOf)

	// A parsed document can be built repeatedly with different registries.
	first, err := doc.Build(yamldef.Actions{"announce": func(context.Context) error { return nil }})
	require.NoError(t, err)
	second, err := doc.Build(yamldef.Actions{"announce": func(context.Context) error { return nil }})
	require.NoError(t, err)
	require.NoError(t, first.Reset(context.Background()))
	assert.Empty(t, second.ActiveStates())
}