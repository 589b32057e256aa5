// Package yamldef loads machine definitions from YAML documents.
//
// A document names its states and events as strings and carries integer
// priorities, so the loaded machine is always a
// *tokenfsm.Machine[string, string, int]. Actions cannot live in YAML;
// documents refer to them by name and the caller supplies an Actions registry
// mapping those names to implementations.
//
// A minimal document:
//
//	id: traffic
//	start: [red]
//	transitions:
//	  - from: red
//	    to: green
//	    after: 1m
//	  - from: green
//	    to: red
//	    on: stop
//	    actions: [announce]
//
// Exactly one of on, allOf, after, always, never must be set per transition.
// Loading is strict: unknown fields, unresolved action names, and malformed
// transitions are all collected and reported together.
package yamldef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tokenflow/tokenfsm"
	"github.com/tokenflow/tokenfsm/builder"
)

// Actions resolves the action names a document may reference.
type Actions map[string]tokenfsm.Action

// Document is the YAML shape of a machine definition.
type Document struct {
	ID          string              `yaml:"id,omitempty"`
	StartStates []string            `yaml:"start"`
	EndStates   []string            `yaml:"end,omitempty"`
	Entry       map[string][]string `yaml:"entry,omitempty"`
	Exit        map[string][]string `yaml:"exit,omitempty"`
	Transitions []Transition        `yaml:"transitions"`
}

// Transition is one edge of the document. The condition fields are mutually
// exclusive; Priority defaults to zero and Actions to none.
type Transition struct {
	From     string   `yaml:"from"`
	To       string   `yaml:"to"`
	On       string   `yaml:"on,omitempty"`
	AllOf    []string `yaml:"allOf,omitempty"`
	After    Duration `yaml:"after,omitempty"`
	Always   bool     `yaml:"always,omitempty"`
	Never    bool     `yaml:"never,omitempty"`
	Priority int      `yaml:"priority,omitempty"`
	Actions  []string `yaml:"actions,omitempty"`
}

// Duration accepts Go duration strings such as "250ms" or "1m30s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting the duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// LoadFile reads path and loads the document in it.
func LoadFile(path string, actions Actions) (*tokenfsm.Machine[string, string, int], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	m, err := Load(data, actions)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// Load parses data and builds the machine it describes. All problems in the
// document are reported at once, joined into a single error.
func Load(data []byte, actions Actions) (*tokenfsm.Machine[string, string, int], error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return doc.Build(actions)
}

// Parse decodes data into a Document without building anything. Unknown
// fields are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("yamldef: empty document")
		}
		return nil, fmt.Errorf("yamldef: decode: %w", err)
	}
	return &doc, nil
}

// Build assembles the document into a machine, resolving action names
// through the registry.
func (doc *Document) Build(actions Actions) (*tokenfsm.Machine[string, string, int], error) {
	var errs []error
	resolve := func(names []string, where string) []tokenfsm.Action {
		resolved := make([]tokenfsm.Action, 0, len(names))
		for _, name := range names {
			act, ok := actions[name]
			if !ok {
				errs = append(errs, fmt.Errorf("yamldef: %s: unknown action %q", where, name))
				continue
			}
			resolved = append(resolved, act)
		}
		return resolved
	}

	var opts []tokenfsm.Option
	if doc.ID != "" {
		opts = append(opts, tokenfsm.WithID(doc.ID))
	}
	b := builder.New[string, string, int](0, opts...)

	if len(doc.StartStates) == 0 {
		errs = append(errs, errors.New("yamldef: document declares no start states"))
	}
	for _, s := range doc.StartStates {
		b.State(s).AsStart()
	}
	for _, s := range doc.EndStates {
		b.State(s).AsEnd()
	}
	for state, names := range doc.Entry {
		b.State(state).OnEntry(resolve(names, fmt.Sprintf("entry actions of %s", state))...)
	}
	for state, names := range doc.Exit {
		b.State(state).OnExit(resolve(names, fmt.Sprintf("exit actions of %s", state))...)
	}

	for i, tr := range doc.Transitions {
		where := fmt.Sprintf("transition %d (%s -> %s)", i, tr.From, tr.To)
		if tr.From == "" || tr.To == "" {
			errs = append(errs, fmt.Errorf("yamldef: %s: from and to are required", where))
			continue
		}
		when, err := tr.condition()
		if err != nil {
			errs = append(errs, fmt.Errorf("yamldef: %s: %w", where, err))
			continue
		}
		b.State(tr.From).
			When(when).
			WithPriority(tr.Priority).
			Do(resolve(tr.Actions, where)...).
			Then(tr.To)
	}

	m, err := b.Build()
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// condition maps the mutually exclusive condition fields onto a Condition.
func (tr Transition) condition() (tokenfsm.Condition[string], error) {
	// An explicit empty list is a mistake, not an absent field.
	if tr.AllOf != nil && len(tr.AllOf) == 0 {
		return tokenfsm.Condition[string]{}, errors.New("allOf must name at least one event")
	}
	set := 0
	if tr.On != "" {
		set++
	}
	if len(tr.AllOf) > 0 {
		set++
	}
	if tr.After > 0 {
		set++
	}
	if tr.Always {
		set++
	}
	if tr.Never {
		set++
	}
	if set != 1 {
		return tokenfsm.Condition[string]{}, errors.New("need exactly one of on, allOf, after, always, never")
	}

	switch {
	case tr.On != "":
		return tokenfsm.Is(tr.On), nil
	case len(tr.AllOf) > 0:
		return tokenfsm.AllOf(tr.AllOf[0], tr.AllOf[1:]...), nil
	case tr.After > 0:
		return tokenfsm.After[string](time.Duration(tr.After)), nil
	case tr.Always:
		return tokenfsm.Always[string](), nil
	default:
		return tokenfsm.Never[string](), nil
	}
}
