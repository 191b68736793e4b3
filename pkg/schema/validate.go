package schema

import (
	"fmt"

	"github.com/aretw0/automata/pkg/domain"
)

// Validate checks the document's structure.
// Returns an *AggregateError with all validation failures found.
func Validate(doc *Document) error {
	if doc == nil {
		return &AggregateError{Errors: []error{&ValidationError{Key: "document", Reason: "required"}}}
	}

	var errs []error
	add := func(key, reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}

	if doc.Version != "" && doc.Version != CurrentVersion {
		add("version", "unsupported version", doc.Version)
	}
	if doc.StateVars < 0 {
		add("state_vars", "must not be negative", doc.StateVars)
	}

	checkSignals := func(group string, signals []SignalDoc) {
		seen := make(map[string]bool, len(signals))
		for i, s := range signals {
			key := fmt.Sprintf("%s[%d].name", group, i)
			if s.Name == "" {
				add(key, "required", nil)
				continue
			}
			if seen[s.Name] {
				add(key, "duplicate name", s.Name)
			}
			seen[s.Name] = true
		}
	}
	checkSignals("sensors", doc.Sensors)
	checkSignals("actuators", doc.Actuators)

	states := make(map[uint64]bool, len(doc.States))
	for i, s := range doc.States {
		key := fmt.Sprintf("states[%d]", i)
		if s.ID == 0 {
			add(key+".id", "required", nil)
		} else if states[s.ID] {
			add(key+".id", "duplicate id", s.ID)
		}
		states[s.ID] = true

		if s.Encoding == "" {
			continue
		}
		if len(s.Encoding) != doc.StateVars {
			add(key+".encoding", fmt.Sprintf("want %d state variables", doc.StateVars), s.Encoding)
		} else if _, err := domain.ParseBits(s.Encoding); err != nil {
			add(key+".encoding", err.Error(), s.Encoding)
		}
	}

	transitions := make(map[uint64]bool, len(doc.Transitions))
	for i, t := range doc.Transitions {
		key := fmt.Sprintf("transitions[%d]", i)
		if t.ID == 0 {
			add(key+".id", "required", nil)
		} else if transitions[t.ID] {
			add(key+".id", "duplicate id", t.ID)
		}
		transitions[t.ID] = true

		if !states[t.Source] || t.Source == 0 {
			add(key+".source", "unknown state", t.Source)
		}
		if !states[t.Target] || t.Target == 0 {
			add(key+".target", "unknown state", t.Target)
		}
		if t.Inputs != "" {
			if len(t.Inputs) != len(doc.Sensors) {
				add(key+".inputs", fmt.Sprintf("want %d sensors", len(doc.Sensors)), t.Inputs)
			} else if _, err := domain.ParseGuards(t.Inputs); err != nil {
				add(key+".inputs", err.Error(), t.Inputs)
			}
		}
		if t.Outputs != "" {
			if len(t.Outputs) != len(doc.Actuators) {
				add(key+".outputs", fmt.Sprintf("want %d actuators", len(doc.Actuators)), t.Outputs)
			} else if _, err := domain.ParseBits(t.Outputs); err != nil {
				add(key+".outputs", err.Error(), t.Outputs)
			}
		}
	}

	if p, err := doc.Params(); err != nil {
		add("world", err.Error(), nil)
	} else if p.TimeStep < 0 {
		add("world.time_step", "must not be negative", p.TimeStep)
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
