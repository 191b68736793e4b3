package schema

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// CurrentVersion is the document version written by FromMachine.
const CurrentVersion = "1"

// Document is the persisted form of a state machine and its world parameters.
type Document struct {
	Version     string          `json:"version" yaml:"version" mapstructure:"version"`
	Name        string          `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Sensors     []SignalDoc     `json:"sensors,omitempty" yaml:"sensors,omitempty" mapstructure:"sensors"`
	Actuators   []SignalDoc     `json:"actuators,omitempty" yaml:"actuators,omitempty" mapstructure:"actuators"`
	StateVars   int             `json:"state_vars" yaml:"state_vars" mapstructure:"state_vars"`
	States      []StateDoc      `json:"states" yaml:"states" mapstructure:"states"`
	Transitions []TransitionDoc `json:"transitions,omitempty" yaml:"transitions,omitempty" mapstructure:"transitions"`
	World       map[string]any  `json:"world,omitempty" yaml:"world,omitempty" mapstructure:"world"`
}

// SignalDoc describes one sensor or actuator.
type SignalDoc struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}

// StateDoc is a persisted state. Encoding is a string of '0'/'1', one per state variable.
type StateDoc struct {
	ID       uint64 `json:"id" yaml:"id" mapstructure:"id"`
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	Encoding string `json:"encoding,omitempty" yaml:"encoding,omitempty" mapstructure:"encoding"`
}

// TransitionDoc is a persisted transition.
// Inputs uses '0', '1' and '-' per sensor; Outputs uses '0' and '1' per actuator.
// Document order is selection priority among a source's outgoing transitions.
type TransitionDoc struct {
	ID      uint64 `json:"id" yaml:"id" mapstructure:"id"`
	Source  uint64 `json:"source" yaml:"source" mapstructure:"source"`
	Target  uint64 `json:"target" yaml:"target" mapstructure:"target"`
	Inputs  string `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs"`
	Outputs string `json:"outputs,omitempty" yaml:"outputs,omitempty" mapstructure:"outputs"`
}

// WorldParams are the run parameters stored under the document's "world" key.
type WorldParams struct {
	// TimeStep is the tick period. Bare numbers in a document are milliseconds.
	TimeStep time.Duration `json:"time_step" yaml:"time_step" mapstructure:"time_step"`
}

// Params decodes the "world" section. Missing keys keep their zero value.
func (d *Document) Params() (WorldParams, error) {
	var p WorldParams
	if len(d.World) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			MillisecondsHook(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(d.World); err != nil {
		return p, fmt.Errorf("decode world params: %w", err)
	}
	return p, nil
}

// SetParams stores p under the "world" key, with durations in milliseconds.
func (d *Document) SetParams(p WorldParams) {
	if d.World == nil {
		d.World = make(map[string]any)
	}
	d.World["time_step"] = p.TimeStep.Milliseconds()
}

// MillisecondsHook decodes plain numbers into time.Duration as milliseconds.
// Strings are left to mapstructure.StringToTimeDurationHookFunc.
func MillisecondsHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case int:
			return time.Duration(v) * time.Millisecond, nil
		case int64:
			return time.Duration(v) * time.Millisecond, nil
		case uint64:
			return time.Duration(v) * time.Millisecond, nil
		case float64:
			return time.Duration(v * float64(time.Millisecond)), nil
		}
		return data, nil
	}
}

// Clone returns a deep copy of the document. World values are copied one level deep.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Sensors = append([]SignalDoc(nil), d.Sensors...)
	c.Actuators = append([]SignalDoc(nil), d.Actuators...)
	c.States = append([]StateDoc(nil), d.States...)
	c.Transitions = append([]TransitionDoc(nil), d.Transitions...)
	if d.World != nil {
		c.World = make(map[string]any, len(d.World))
		for k, v := range d.World {
			c.World[k] = v
		}
	}
	return &c
}
