package schema

import (
	"fmt"

	"github.com/aretw0/automata/pkg/domain"
)

// Mapping relates the ids saved in a document to the entities Restore created.
type Mapping struct {
	States      map[uint64]*domain.State
	Transitions map[uint64]*domain.Transition
}

// FromMachine snapshots a machine's layout and graph into a new document.
// Transitions are written per source state in priority order.
func FromMachine(m *domain.StateMachine, params WorldParams) *Document {
	layout := m.Layout()
	doc := &Document{
		Version:   CurrentVersion,
		Sensors:   signalDocs(layout.Sensors),
		Actuators: signalDocs(layout.Actuators),
		StateVars: m.StateVarCount(),
	}
	for _, s := range m.States() {
		doc.States = append(doc.States, StateDoc{
			ID:       s.ID(),
			Name:     s.Name(),
			Encoding: s.Encoding().String(),
		})
	}
	for _, s := range m.States() {
		for _, t := range s.OutgoingTransitions() {
			doc.Transitions = append(doc.Transitions, TransitionDoc{
				ID:      t.ID(),
				Source:  s.ID(),
				Target:  t.TargetState().ID(),
				Inputs:  t.Inputs().String(),
				Outputs: t.Outputs().String(),
			})
		}
	}
	doc.SetParams(params)
	return doc
}

// NewLayout builds the machine layout described by the document.
func NewLayout(doc *Document) domain.Layout {
	return domain.Layout{
		Sensors:   signals(doc.Sensors),
		Actuators: signals(doc.Actuators),
	}
}

// NewMachine validates the document and builds a fresh machine from it.
// The machine has no current state until it is reset.
func NewMachine(doc *Document) (*domain.StateMachine, Mapping, error) {
	if err := Validate(doc); err != nil {
		return nil, Mapping{}, err
	}
	m := domain.NewStateMachine(NewLayout(doc), doc.StateVars)
	mapping, err := Restore(doc, m)
	if err != nil {
		return nil, Mapping{}, err
	}
	return m, mapping, nil
}

// Restore replaces m's graph with the document's. The document is validated
// and checked against m's layout before anything is touched, so on error m is
// unchanged. States are created in document order, so the first one becomes
// the initial state.
func Restore(doc *Document, m *domain.StateMachine) (Mapping, error) {
	if err := Validate(doc); err != nil {
		return Mapping{}, err
	}
	if err := CheckLayout(doc, m.Layout()); err != nil {
		return Mapping{}, err
	}

	m.Clear()
	m.SetStateVarCount(doc.StateVars)

	mapping := Mapping{
		States:      make(map[uint64]*domain.State, len(doc.States)),
		Transitions: make(map[uint64]*domain.Transition, len(doc.Transitions)),
	}
	for _, sd := range doc.States {
		s := m.CreateState()
		if sd.Name != "" {
			s.SetName(sd.Name)
		}
		if sd.Encoding != "" {
			enc, _ := domain.ParseBits(sd.Encoding) // validated
			for i, b := range enc {
				if b == domain.One {
					s.SetEncoding(i, b)
				}
			}
		}
		mapping.States[sd.ID] = s
	}
	for _, td := range doc.Transitions {
		t := m.CreateTransition(mapping.States[td.Source], mapping.States[td.Target])
		if td.Inputs != "" {
			g, _ := domain.ParseGuards(td.Inputs)
			t.SetInputs(g)
		}
		if td.Outputs != "" {
			b, _ := domain.ParseBits(td.Outputs)
			t.SetOutputs(b)
		}
		mapping.Transitions[td.ID] = t
	}
	return mapping, nil
}

// CheckLayout reports whether doc declares exactly the sensors and actuators of
// layout, by count and name in order. Descriptions are not compared.
func CheckLayout(doc *Document, layout domain.Layout) error {
	if len(doc.Sensors) != len(layout.Sensors) || len(doc.Actuators) != len(layout.Actuators) {
		return fmt.Errorf("%w: document has %d sensors and %d actuators, machine has %d and %d", ErrLayoutMismatch,
			len(doc.Sensors), len(doc.Actuators), len(layout.Sensors), len(layout.Actuators))
	}
	for i, s := range doc.Sensors {
		if s.Name != layout.Sensors[i].Name {
			return fmt.Errorf("%w: sensors[%d] is %q, machine has %q", ErrLayoutMismatch, i, s.Name, layout.Sensors[i].Name)
		}
	}
	for i, a := range doc.Actuators {
		if a.Name != layout.Actuators[i].Name {
			return fmt.Errorf("%w: actuators[%d] is %q, machine has %q", ErrLayoutMismatch, i, a.Name, layout.Actuators[i].Name)
		}
	}
	return nil
}

func signalDocs(in []domain.Signal) []SignalDoc {
	out := make([]SignalDoc, 0, len(in))
	for _, s := range in {
		out = append(out, SignalDoc{Name: s.Name, Description: s.Description})
	}
	return out
}

func signals(in []SignalDoc) []domain.Signal {
	out := make([]domain.Signal, 0, len(in))
	for _, s := range in {
		out = append(out, domain.Signal{Name: s.Name, Description: s.Description})
	}
	return out
}
