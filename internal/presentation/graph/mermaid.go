package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
)

// Overlay contains run state to visualize on the graph.
type Overlay struct {
	Visited []uint64 // state ids
	Current uint64
	Fired   uint64 // transition id, zero when the last step stalled
}

// OverlayFor builds an overlay from the machine's current state and the last fired transition.
func OverlayFor(m *domain.StateMachine, fired *domain.Transition) *Overlay {
	o := &Overlay{}
	if s := m.CurrentState(); s != nil {
		o.Current = s.ID()
	}
	if fired != nil && m.OwnsTransition(fired) {
		o.Fired = fired.ID()
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the machine.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Other states: [Rectangle]
// State labels carry the name and the Moore actions; edge labels read
// "inputs / outputs". Edges are emitted per source state in priority order.
func GenerateMermaid(m *domain.StateMachine, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	layout := m.Layout()
	initial := m.InitialState()

	for _, s := range m.States() {
		opener, closer := "[", "]"
		if s == initial {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(s), opener, stateLabel(s), closer)
	}

	edge := 0
	firedEdge := -1
	for _, s := range m.States() {
		for _, t := range s.OutgoingTransitions() {
			label := t.Inputs().String() + " / " + t.Outputs().String()
			if len(layout.Sensors) == 0 && len(layout.Actuators) == 0 {
				label = ""
			}
			arrow := "-->"
			if label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", label)
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(s), arrow, nodeID(t.TargetState()))
			if overlay != nil && overlay.Fired != 0 && overlay.Fired == t.ID() {
				firedEdge = edge
			}
			edge++
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on both light and dark themes
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[uint64]bool)
		for _, id := range overlay.Visited {
			s := m.StateByID(id)
			if s == nil || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(s))
		}
		if s := m.StateByID(overlay.Current); s != nil {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(s))
		}
		if firedEdge >= 0 {
			fmt.Fprintf(&sb, "    linkStyle %d stroke:#fbc02d,stroke-width:4px;\n", firedEdge)
		}
	}

	return sb.String()
}

func nodeID(s *domain.State) string {
	return fmt.Sprintf("s%d", s.ID())
}

func stateLabel(s *domain.State) string {
	name := s.Name()
	if name == "" {
		name = fmt.Sprintf("#%d", s.ID())
	}
	name = strings.ReplaceAll(name, "\"", "'")

	acts := s.MooreActions()
	if len(acts) == 0 {
		return name
	}
	names := make([]string, len(acts))
	for i, a := range acts {
		names[i] = a.Name
	}
	return name + " <br/> " + strings.Join(names, ", ")
}
