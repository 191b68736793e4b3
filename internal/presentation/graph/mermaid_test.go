package graph_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/pkg/domain"
)

func toggle() (*domain.StateMachine, *domain.State, *domain.State, *domain.Transition) {
	m := domain.NewStateMachine(domain.Layout{
		Sensors:   []domain.Signal{{Name: "button"}},
		Actuators: []domain.Signal{{Name: "lamp"}, {Name: "buzzer"}},
	}, 0)
	off := m.CreateState().SetName("off")
	on := m.CreateState().SetName(`say "on"`)
	up := m.CreateTransition(off, on).
		SetInputs(domain.Guards{domain.GuardOne}).
		SetOutputs(domain.Bits{domain.One, domain.Zero})
	m.CreateTransition(on, off).
		SetInputs(domain.Guards{domain.GuardZero}).
		SetOutputs(domain.Bits{domain.One, domain.One})
	return m, off, on, up
}

func TestGenerateMermaid(t *testing.T) {
	m, off, on, _ := toggle()

	tests := []struct {
		name     string
		contains []string
	}{
		{
			name: "Initial State Shape",
			contains: []string{
				fmt.Sprintf("s%d((\"off <br/> lamp\"))", off.ID()),
			},
		},
		{
			name: "Quote Escaping And Moore Actions",
			contains: []string{
				// every outgoing transition of "on" drives both actuators
				fmt.Sprintf("s%d[\"say 'on' <br/> lamp, buzzer\"]", on.ID()),
			},
		},
		{
			name: "Edge Labels",
			contains: []string{
				fmt.Sprintf("s%d -- \"1 / 10\" --> s%d", off.ID(), on.ID()),
				fmt.Sprintf("s%d -- \"0 / 11\" --> s%d", on.ID(), off.ID()),
			},
		},
	}

	got := graph.GenerateMermaid(m, nil)
	if !strings.HasPrefix(got, "graph TD\n") {
		t.Fatalf("missing header:\n%s", got)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
		})
	}

	if strings.Contains(got, "classDef") {
		t.Errorf("overlay styles emitted without an overlay:\n%s", got)
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	m, off, on, up := toggle()
	m.Reset()
	m.Advance(domain.Bits{domain.One})

	overlay := graph.OverlayFor(m, up)
	overlay.Visited = []uint64{off.ID(), off.ID(), 9999}
	got := graph.GenerateMermaid(m, overlay)

	for _, want := range []string{
		"classDef current",
		fmt.Sprintf("class s%d current;", on.ID()),
		fmt.Sprintf("class s%d visited;", off.ID()),
		"linkStyle 0 stroke",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
		}
	}
	if n := strings.Count(got, "visited;"); n != 1 {
		t.Errorf("visited classes = %d, want 1 (deduplicated, unknown ids skipped)", n)
	}
}

func TestGenerateMermaid_UnnamedAndEmpty(t *testing.T) {
	m := domain.NewStateMachine(domain.Layout{}, 0)
	if got := graph.GenerateMermaid(m, nil); got != "graph TD\n" {
		t.Errorf("empty machine = %q", got)
	}

	s := m.CreateState().SetName("")
	m.CreateTransition(s, s)
	got := graph.GenerateMermaid(m, nil)
	want := fmt.Sprintf("s%d --> s%d", s.ID(), s.ID())
	if !strings.Contains(got, want) || !strings.Contains(got, fmt.Sprintf("\"#%d\"", s.ID())) {
		t.Errorf("GenerateMermaid() = \n%v", got)
	}
}
