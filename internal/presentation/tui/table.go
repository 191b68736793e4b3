package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/muesli/termenv"
)

// TransitionTable renders the machine as a markdown document: a signal
// legend, then one row per transition grouped by source state in priority order.
func TransitionTable(title string, m *domain.StateMachine) string {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}

	layout := m.Layout()
	fmt.Fprintf(&sb, "**Sensors:** %s  \n", signalList(layout.Sensors))
	fmt.Fprintf(&sb, "**Actuators:** %s\n\n", signalList(layout.Actuators))

	sb.WriteString("| # | From | Inputs | To | Outputs | Moore |\n")
	sb.WriteString("|---|------|--------|----|---------|-------|\n")
	for _, s := range m.States() {
		for i, t := range s.OutgoingTransitions() {
			fmt.Fprintf(&sb, "| %d | %s | `%s` | %s | `%s` | %s |\n",
				i+1,
				cell(s.Name()),
				t.Inputs().String(),
				cell(t.TargetState().Name()),
				t.Outputs().String(),
				signalList(t.TargetState().MooreActions()),
			)
		}
	}

	var sinks []string
	for _, s := range m.States() {
		if len(s.OutgoingTransitions()) == 0 {
			sinks = append(sinks, cell(s.Name()))
		}
	}
	if len(sinks) > 0 {
		fmt.Fprintf(&sb, "\n_No outgoing transitions:_ %s\n", strings.Join(sinks, ", "))
	}
	return sb.String()
}

// StatusLine rewrites the current terminal line with the world's state,
// sensors and actuators.
type StatusLine struct {
	out *termenv.Output
}

func NewStatusLine(w io.Writer) *StatusLine {
	return &StatusLine{out: termenv.NewOutput(w)}
}

// Update redraws the line. stalled dims the state name.
func (l *StatusLine) Update(state string, stalled bool, sensors, actuators domain.Bits) {
	name := l.out.String(state).Bold()
	if stalled {
		name = name.Faint()
	}
	l.out.ClearLine()
	fmt.Fprintf(l.out, "\r%s  in %s  out %s",
		name,
		l.out.String(sensors.String()).Foreground(l.out.Color("#818cf8")),
		l.out.String(actuators.String()).Foreground(l.out.Color("#f472b6")),
	)
}

// Done ends the line.
func (l *StatusLine) Done() {
	fmt.Fprintln(l.out)
}

func signalList(signals []domain.Signal) string {
	if len(signals) == 0 {
		return "-"
	}
	names := make([]string, len(signals))
	for i, s := range signals {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
