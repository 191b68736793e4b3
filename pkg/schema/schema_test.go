package schema_test

import (
	"testing"
	"time"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallFollower = `
version: "1"
name: wall-follower
sensors:
  - name: obstacle
actuators:
  - name: forward
  - name: turn
state_vars: 1
states:
  - id: 10
    name: Cruise
    encoding: "0"
  - id: 11
    name: Turn
    encoding: "1"
transitions:
  - id: 20
    source: 10
    target: 11
    inputs: "1"
    outputs: "01"
  - id: 21
    source: 10
    target: 10
    inputs: "-"
    outputs: "10"
  - id: 22
    source: 11
    target: 10
    inputs: "0"
    outputs: "10"
world:
  time_step: 50
`

func load(t *testing.T) *schema.Document {
	t.Helper()
	doc, err := schema.Unmarshal([]byte(wallFollower), schema.FormatYAML)
	require.NoError(t, err)
	return doc
}

func TestNewMachine(t *testing.T) {
	doc := load(t)
	m, mapping, err := schema.NewMachine(doc)
	require.NoError(t, err)

	require.Len(t, m.States(), 2)
	cruise := mapping.States[10]
	turn := mapping.States[11]
	assert.Equal(t, "Cruise", cruise.Name())
	assert.Equal(t, "1", turn.Encoding().String())
	assert.Same(t, cruise, m.InitialState())
	assert.Nil(t, m.CurrentState())

	out := cruise.OutgoingTransitions()
	require.Len(t, out, 2)
	assert.Same(t, mapping.Transitions[20], out[0], "document order is priority")
	assert.Equal(t, "1", out[0].Inputs().String())
	assert.Equal(t, "01", out[0].Outputs().String())

	m.Reset()
	assert.Equal(t, "01", m.Step(domain.Bits{domain.One}).String())
	assert.Same(t, turn, m.CurrentState())

	p, err := doc.Params()
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, p.TimeStep)
}

func TestFromMachine_RoundTrip(t *testing.T) {
	m, _, err := schema.NewMachine(load(t))
	require.NoError(t, err)

	for _, format := range []schema.Format{schema.FormatJSON, schema.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			doc := schema.FromMachine(m, schema.WorldParams{TimeStep: 30 * time.Millisecond})
			data, err := schema.Marshal(doc, format)
			require.NoError(t, err)

			back, err := schema.Unmarshal(data, format)
			require.NoError(t, err)
			require.NoError(t, schema.Validate(back))

			m2, _, err := schema.NewMachine(back)
			require.NoError(t, err)
			again := schema.FromMachine(m2, schema.WorldParams{TimeStep: 30 * time.Millisecond})

			// Ids are fresh; everything else survives.
			require.Len(t, again.States, len(doc.States))
			for i := range doc.States {
				assert.Equal(t, doc.States[i].Name, again.States[i].Name)
				assert.Equal(t, doc.States[i].Encoding, again.States[i].Encoding)
			}
			require.Len(t, again.Transitions, len(doc.Transitions))
			for i := range doc.Transitions {
				assert.Equal(t, doc.Transitions[i].Inputs, again.Transitions[i].Inputs)
				assert.Equal(t, doc.Transitions[i].Outputs, again.Transitions[i].Outputs)
			}

			p, err := back.Params()
			require.NoError(t, err)
			assert.Equal(t, 30*time.Millisecond, p.TimeStep)
		})
	}
}

func TestRestore_LeavesMachineOnError(t *testing.T) {
	m, _, err := schema.NewMachine(load(t))
	require.NoError(t, err)

	bad := load(t)
	bad.Transitions[0].Target = 99
	_, err = schema.Restore(bad, m)
	require.Error(t, err)
	assert.Len(t, m.States(), 2)
	assert.Len(t, m.Transitions(), 3)

	other := load(t)
	other.Sensors = append(other.Sensors, schema.SignalDoc{Name: "extra"})
	for i := range other.Transitions {
		other.Transitions[i].Inputs = ""
	}
	_, err = schema.Restore(other, m)
	assert.ErrorContains(t, err, "sensors")
	assert.Len(t, m.Transitions(), 3)
}

func TestCheckLayout(t *testing.T) {
	doc := load(t)
	layout := schema.NewLayout(doc)
	require.NoError(t, schema.CheckLayout(doc, layout))

	renamed := load(t)
	renamed.Actuators[1].Name = "spin"
	err := schema.CheckLayout(renamed, layout)
	assert.ErrorIs(t, err, schema.ErrLayoutMismatch)
	assert.ErrorContains(t, err, `actuators[1] is "spin", machine has "turn"`)

	m, _, err := schema.NewMachine(doc)
	require.NoError(t, err)
	_, err = schema.Restore(renamed, m)
	assert.ErrorIs(t, err, schema.ErrLayoutMismatch)
	assert.Equal(t, "turn", m.Layout().Actuators[1].Name)
	assert.Len(t, m.Transitions(), 3)

	short := load(t)
	short.Sensors = nil
	for i := range short.Transitions {
		short.Transitions[i].Inputs = ""
	}
	assert.ErrorIs(t, schema.CheckLayout(short, layout), schema.ErrLayoutMismatch)
}

func TestRestore_ReplacesGraph(t *testing.T) {
	m, _, err := schema.NewMachine(load(t))
	require.NoError(t, err)
	before := m.States()

	doc := load(t)
	doc.States = doc.States[:1]
	doc.Transitions = doc.Transitions[1:2]
	mapping, err := schema.Restore(doc, m)
	require.NoError(t, err)

	require.Len(t, m.States(), 1)
	assert.False(t, m.Owns(before[0]))
	assert.Same(t, mapping.States[10], m.States()[0])
	assert.Len(t, m.Transitions(), 1)
}

func TestValidate(t *testing.T) {
	doc := load(t)
	require.NoError(t, schema.Validate(doc))

	doc.Version = "9"
	doc.Sensors = append(doc.Sensors, schema.SignalDoc{Name: "obstacle"})
	doc.States[1].ID = 10
	doc.States[0].Encoding = "01"
	doc.Transitions[0].Inputs = "x"
	doc.Transitions[1].Outputs = "1"
	doc.Transitions[2].Source = 42
	doc.World = map[string]any{"time_step": "soon"}

	err := schema.Validate(doc)
	require.Error(t, err)
	errs := schema.ValidationErrors(err)

	keys := make([]string, 0, len(errs))
	for _, e := range errs {
		var ve *schema.ValidationError
		require.ErrorAs(t, e, &ve)
		keys = append(keys, ve.Key)
	}
	assert.Contains(t, keys, "version")
	assert.Contains(t, keys, "sensors[1].name")
	assert.Contains(t, keys, "states[1].id")
	assert.Contains(t, keys, "states[0].encoding")
	assert.Contains(t, keys, "transitions[0].inputs")
	assert.Contains(t, keys, "transitions[1].outputs")
	assert.Contains(t, keys, "transitions[2].source")
	assert.Contains(t, keys, "world")

	assert.Error(t, schema.Validate(nil))
}

func TestParams_Durations(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want time.Duration
	}{
		{"yaml int", 20, 20 * time.Millisecond},
		{"json number", float64(250), 250 * time.Millisecond},
		{"duration string", "1s", time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := &schema.Document{World: map[string]any{"time_step": tc.in}}
			p, err := doc.Params()
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.TimeStep)
		})
	}

	doc := &schema.Document{}
	doc.SetParams(schema.WorldParams{TimeStep: 40 * time.Millisecond})
	assert.Equal(t, int64(40), doc.World["time_step"])
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, schema.FormatYAML, schema.FormatFromPath("robot.YML"))
	assert.Equal(t, schema.FormatYAML, schema.FormatFromPath("dir/robot.yaml"))
	assert.Equal(t, schema.FormatJSON, schema.FormatFromPath("robot.json"))
	assert.Equal(t, schema.FormatJSON, schema.FormatFromPath("robot"))
}
