package loam

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/loam"

	"github.com/aretw0/automata/internal/testutils"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/ports/tests"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toggleMarkdown = `---
name: Toggle
sensors:
  - name: button
actuators:
  - name: lamp
state_vars: 1
states:
  - id: 1
    name: "Off"
    encoding: "0"
  - id: 2
    name: "On"
    encoding: "1"
transitions:
  - id: 3
    source: 1
    target: 2
    inputs: "1"
    outputs: "1"
world:
  time_step: 40
---
Press the button to light the lamp.`

const mazeJSON = `{
  "name": "Maze",
  "sensors": [{"name": "obstacle"}],
  "actuators": [{"name": "forward"}, {"name": "turn"}],
  "state_vars": 0,
  "states": [{"id": 1, "name": "Cruise"}]
}`

func seed(t *testing.T, files map[string]string) *Library {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, files)
	return New(loam.NewTypedRepository[Entry](repo))
}

func TestLibrary_Contract(t *testing.T) {
	lib := seed(t, map[string]string{
		"toggle.md": toggleMarkdown,
		"maze.json": mazeJSON,
	})
	tests.LibraryContractTest(t, lib, map[string]string{
		"toggle": "Toggle",
		"maze":   "Maze",
	})
}

func TestLibrary_Get_BuildsMachine(t *testing.T) {
	lib := seed(t, map[string]string{"toggle.md": toggleMarkdown})

	doc, err := lib.Get(context.Background(), "toggle")
	require.NoError(t, err)
	assert.Equal(t, "Press the button to light the lamp.", doc.Description)

	m, mapping, err := schema.NewMachine(doc)
	require.NoError(t, err)
	assert.Equal(t, "On", mapping.States[2].Name())
	assert.Len(t, m.Transitions(), 1)

	p, err := doc.Params()
	require.NoError(t, err)
	assert.Equal(t, 40*time.Millisecond, p.TimeStep)
}

func TestLibrary_List_NormalizesIDs(t *testing.T) {
	lib := seed(t, map[string]string{
		"toggle.md":       toggleMarkdown,
		"arena/maze.json": mazeJSON,
		"named.yaml":      "id: explicit.yaml\nname: Named\n",
	})

	ids, err := lib.List(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"toggle", "arena/maze", "explicit"}, ids)
}

func TestLibrary_List_DetectsCollisions(t *testing.T) {
	lib := seed(t, map[string]string{
		"maze.md":   "---\nname: One\n---\n",
		"maze.json": `{"name": "Two"}`,
	})

	_, err := lib.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLibrary_Get_NotFound(t *testing.T) {
	lib := seed(t, map[string]string{"maze.json": mazeJSON})
	_, err := lib.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)
}

func TestLibrary_NameDefaultsToID(t *testing.T) {
	lib := seed(t, map[string]string{"anon.json": `{"states": [{"id": 1}]}`})
	doc, err := lib.Get(context.Background(), "anon")
	require.NoError(t, err)
	assert.Equal(t, "anon", doc.Name)
}
