package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/automata/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractDocument is a two-state toggle used by the store contract.
func contractDocument(name string) *schema.Document {
	doc := &schema.Document{
		Version:   schema.CurrentVersion,
		Name:      name,
		Sensors:   []schema.SignalDoc{{Name: "button"}},
		Actuators: []schema.SignalDoc{{Name: "lamp", Description: "on while lit"}},
		StateVars: 1,
		States: []schema.StateDoc{
			{ID: 1, Name: "Off", Encoding: "0"},
			{ID: 2, Name: "On", Encoding: "1"},
		},
		Transitions: []schema.TransitionDoc{
			{ID: 3, Source: 1, Target: 2, Inputs: "1", Outputs: "1"},
			{ID: 4, Source: 2, Target: 1, Inputs: "1", Outputs: "0"},
		},
	}
	doc.SetParams(schema.WorldParams{TimeStep: 20 * time.Millisecond})
	return doc
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore implementation
// adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		doc := contractDocument("toggle")

		err := store.Save(ctx, key, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "toggle", loaded.Name)
		assert.Equal(t, doc.States, loaded.States)
		assert.Equal(t, doc.Transitions, loaded.Transitions)
		assert.Equal(t, doc.Actuators, loaded.Actuators)

		// JSON backends decode numbers as float64; params hide the difference.
		p, err := loaded.Params()
		require.NoError(t, err)
		assert.Equal(t, 20*time.Millisecond, p.TimeStep)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		doc := contractDocument("renamed")
		require.NoError(t, store.Save(ctx, key, doc))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "renamed", loaded.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, contractDocument("toggle")))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, key)
		assert.ErrorIs(t, err, ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")

		assert.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := key + "-1"
		id2 := key + "-2"
		_ = store.Save(ctx, id1, contractDocument("one"))
		_ = store.Save(ctx, id2, contractDocument("two"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, id1)
		assert.Contains(t, keys, id2)
	})
}
