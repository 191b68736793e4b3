package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/automata/pkg/adapters/file"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements DocumentStore
var _ ports.DocumentStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		ports.RunDocumentStoreContract(t, file.New(t.TempDir()))
	})
	t.Run("yaml", func(t *testing.T) {
		ports.RunDocumentStoreContract(t, file.NewYAML(t.TempDir()))
	})
}

func TestFileStore_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "machines")
	store := file.NewYAML(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "maze", &schema.Document{Name: "maze"}))

	data, err := os.ReadFile(filepath.Join(dir, "maze.yaml"))
	require.NoError(t, err, "directory is created on first save")
	assert.Contains(t, string(data), "name: maze")

	// Stray files and leftovers from an interrupted save are not documents.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-maze-123.yaml"), []byte("x"), 0644))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"maze"}, keys)
}

func TestFileStore_InvalidKeys(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		assert.Error(t, store.Save(ctx, key, &schema.Document{}), key)
		_, err := store.Load(ctx, key)
		assert.Error(t, err, key)
		assert.Error(t, store.Delete(ctx, key), key)
	}
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	keys, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}
