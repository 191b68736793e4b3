package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/automata/pkg/ports"
)

// LibraryContractTest is a reusable test suite that verifies if an adapter complies with ports.Library.
// expected maps each document ID to the document name it should carry.
func LibraryContractTest(t *testing.T, lib ports.Library, expected map[string]string) {
	t.Helper()
	ctx := context.Background()

	// 1. Test Get (Success)
	t.Run("Get_Success", func(t *testing.T) {
		for id, name := range expected {
			doc, err := lib.Get(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error getting document %s: %v", id, err)
			}
			if doc.Name != name {
				t.Errorf("name mismatch for %s. got %q, want %q", id, doc.Name, name)
			}
		}
	})

	// 2. Test Get (NotFound)
	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := lib.Get(ctx, "non-existent-document")
		if !errors.Is(err, ports.ErrDocumentNotFound) {
			t.Errorf("expected ErrDocumentNotFound, got %v", err)
		}
	})

	// 3. Test List
	t.Run("List", func(t *testing.T) {
		ids, err := lib.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing documents: %v", err)
		}

		if len(ids) != len(expected) {
			t.Errorf("expected %d documents, got %d", len(expected), len(ids))
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}

		for id := range expected {
			if !lookup[id] {
				t.Errorf("document %s missing from list", id)
			}
		}
	})
}
