package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/schema"
)

// Store implements ports.DocumentStore using the local filesystem.
// Each document is one file in BasePath named after its key.
type Store struct {
	BasePath string
	Format   schema.Format
}

// New creates a JSON Store with the given base path.
// If basePath is empty, it defaults to ".automata/machines".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".automata", "machines")
	}
	return &Store{BasePath: basePath, Format: schema.FormatJSON}
}

// NewYAML is New writing YAML documents.
func NewYAML(basePath string) *Store {
	s := New(basePath)
	s.Format = schema.FormatYAML
	return s
}

func (s *Store) ext() string {
	if s.Format == schema.FormatYAML {
		return ".yaml"
	}
	return ".json"
}

func (s *Store) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.BasePath, key+s.ext()), nil
}

// Save persists the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, key string, doc *schema.Document) error {
	destPath, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}

	data, err := schema.Marshal(doc, s.Format)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+key+"-*"+s.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing document for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads and decodes the document.
func (s *Store) Load(ctx context.Context, key string) (*schema.Document, error) {
	filePath, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}

	doc, err := schema.Unmarshal(data, s.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filePath, err)
	}
	return doc, nil
}

// Delete removes the document file.
func (s *Store) Delete(ctx context.Context, key string) error {
	filePath, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}

// List returns the keys of all stored documents.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	ext := s.ext()
	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ext))
	}
	return keys, nil
}
