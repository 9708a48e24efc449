package draft

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned when no draft is stored under an id.
var ErrNotFound = errors.New("draft not found")

// Store keeps drafts by id.
type Store interface {
	Save(ctx context.Context, d *Draft) error
	Load(ctx context.Context, id string) (*Draft, error)
	Delete(ctx context.Context, id string) error
}

// FileStore keeps one JSON file per draft in a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create draft dir %s: %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

// Save writes d atomically.
func (s *FileStore) Save(ctx context.Context, d *Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(d.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", d.ID, err)
	}

	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("write draft %s: %w", d.ID, err)
	}

	return nil
}

// Load reads the draft stored under id.
func (s *FileStore) Load(ctx context.Context, id string) (*Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("read draft %s: %w", id, err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}

	return &d, nil
}

// Delete removes the draft stored under id. Deleting a missing draft is
// not an error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}

	return nil
}

func (s *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid draft id %q", id)
	}

	return filepath.Join(s.dir, id+".json"), nil
}

// atomicWrite writes data to a temp file then renames it over path.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".draft-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
