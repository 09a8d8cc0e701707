// Package artifact defines where serialized model artifacts live. A store
// holds exactly one published artifact; publishing replaces it atomically
// so readers never observe a partial write.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Load when nothing has been published yet.
var ErrNotFound = errors.New("no artifact has been published")

// Store publishes and loads one serialized artifact.
type Store interface {
	// Publish replaces the current artifact with blob.
	Publish(ctx context.Context, blob []byte) error
	// Load returns the current artifact.
	Load(ctx context.Context) ([]byte, error)
	Close() error
}

// Digest is the hex sha256 of a blob, used as a row/object checksum by
// the database backends.
func Digest(blob []byte) string {
	h := sha256.Sum256(blob)
	return hex.EncodeToString(h[:])
}

// FileStore keeps the artifact in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store rooted at path. The directory is created on
// first publish.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the published file location.
func (s *FileStore) Path() string { return s.path }

// Publish writes blob to a sibling temp file, syncs it and renames it over
// the published path.
func (s *FileStore) Publish(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp := s.path + ".tmp-" + uuid.NewString()
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	cleanup := func() { os.Remove(tmp) }

	if _, err := f.Write(blob); err != nil {
		f.Close()
		cleanup()
		return fmt.Errorf("failed to write temp artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		cleanup()
		return fmt.Errorf("failed to publish artifact: %w", err)
	}

	// Persist the rename itself. Not every platform can sync a directory.
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

// Load reads the published file.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return blob, nil
}

func (s *FileStore) Close() error { return nil }
