// Package storage abstracts attachment blob storage. The task core keeps
// only the opaque reference a FileStore returns.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type FileStore interface {
	// Save persists the blob and returns an opaque reference.
	Save(ctx context.Context, fileName string, r io.Reader) (string, error)
	// Open returns the blob for a previously returned reference.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// LocalStore keeps blobs as files under a single directory, named by a
// generated uuid so the original file name never touches the filesystem.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(ctx context.Context, fileName string, r io.Reader) (string, error) {
	ref := uuid.NewString()
	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return ref, nil
}

func (s *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	// Refs are uuids we generated; reject anything path-like.
	if ref != filepath.Base(ref) {
		return nil, fmt.Errorf("invalid storage ref %q", ref)
	}
	return os.Open(filepath.Join(s.dir, ref))
}
