package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files on the local filesystem
type Local struct {
	baseDir       string
	publicBaseURL string
}

// NewLocal creates a filesystem store rooted at baseDir. Object URLs are
// publicBaseURL joined with the object key.
func NewLocal(baseDir, publicBaseURL string) (*Local, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("blob directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &Local{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Store implements Store
func (l *Local) Store(ctx context.Context, content []byte, meta Metadata) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	key := ObjectKey(meta)
	full, err := l.resolve(key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return Object{}, fmt.Errorf("failed to create blob directory: %w", err)
	}

	// write to a temp file first so readers never see a partial object
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("failed to close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("failed to commit blob: %w", err)
	}

	return Object{URL: l.publicBaseURL + "/" + key, ID: key}, nil
}

// Delete implements Store. Deleting a missing object is not an error.
func (l *Local) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(id)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s: %w", id, err)
	}
	return nil
}

// Open returns a reader for a stored object
func (l *Local) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob %s: %w", id, err)
	}
	return f, nil
}

// resolve maps a key to a path inside baseDir, rejecting traversal
func (l *Local) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash("/" + key))
	full := filepath.Join(l.baseDir, clean)
	rel, err := filepath.Rel(l.baseDir, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return full, nil
}
