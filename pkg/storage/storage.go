// Package storage defines the FileStore interface for reading and writing
// code files. Callers work with forward-slash paths relative to a store root
// and can swap the local disk for an in-memory store in tests.
//
// The code library keeps its `<name>_codes.<ext>` files in a FileStore.
package storage

import (
	"context"
	"fmt"
	"io"
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// The caller must close the returned ReadCloser when done.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing.
	// If the file already exists it is truncated.
	// The caller must close the returned WriteCloser to flush data.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Deleting a missing file returns nil.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths of all files under dir, sorted. An empty dir
	// lists the whole store. A missing dir yields an empty list.
	List(ctx context.Context, dir string) ([]string, error)
}

// ReadFile reads the whole named file from s.
func ReadFile(ctx context.Context, s FileStore, path string) ([]byte, error) {
	r, err := s.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// WriteFile replaces the named file in s with data.
func WriteFile(ctx context.Context, s FileStore, path string, data []byte) error {
	w, err := s.Write(ctx, path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	return w.Close()
}
