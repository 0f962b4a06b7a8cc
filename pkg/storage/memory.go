package storage

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-memory FileStore, mainly for tests.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (m *Memory) Read(_ context.Context, p string) (io.ReadCloser, error) {
	m.mu.RLock()
	data, ok := m.files[clean(p)]
	m.mu.RUnlock()
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) Write(_ context.Context, p string) (io.WriteCloser, error) {
	return &memoryWriter{m: m, path: clean(p)}, nil
}

func (m *Memory) Delete(_ context.Context, p string) error {
	m.mu.Lock()
	delete(m.files, clean(p))
	m.mu.Unlock()
	return nil
}

func (m *Memory) Exists(_ context.Context, p string) (bool, error) {
	m.mu.RLock()
	_, ok := m.files[clean(p)]
	m.mu.RUnlock()
	return ok, nil
}

func (m *Memory) List(_ context.Context, dir string) ([]string, error) {
	prefix := clean(dir)
	if prefix != "" {
		prefix += "/"
	}
	m.mu.RLock()
	var out []string
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()
	slices.Sort(out)
	return out, nil
}

// memoryWriter publishes its buffer on Close.
type memoryWriter struct {
	m    *Memory
	path string
	buf  bytes.Buffer
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memoryWriter) Close() error {
	w.m.mu.Lock()
	w.m.files[w.path] = bytes.Clone(w.buf.Bytes())
	w.m.mu.Unlock()
	return nil
}
