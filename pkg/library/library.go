// Package library manages a directory of saved code batches.
//
// Each entry is a file named "<name>_codes.<ext>" where ext is json, yaml
// or msgpack. Entries can be listed, loaded by name, saved, or picked at
// random from a seed, so a fixed seed always picks the same entry for the
// same library contents.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path"
	"strings"

	"github.com/haivivi/acecodes/pkg/codes"
	"github.com/haivivi/acecodes/pkg/storage"
)

// Suffix ends the base name of every library file.
const Suffix = "_codes"

var (
	// ErrEmpty is returned by Random when the library holds no entries.
	ErrEmpty = errors.New("library: no code files")

	// ErrNotFound is returned when no file exists for a name.
	ErrNotFound = errors.New("library: not found")

	// ErrInvalidName is returned for names that cannot form a file name.
	ErrInvalidName = errors.New("library: invalid name")
)

// Item describes one library file.
type Item struct {
	Name   string       `json:"name" yaml:"name"`
	Path   string       `json:"path" yaml:"path"`
	Format codes.Format `json:"format" yaml:"format"`
}

// Library is a code library stored in a FileStore.
type Library struct {
	store storage.FileStore
}

// New returns a library over store.
func New(store storage.FileStore) *Library {
	return &Library{store: store}
}

// FileName returns the file name used for name in format f.
func FileName(name string, f codes.Format) string {
	return name + Suffix + f.Ext()
}

// parseFileName splits "<name>_codes.<ext>". ok is false for any other file.
func parseFileName(p string) (Item, bool) {
	base := path.Base(p)
	ext := path.Ext(base)
	f, err := codes.FormatOf(base)
	if err != nil {
		return Item{}, false
	}
	name, ok := strings.CutSuffix(strings.TrimSuffix(base, ext), Suffix)
	if !ok || name == "" {
		return Item{}, false
	}
	return Item{Name: name, Path: p, Format: f}, true
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// List returns every library file at the top level of the store, sorted by
// path.
func (l *Library) List(ctx context.Context) ([]Item, error) {
	paths, err := l.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	var items []Item
	for _, p := range paths {
		if strings.Contains(p, "/") {
			continue
		}
		if it, ok := parseFileName(p); ok {
			items = append(items, it)
		}
	}
	return items, nil
}

// Find returns the file for name, trying JSON, YAML and msgpack in turn.
func (l *Library) Find(ctx context.Context, name string) (Item, error) {
	if err := validName(name); err != nil {
		return Item{}, err
	}
	for _, f := range codes.Formats {
		p := FileName(name, f)
		ok, err := l.store.Exists(ctx, p)
		if err != nil {
			return Item{}, fmt.Errorf("library: stat %s: %w", p, err)
		}
		if ok {
			return Item{Name: name, Path: p, Format: f}, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Load reads the batch stored under name. A non-nil q narrows the document
// before parsing.
func (l *Library) Load(ctx context.Context, name string, q *codes.Query) ([][]int, Item, error) {
	it, err := l.Find(ctx, name)
	if err != nil {
		return nil, Item{}, err
	}
	batch, err := l.load(ctx, it, q)
	return batch, it, err
}

func (l *Library) load(ctx context.Context, it Item, q *codes.Query) ([][]int, error) {
	data, err := storage.ReadFile(ctx, l.store, it.Path)
	if err != nil {
		return nil, fmt.Errorf("library: %w", err)
	}
	batch, err := codes.Decode(data, it.Format, q)
	if err != nil {
		return nil, fmt.Errorf("library: %s: %w", it.Path, err)
	}
	return batch, nil
}

// Random loads an entry chosen by seed.
func (l *Library) Random(ctx context.Context, seed uint64, q *codes.Query) ([][]int, Item, error) {
	items, err := l.List(ctx)
	if err != nil {
		return nil, Item{}, err
	}
	if len(items) == 0 {
		return nil, Item{}, ErrEmpty
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	it := items[rng.IntN(len(items))]
	slog.Debug("library: random pick", "seed", seed, "name", it.Name, "of", len(items))
	batch, err := l.load(ctx, it, q)
	return batch, it, err
}

// Save writes batch under name in format f, replacing any file of the same
// name and format.
func (l *Library) Save(ctx context.Context, name string, batch [][]int, f codes.Format) (Item, error) {
	if err := validName(name); err != nil {
		return Item{}, err
	}
	data, err := codes.Marshal(batch, f)
	if err != nil {
		return Item{}, fmt.Errorf("library: encode %s: %w", name, err)
	}
	it := Item{Name: name, Path: FileName(name, f), Format: f}
	if err := storage.WriteFile(ctx, l.store, it.Path, data); err != nil {
		return Item{}, fmt.Errorf("library: %w", err)
	}
	return it, nil
}

// Delete removes every file stored under name.
func (l *Library) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	for _, f := range codes.Formats {
		if err := l.store.Delete(ctx, FileName(name, f)); err != nil {
			return fmt.Errorf("library: delete %s: %w", name, err)
		}
	}
	return nil
}
