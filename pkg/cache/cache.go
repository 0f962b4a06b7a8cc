// Package cache memoizes pipeline results by invocation fingerprint.
//
// A Key is the xxhash of a canonical msgpack encoding of everything that
// determines a result (input codes, operator, parameters, mask, levels).
// Two invocations with equal keys produce equal output, so a cached batch
// can be returned without recomputation.
//
// Memory backs tests and single runs; Badger persists results across CLI
// invocations.
package cache

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when no result is cached under a key.
var ErrNotFound = errors.New("cache: not found")

// Key identifies one invocation.
type Key uint64

// String returns the key as 16 hex digits.
func (k Key) String() string {
	return fmt.Sprintf("%016x", uint64(k))
}

// ParseKey parses the String form of a key.
func ParseKey(s string) (Key, error) {
	u, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("cache: invalid key %q: %w", s, err)
	}
	return Key(u), nil
}

// Entry is a cached result returned by Entries.
type Entry struct {
	Key   Key
	Batch [][]int
}

// Cache stores code batches by key.
type Cache interface {
	// Get returns the batch stored under key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([][]int, error)

	// Set stores batch under key, replacing any previous value.
	Set(ctx context.Context, key Key, batch [][]int) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error

	// Entries iterates over every cached result in key order.
	Entries(ctx context.Context) iter.Seq2[Entry, error]

	// Close releases resources held by the cache.
	Close() error
}

// Fingerprint hashes v into a Key. Map keys are sorted before hashing so
// equal values always produce equal keys.
func Fingerprint(v any) (Key, error) {
	d := xxhash.New()
	enc := msgpack.NewEncoder(d)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return 0, fmt.Errorf("cache: fingerprint: %w", err)
	}
	return Key(d.Sum64()), nil
}

const keyPrefix = "result:"

func encodeKey(k Key) []byte {
	return []byte(keyPrefix + k.String())
}

func decodeKey(b []byte) (Key, error) {
	s, ok := strings.CutPrefix(string(b), keyPrefix)
	if !ok {
		return 0, fmt.Errorf("cache: unexpected key %q", b)
	}
	return ParseKey(s)
}

func encodeValue(batch [][]int) ([]byte, error) {
	return msgpack.Marshal(batch)
}

func decodeValue(b []byte) ([][]int, error) {
	var batch [][]int
	if err := msgpack.Unmarshal(b, &batch); err != nil {
		return nil, fmt.Errorf("cache: decode value: %w", err)
	}
	return batch, nil
}

func cloneBatch(batch [][]int) [][]int {
	out := make([][]int, len(batch))
	for i, b := range batch {
		out[i] = append([]int{}, b...)
	}
	return out
}
