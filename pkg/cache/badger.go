package cache

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger is a Cache backed by BadgerDB v4.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB cache.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// Logger receives badger warnings and errors. If nil, slog.Default is used.
	Logger *slog.Logger
}

// NewBadger opens a BadgerDB-backed Cache.
func NewBadger(bopts BadgerOptions) (*Badger, error) {
	if !bopts.InMemory && bopts.Dir == "" {
		return nil, errors.New("cache: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(bopts.Dir)
	if bopts.InMemory {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	logger := bopts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{logger.With("component", "badger")})
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("cache: open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(_ context.Context, key Key) ([][]int, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeValue(val)
}

func (b *Badger) Set(_ context.Context, key Key, batch [][]int) error {
	val, err := encodeValue(batch)
	if err != nil {
		return fmt.Errorf("cache: encode value: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(key), val)
	})
}

func (b *Badger) Delete(_ context.Context, key Key) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(encodeKey(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (b *Badger) Entries(_ context.Context) iter.Seq2[Entry, error] {
	prefix := []byte(keyPrefix)
	return func(yield func(Entry, error) bool) {
		stopped := false
		err := b.db.View(func(txn *badger.Txn) error {
			iterOpts := badger.DefaultIteratorOptions
			iterOpts.Prefix = prefix
			it := txn.NewIterator(iterOpts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				key, err := decodeKey(item.KeyCopy(nil))
				if err != nil {
					if !yield(Entry{}, err) {
						stopped = true
						return nil
					}
					continue
				}
				val, err := item.ValueCopy(nil)
				if err != nil {
					if !yield(Entry{}, err) {
						stopped = true
						return nil
					}
					continue
				}
				batch, err := decodeValue(val)
				if !yield(Entry{Key: key, Batch: batch}, err) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(Entry{}, err)
		}
	}
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger routes badger output to slog, dropping debug and info
// messages.
type badgerLogger struct {
	l *slog.Logger
}

func (l badgerLogger) Errorf(f string, v ...interface{}) { l.l.Error(fmt.Sprintf(f, v...)) }
func (l badgerLogger) Warningf(f string, v ...interface{}) {
	l.l.Warn(fmt.Sprintf(f, v...))
}
func (badgerLogger) Infof(string, ...interface{})  {}
func (badgerLogger) Debugf(string, ...interface{}) {}
