// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfline/internal/logging"
	"github.com/tomtom215/shelfline/internal/models"
)

// Key layout: one serialized bundle per generation under genKeyPrefix,
// plus a single latest pointer holding the current generation ID.
var (
	latestKey    = []byte("bundle/latest")
	genKeyPrefix = []byte("bundle/gen/")
)

// Store persists artifact bundles in Badger. Publishing writes the new
// generation and repoints latest in one transaction, so readers always
// observe either the previous complete bundle or the new complete
// bundle, never a mix.
type Store struct {
	db   *badger.DB
	keep int
}

// Open opens (or creates) the artifact store at path. keepGenerations
// bounds how many historical generations are retained; older ones are
// pruned on publish.
func Open(path string, keepGenerations int) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{logging.WithComponent("artifact-store")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact store at %s: %w", path, err)
	}

	if keepGenerations < 1 {
		keepGenerations = 1
	}

	return &Store{db: db, keep: keepGenerations}, nil
}

// OpenInMemory opens an ephemeral store, used by tests and by
// deployments that don't need artifacts to survive a restart.
func OpenInMemory(keepGenerations int) (*Store, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(badgerLogger{logging.WithComponent("artifact-store")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory artifact store: %w", err)
	}

	if keepGenerations < 1 {
		keepGenerations = 1
	}

	return &Store{db: db, keep: keepGenerations}, nil
}

// Publish persists the bundle and makes it the latest generation.
func (s *Store) Publish(b *Bundle) error {
	if b.Generation == "" {
		return errors.New("bundle has no generation ID")
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to serialize bundle %s: %w", b.Generation, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(genKey(b.Generation), data); err != nil {
			return err
		}
		return txn.Set(latestKey, []byte(b.Generation))
	})
	if err != nil {
		return fmt.Errorf("failed to publish bundle %s: %w", b.Generation, err)
	}

	if err := s.prune(); err != nil {
		// The new generation is live; failed pruning only wastes space.
		logging.Warn().Err(err).Msg("Failed to prune old artifact generations")
	}

	return nil
}

// LoadLatest reads the current bundle. Returns models.ErrDataUnavailable
// when nothing has been published yet.
func (s *Store) LoadLatest() (*Bundle, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(latestKey)
		if err != nil {
			return err
		}
		gen, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err = txn.Get(genKey(string(gen)))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, models.ErrDataUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest bundle: %w", err)
	}

	bundle := &Bundle{}
	if err := json.Unmarshal(data, bundle); err != nil {
		return nil, fmt.Errorf("failed to deserialize bundle: %w", err)
	}
	bundle.RebuildIndexes()

	return bundle, nil
}

// Generations lists stored generation IDs in unspecified order.
func (s *Store) Generations() ([]string, error) {
	var gens []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(genKeyPrefix); it.ValidForPrefix(genKeyPrefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			gens = append(gens, string(bytes.TrimPrefix(key, genKeyPrefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}

	return gens, nil
}

// prune deletes the oldest generations beyond the retention bound.
// Generation IDs are UUIDs, so age is established via each item's
// version rather than the key.
func (s *Store) prune() error {
	type genEntry struct {
		key     []byte
		version uint64
	}

	var entries []genEntry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(genKeyPrefix); it.ValidForPrefix(genKeyPrefix); it.Next() {
			item := it.Item()
			entries = append(entries, genEntry{
				key:     item.KeyCopy(nil),
				version: item.Version(),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(entries) <= s.keep {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].version < entries[j].version })
	stale := entries[:len(entries)-s.keep]

	return s.db.Update(func(txn *badger.Txn) error {
		for _, e := range stale {
			if err := txn.Delete(e.key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying Badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

func genKey(generation string) []byte {
	return append(append([]byte{}, genKeyPrefix...), generation...)
}

// badgerLogger adapts zerolog to badger.Logger. Badger's info/debug
// output is demoted to debug level; it is chatty during compaction.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
