// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package snapshots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/meridian/internal/config"
	"github.com/tomtom215/meridian/internal/logging"
	"github.com/tomtom215/meridian/internal/metrics"
	"github.com/tomtom215/meridian/internal/models"
)

// ErrNotFound is returned when no snapshot matches the request.
var ErrNotFound = errors.New("snapshot not found")

// Key layout
const (
	latestKey     = "snapshot:latest"
	historyPrefix = "snapshot:history:" // + zero-padded unix nanos + ":" + id
	idPrefix      = "snapshot:id:"      // + id -> history key
)

// Store persists composed dashboards in BadgerDB: the latest snapshot for
// restart recovery and a bounded, time-ordered history.
type Store struct {
	db          *badger.DB
	historySize int
	inMemory    bool

	// Serializes Save so prune never races another writer
	mu sync.Mutex
}

// Open opens (or creates) the snapshot store described by cfg.
func Open(cfg *config.SnapshotConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	historySize := cfg.HistorySize
	if historySize < 1 {
		historySize = 1
	}

	s := &Store{db: db, historySize: historySize, inMemory: cfg.InMemory}

	if n, err := s.countHistory(); err == nil {
		metrics.SnapshotHistoryEntries.Set(float64(n))
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int("history_size", historySize).
		Msg("Snapshot store opened")
	return s, nil
}

// Close closes the underlying BadgerDB.
func (s *Store) Close() error {
	return s.db.Close()
}

func historyKey(snap *models.DashboardSnapshot) string {
	return fmt.Sprintf("%s%020d:%s", historyPrefix, snap.GeneratedAt.UnixNano(), snap.ID)
}

// Save stores snap as the latest snapshot, appends it to history and prunes
// history down to the configured size.
func (s *Store) Save(ctx context.Context, snap *models.DashboardSnapshot) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap == nil || snap.ID == "" {
		return fmt.Errorf("snapshot must have an id")
	}

	start := time.Now()
	defer func() {
		metrics.RecordSnapshotPersist(time.Since(start), err)
	}()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hKey := historyKey(snap)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(latestKey), data); err != nil {
			return fmt.Errorf("set latest snapshot: %w", err)
		}
		if err := txn.Set([]byte(hKey), data); err != nil {
			return fmt.Errorf("set snapshot history: %w", err)
		}
		if err := txn.Set([]byte(idPrefix+snap.ID), []byte(hKey)); err != nil {
			return fmt.Errorf("set snapshot id index: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.prune()
}

// Latest returns the most recently saved snapshot.
func (s *Store) Latest(ctx context.Context) (*models.DashboardSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.get([]byte(latestKey))
}

// Get returns a snapshot from history by id.
func (s *Store) Get(ctx context.Context, id string) (*models.DashboardSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hKey []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(idPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get snapshot index: %w", err)
		}
		hKey, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.get(hKey)
}

func (s *Store) get(key []byte) (*models.DashboardSnapshot, error) {
	var snap models.DashboardSnapshot
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// History returns summaries of up to limit stored snapshots, newest first.
// A limit <= 0 returns the whole history.
func (s *Store) History(ctx context.Context, limit int) ([]models.SnapshotSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summaries := make([]models.SnapshotSummary, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(historyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts from the last key under the prefix
		seek := append([]byte(historyPrefix), 0xFF)
		for it.Seek(seek); it.ValidForPrefix([]byte(historyPrefix)); it.Next() {
			if limit > 0 && len(summaries) >= limit {
				break
			}
			var snap models.DashboardSnapshot
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &snap)
			}); err != nil {
				return fmt.Errorf("decode snapshot %s: %w", it.Item().Key(), err)
			}
			summaries = append(summaries, snap.Summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// historyKeys returns history keys oldest first.
func (s *Store) historyKeys() ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(historyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

func (s *Store) countHistory() (int, error) {
	keys, err := s.historyKeys()
	return len(keys), err
}

// prune deletes the oldest history entries beyond historySize.
func (s *Store) prune() error {
	keys, err := s.historyKeys()
	if err != nil {
		return fmt.Errorf("list snapshot history: %w", err)
	}

	excess := len(keys) - s.historySize
	if excess > 0 {
		err = s.db.Update(func(txn *badger.Txn) error {
			for _, key := range keys[:excess] {
				if err := txn.Delete([]byte(key)); err != nil {
					return fmt.Errorf("delete snapshot %s: %w", key, err)
				}
				if id := key[strings.LastIndex(key, ":")+1:]; id != "" {
					if err := txn.Delete([]byte(idPrefix + id)); err != nil {
						return fmt.Errorf("delete snapshot index %s: %w", id, err)
					}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		s.runGC()
		keys = keys[excess:]
	}

	metrics.SnapshotHistoryEntries.Set(float64(len(keys)))
	return nil
}

// runGC reclaims value log space after pruning. In-memory stores have no value log.
func (s *Store) runGC() {
	if s.inMemory {
		return
	}
	for {
		err := s.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return
		}
		if err != nil {
			logging.Debug().Err(err).Msg("Snapshot store value log GC skipped")
			return
		}
	}
}
