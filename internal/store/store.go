// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reportkit/internal/config"
	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/report"
)

const prefixReport = "report:"

var (
	// ErrNotFound is returned for report ids with no saved report.
	ErrNotFound = errors.New("report not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("report store closed")

	// ErrInvalidID is returned for empty ids or ids containing the key separator.
	ErrInvalidID = errors.New("invalid report id")
)

// Record is a saved report.
type Record struct {
	ID         string                  `json:"id"`
	Definition models.ReportDefinition `json:"definition"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// Store persists report definitions.
type Store interface {
	Save(ctx context.Context, id string, def models.ReportDefinition) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// BadgerStore keeps one JSON record per report under "report:<id>".
type BadgerStore struct {
	db       *badger.DB
	mu       sync.RWMutex
	closed   bool
	inMemory bool
	now      func() time.Time
}

// Open opens (or creates) the store described by cfg.
func Open(cfg config.StoreConfig) (*BadgerStore, error) {
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

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Report store opened")
	return &BadgerStore{db: db, inMemory: cfg.InMemory, now: time.Now}, nil
}

// OpenInMemory opens a throwaway store, mainly for tests.
func OpenInMemory() (*BadgerStore, error) {
	return Open(config.StoreConfig{InMemory: true})
}

func reportKey(id string) []byte {
	return []byte(prefixReport + id)
}

func validID(id string) error {
	if id == "" || strings.ContainsAny(id, ":/") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func (s *BadgerStore) checkOpen() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Save stores def under id, stripping session-local flags. The creation
// time of an existing record is kept.
func (s *BadgerStore) Save(ctx context.Context, id string, def models.ReportDefinition) (Record, error) {
	if err := validID(id); err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return Record{}, err
	}

	now := s.now().UTC()
	rec := Record{
		ID:         id,
		Definition: report.ForPersistence(def),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := readRecord(txn, id)
		switch {
		case err == nil:
			rec.CreatedAt = existing.CreatedAt
		case !errors.Is(err, ErrNotFound):
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		return txn.SetEntry(badger.NewEntry(reportKey(id), data))
	})
	if err != nil {
		return Record{}, fmt.Errorf("save report %s: %w", id, err)
	}

	logging.Ctx(ctx).Debug().Str("report_id", id).Msg("Report saved")
	return rec, nil
}

// Get returns the report saved under id, normalized for loading.
func (s *BadgerStore) Get(ctx context.Context, id string) (Record, error) {
	if err := validID(id); err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return Record{}, err
	}

	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = readRecord(txn, id)
		return err
	})
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns every saved report, most recently updated first. Records
// that fail to decode are skipped with a warning.
func (s *BadgerStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	out := []Record{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixReport)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var rec Record
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Skipping undecodable report")
				continue
			}
			rec.Definition = report.FromPersisted(rec.Definition)
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Delete removes the report saved under id.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(reportKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return txn.Delete(reportKey(id))
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	return err
}

// RunGC compacts the value log until badger finds nothing left to rewrite
// and returns the number of rewritten files. In-memory stores have no value
// log and return 0.
func (s *BadgerStore) RunGC(discardRatio float64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if s.inMemory {
		return 0, nil
	}

	rewritten := 0
	for {
		err := s.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return rewritten, nil
		}
		if err != nil {
			return rewritten, fmt.Errorf("run value log GC: %w", err)
		}
		rewritten++
	}
}

// Ping reports whether the store is open.
func (s *BadgerStore) Ping() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Close closes the underlying database. It is safe to call twice.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Report store closed")
	return nil
}

func readRecord(txn *badger.Txn, id string) (Record, error) {
	item, err := txn.Get(reportKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read report %s: %w", id, err)
	}

	var rec Record
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return Record{}, fmt.Errorf("decode report %s: %w", id, err)
	}
	rec.Definition = report.FromPersisted(rec.Definition)
	return rec, nil
}
