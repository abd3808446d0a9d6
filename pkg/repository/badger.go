package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/model"
)

// Namespaced keys in the badger store. A whole persisted set lives under
// one key so that a write replaces it atomically.
var (
	keyRecords = []byte("veracity/records")
	keyStats   = []byte("veracity/stats")
)

// badgerRepo implements Repository on a local badger key-value store
type badgerRepo struct {
	db *badger.DB
}

// NewBadger opens (or creates) a badger database at the given path
func NewBadger(path string) (Repository, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open badger database", goerr.V("path", path))
	}

	return &badgerRepo{db: db}, nil
}

func (r *badgerRepo) PutRecords(ctx context.Context, records []*model.PersistedVectorRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal persisted records")
	}

	if err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyRecords, raw)
	}); err != nil {
		return goerr.Wrap(err, "failed to write persisted records")
	}
	return nil
}

func (r *badgerRepo) GetRecords(ctx context.Context) ([]*model.PersistedVectorRecord, error) {
	var records []*model.PersistedVectorRecord

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyRecords)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &records)
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read persisted records")
	}

	return records, nil
}

func (r *badgerRepo) PutStats(ctx context.Context, stats *model.StoreStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal store stats")
	}

	if err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyStats, raw)
	}); err != nil {
		return goerr.Wrap(err, "failed to write store stats")
	}
	return nil
}

func (r *badgerRepo) GetStats(ctx context.Context) (*model.StoreStats, error) {
	var stats *model.StoreStats

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyStats)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrStatsNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stats)
		})
	})
	if err != nil {
		if errors.Is(err, ErrStatsNotFound) {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to read store stats")
	}

	return stats, nil
}

func (r *badgerRepo) Close() error {
	if err := r.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close badger database")
	}
	return nil
}
