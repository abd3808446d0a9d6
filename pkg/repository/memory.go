package repository

import (
	"context"
	"sync"

	"github.com/m-mizutani/veracity/pkg/model"
)

// memoryRepo is an in-process Repository used in tests and for ephemeral
// sessions that want caching behavior without durability.
type memoryRepo struct {
	mu      sync.RWMutex
	records []*model.PersistedVectorRecord
	stats   *model.StoreStats
}

// NewMemory creates an in-memory repository
func NewMemory() Repository {
	return &memoryRepo{}
}

func (r *memoryRepo) PutRecords(ctx context.Context, records []*model.PersistedVectorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = make([]*model.PersistedVectorRecord, len(records))
	copy(r.records, records)
	return nil
}

func (r *memoryRepo) GetRecords(ctx context.Context) ([]*model.PersistedVectorRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.PersistedVectorRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *memoryRepo) PutStats(ctx context.Context, stats *model.StoreStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = stats
	return nil
}

func (r *memoryRepo) GetStats(ctx context.Context) (*model.StoreStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stats == nil {
		return nil, ErrStatsNotFound
	}
	return r.stats, nil
}

func (r *memoryRepo) Close() error {
	return nil
}
