package repository

import (
	"context"

	"github.com/m-mizutani/veracity/pkg/model"
)

// nullRepo is used when the durable store is disabled or unavailable.
// Writes vanish, reads come back empty, nothing errors: the pipeline keeps
// working without durability.
type nullRepo struct{}

// NewNull creates a no-op repository
func NewNull() Repository {
	return &nullRepo{}
}

func (r *nullRepo) PutRecords(ctx context.Context, records []*model.PersistedVectorRecord) error {
	return nil
}

func (r *nullRepo) GetRecords(ctx context.Context) ([]*model.PersistedVectorRecord, error) {
	return nil, nil
}

func (r *nullRepo) PutStats(ctx context.Context, stats *model.StoreStats) error {
	return nil
}

func (r *nullRepo) GetStats(ctx context.Context) (*model.StoreStats, error) {
	return nil, ErrStatsNotFound
}

func (r *nullRepo) Close() error {
	return nil
}
