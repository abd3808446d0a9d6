package repository

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/model"
)

var (
	ErrStatsNotFound = goerr.New("store stats not found")
)

// Repository is the durable store behind the persistent cache layer. A
// PutRecords call replaces the entire persisted set (last-writer-wins);
// implementations must tolerate interleaved calls from multiple sessions
// in the same process.
type Repository interface {
	// PutRecords atomically replaces the persisted record set
	PutRecords(ctx context.Context, records []*model.PersistedVectorRecord) error

	// GetRecords returns the full persisted record set
	GetRecords(ctx context.Context) ([]*model.PersistedVectorRecord, error)

	// PutStats saves the aggregate store statistics
	PutStats(ctx context.Context, stats *model.StoreStats) error

	// GetStats returns the aggregate store statistics
	GetStats(ctx context.Context) (*model.StoreStats, error)

	// Close releases underlying resources
	Close() error
}
