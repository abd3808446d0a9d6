package repository

import (
	"context"
	"encoding/json"
	"errors"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/model"
)

const (
	objectRecords = "veracity/records.json"
	objectStats   = "veracity/stats.json"
)

// storageRepo implements Repository as JSON snapshots in a Cloud Storage
// bucket. The whole persisted set is one object, which matches the
// last-writer-wins write model: every merge replaces the snapshot.
type storageRepo struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a Cloud Storage backed repository
func NewStorage(ctx context.Context, bucketName string) (Repository, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageRepo{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (r *storageRepo) putObject(ctx context.Context, key string, v any) error {
	w := r.client.Bucket(r.bucketName).Object(key).NewWriter(ctx)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to encode snapshot", goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to write snapshot", goerr.V("key", key))
	}
	return nil
}

func (r *storageRepo) getObject(ctx context.Context, key string, v any) (bool, error) {
	reader, err := r.client.Bucket(r.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to open snapshot", goerr.V("key", key))
	}
	defer reader.Close()

	if err := json.NewDecoder(reader).Decode(v); err != nil {
		return false, goerr.Wrap(err, "failed to decode snapshot", goerr.V("key", key))
	}
	return true, nil
}

func (r *storageRepo) PutRecords(ctx context.Context, records []*model.PersistedVectorRecord) error {
	return r.putObject(ctx, objectRecords, records)
}

func (r *storageRepo) GetRecords(ctx context.Context) ([]*model.PersistedVectorRecord, error) {
	var records []*model.PersistedVectorRecord
	if _, err := r.getObject(ctx, objectRecords, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *storageRepo) PutStats(ctx context.Context, stats *model.StoreStats) error {
	return r.putObject(ctx, objectStats, stats)
}

func (r *storageRepo) GetStats(ctx context.Context) (*model.StoreStats, error) {
	var stats *model.StoreStats
	found, err := r.getObject(ctx, objectStats, &stats)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrStatsNotFound
	}
	return stats, nil
}

func (r *storageRepo) Close() error {
	if err := r.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage client")
	}
	return nil
}
