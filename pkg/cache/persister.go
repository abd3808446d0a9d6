// Package cache layers durability and eviction on top of the in-memory
// vector store. It decides what survives a session: records pass a quality
// gate, collections are capped, and the global cap is split between
// priority and non-priority partitions.
package cache

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/repository"
	"github.com/m-mizutani/veracity/pkg/utils/logging"
	"github.com/m-mizutani/veracity/pkg/vector"
)

// Persister flushes vector collections to a Repository and loads them back.
// Every operation is safe when the durable store is unavailable: failures
// are logged and reported as empty results, never raised to the pipeline.
type Persister struct {
	repo   repository.Repository
	policy Policy
	gate   *regoGate
	now    func() time.Time
}

type Option func(*Persister)

// WithPolicyDir enables the Rego persist gate loaded from the directory.
// When present, data.persist decisions replace the built-in quality gate.
func WithPolicyDir(ctx context.Context, dir string) Option {
	return func(p *Persister) {
		gate, err := newRegoGate(ctx, dir)
		if err != nil {
			logging.From(ctx).Warn("failed to load persist policy, using built-in gate", "dir", dir, "error", err)
			return
		}
		p.gate = gate
	}
}

// WithClock overrides time acquisition (tests only)
func WithClock(now func() time.Time) Option {
	return func(p *Persister) {
		p.now = now
	}
}

func New(repo repository.Repository, policy Policy, opts ...Option) *Persister {
	p := &Persister{
		repo:   repo,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Persist merges the collection's records into the durable set, applying
// expiration, the quality gate, per-collection and global caps, and writes
// the merged set plus refreshed stats. Returns the number of records from
// this collection that survived.
func (p *Persister) Persist(ctx context.Context, collection string, records []*model.VectorRecord) int {
	logger := logging.From(ctx)

	existing, err := p.repo.GetRecords(ctx)
	if err != nil {
		logger.Warn("durable store unavailable, skipping persist", "collection", collection, "error", err)
		return 0
	}

	now := p.now()

	// 1. Expire old entries and drop this collection's previous snapshot;
	// the incoming records fully replace it.
	survivors := make([]*model.PersistedVectorRecord, 0, len(existing))
	for _, rec := range existing {
		if now.Sub(rec.PersistedAt) > p.policy.Expiration {
			continue
		}
		if rec.Collection == collection {
			continue
		}
		survivors = append(survivors, rec)
	}

	// 2. Quality gate on incoming records.
	accepted := make([]*model.PersistedVectorRecord, 0, len(records))
	for _, rec := range records {
		if !p.shouldPersist(ctx, collection, rec) {
			continue
		}
		accepted = append(accepted, &model.PersistedVectorRecord{
			VectorRecord: *rec,
			Collection:   collection,
			PersistedAt:  now,
		})
	}

	// 3. Per-collection cap, most recent first.
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].CreatedAt.After(accepted[j].CreatedAt)
	})
	if len(accepted) > p.policy.MaxPerCollection {
		accepted = accepted[:p.policy.MaxPerCollection]
	}

	// 4. Global cap with priority partitioning.
	merged := p.truncate(append(survivors, accepted...))

	// 5. Atomic write plus stats refresh.
	if err := p.repo.PutRecords(ctx, merged); err != nil {
		logger.Warn("failed to write persisted set", "collection", collection, "error", err)
		return 0
	}

	stats := &model.StoreStats{
		TotalRecords:  len(merged),
		PerCollection: map[string]int{},
		UpdatedAt:     now,
	}
	kept := 0
	for _, rec := range merged {
		stats.PerCollection[rec.Collection]++
		if rec.Collection == collection {
			kept++
		}
	}
	if err := p.repo.PutStats(ctx, stats); err != nil {
		logger.Warn("failed to write store stats", "error", err)
	}

	logger.Debug("persisted collection",
		"collection", collection,
		"incoming", len(records),
		"kept", kept,
		"total", len(merged))

	return kept
}

func (p *Persister) shouldPersist(ctx context.Context, collection string, rec *model.VectorRecord) bool {
	if len(rec.Text) < p.policy.MinTextLength {
		return false
	}
	if p.policy.IsPriority(collection) {
		return true
	}

	if p.gate != nil {
		allow, err := p.gate.Allow(ctx, collection, rec)
		if err != nil {
			logging.From(ctx).Warn("persist policy evaluation failed, using built-in gate", "error", err)
		} else {
			return allow
		}
	}

	return rec.Quality() > p.policy.QualityThreshold || rec.Importance() > p.policy.QualityThreshold
}

// truncate enforces the global cap. Priority collections claim up to
// PriorityMaxShare of the slots; whatever they leave unused goes to the
// non-priority partition. Each partition is trimmed by recency.
func (p *Persister) truncate(merged []*model.PersistedVectorRecord) []*model.PersistedVectorRecord {
	if len(merged) <= p.policy.MaxTotal {
		return merged
	}

	var priority, regular []*model.PersistedVectorRecord
	for _, rec := range merged {
		if p.policy.IsPriority(rec.Collection) {
			priority = append(priority, rec)
		} else {
			regular = append(regular, rec)
		}
	}

	byRecency := func(s []*model.PersistedVectorRecord) {
		sort.SliceStable(s, func(i, j int) bool {
			return s[i].PersistedAt.After(s[j].PersistedAt)
		})
	}
	byRecency(priority)
	byRecency(regular)

	prioCap := int(float64(p.policy.MaxTotal) * p.policy.PriorityMaxShare)
	prioKeep := min(len(priority), prioCap)
	regKeep := min(len(regular), p.policy.MaxTotal-prioKeep)

	// Redistribute slots the non-priority side could not fill.
	if leftover := p.policy.MaxTotal - prioKeep - regKeep; leftover > 0 {
		prioKeep = min(len(priority), prioKeep+leftover)
	}

	out := make([]*model.PersistedVectorRecord, 0, prioKeep+regKeep)
	out = append(out, priority[:prioKeep]...)
	out = append(out, regular[:regKeep]...)
	return out
}

// Load returns the persisted records of one collection mapped back to
// vector records. Unavailable stores yield an empty result.
func (p *Persister) Load(ctx context.Context, collection string) []*model.VectorRecord {
	persisted, err := p.repo.GetRecords(ctx)
	if err != nil {
		logging.From(ctx).Warn("durable store unavailable, skipping load", "collection", collection, "error", err)
		return nil
	}

	var records []*model.VectorRecord
	for _, rec := range persisted {
		if rec.Collection != collection {
			continue
		}
		r := rec.VectorRecord
		records = append(records, &r)
	}
	return records
}

// Warm loads every persisted collection into the vector store. Called once
// at startup before the pipeline starts serving.
func (p *Persister) Warm(ctx context.Context, store *vector.Store) int {
	persisted, err := p.repo.GetRecords(ctx)
	if err != nil {
		logging.From(ctx).Warn("durable store unavailable, starting cold", "error", err)
		return 0
	}

	for _, rec := range persisted {
		r := rec.VectorRecord
		store.Collection(rec.Collection).Insert(&r)
	}

	logging.From(ctx).Info("warmed vector store", "records", len(persisted))
	return len(persisted)
}

// Stats returns the aggregate persisted-store statistics
func (p *Persister) Stats(ctx context.Context) (*model.StoreStats, error) {
	stats, err := p.repo.GetStats(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get store stats")
	}
	return stats, nil
}
