package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/veracity/pkg/cache"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/repository"
	"github.com/m-mizutani/veracity/pkg/vector"
)

func record(text string, importance, quality float64) *model.VectorRecord {
	return &model.VectorRecord{
		ID:        model.NewRecordID(),
		Text:      text,
		Embedding: []float32{1, 0, 0},
		Kind:      model.RecordKindKnowledge,
		Knowledge: &model.KnowledgeMeta{Category: "test", Importance: importance, Quality: quality},
		CreatedAt: time.Now(),
	}
}

func records(n int, importance float64) []*model.VectorRecord {
	out := make([]*model.VectorRecord, n)
	for i := range out {
		out[i] = record(fmt.Sprintf("record body number %03d", i), importance, importance)
	}
	return out
}

// failingRepo simulates an unavailable durable store
type failingRepo struct{}

func (r *failingRepo) PutRecords(ctx context.Context, records []*model.PersistedVectorRecord) error {
	return errors.New("store unavailable")
}
func (r *failingRepo) GetRecords(ctx context.Context) ([]*model.PersistedVectorRecord, error) {
	return nil, errors.New("store unavailable")
}
func (r *failingRepo) PutStats(ctx context.Context, stats *model.StoreStats) error {
	return errors.New("store unavailable")
}
func (r *failingRepo) GetStats(ctx context.Context) (*model.StoreStats, error) {
	return nil, errors.New("store unavailable")
}
func (r *failingRepo) Close() error { return nil }

func testPolicy() cache.Policy {
	p := cache.DefaultPolicy()
	p.MaxTotal = 250
	p.MaxPerCollection = 300
	p.PriorityCollections = []string{"knowledge_base"}
	return p
}

func TestPersistQualityGate(t *testing.T) {
	repo := repository.NewMemory()
	p := cache.New(repo, cache.DefaultPolicy())
	ctx := context.Background()

	input := []*model.VectorRecord{
		record("high quality entry about sleep", 0.2, 0.9),
		record("high importance entry about stress", 0.9, 0.2),
		record("low value entry about nothing", 0.2, 0.2),
		record("short", 0.9, 0.9), // below minimum text length
	}

	kept := p.Persist(ctx, "evaluations", input)
	gt.Equal(t, kept, 2)
}

func TestPersistPriorityBypassesGate(t *testing.T) {
	repo := repository.NewMemory()
	p := cache.New(repo, cache.DefaultPolicy())

	input := []*model.VectorRecord{
		record("low value but priority collection", 0.1, 0.1),
	}

	kept := p.Persist(context.Background(), "knowledge_base", input)
	gt.Equal(t, kept, 1)
}

func TestPersistGlobalCapKeepsPriority(t *testing.T) {
	repo := repository.NewMemory()
	p := cache.New(repo, testPolicy())
	ctx := context.Background()

	// 220 non-priority plus 80 priority exceeds the 250 cap.
	gt.Equal(t, p.Persist(ctx, "conversation_turns", records(220, 0.9)), 220)
	p.Persist(ctx, "knowledge_base", records(80, 0.5))

	persisted, err := repo.GetRecords(ctx)
	gt.NoError(t, err)
	gt.A(t, persisted).Length(250)

	prio := 0
	for _, rec := range persisted {
		if rec.Collection == "knowledge_base" {
			prio++
		}
	}
	gt.Equal(t, prio, 80)
}

func TestPersistPriorityShareBounds(t *testing.T) {
	repo := repository.NewMemory()
	p := cache.New(repo, testPolicy())
	ctx := context.Background()

	// Priority demand far above the cap: priority claims at most 80% of
	// slots, never squeezing non-priority out entirely.
	p.Persist(ctx, "conversation_turns", records(100, 0.9))
	p.Persist(ctx, "knowledge_base", records(300, 0.5))

	persisted, err := repo.GetRecords(ctx)
	gt.NoError(t, err)
	gt.A(t, persisted).Length(250)

	prio := 0
	for _, rec := range persisted {
		if rec.Collection == "knowledge_base" {
			prio++
		}
	}
	gt.Equal(t, prio, 200) // 80% of 250
	gt.Number(t, prio).GreaterOrEqual(125)
}

func TestPersistExpiration(t *testing.T) {
	repo := repository.NewMemory()

	base := time.Now()
	now := base
	p := cache.New(repo, cache.DefaultPolicy(), cache.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	gt.Equal(t, p.Persist(ctx, "knowledge_base", records(5, 0.9)), 5)

	// Eight days later everything from the first write has expired.
	now = base.Add(8 * 24 * time.Hour)
	p.Persist(ctx, "evaluations", records(3, 0.9))

	persisted, err := repo.GetRecords(ctx)
	gt.NoError(t, err)
	gt.A(t, persisted).Length(3)
	for _, rec := range persisted {
		gt.Equal(t, rec.Collection, "evaluations")
	}
}

func TestPersistReplacesCollectionSnapshot(t *testing.T) {
	repo := repository.NewMemory()
	p := cache.New(repo, cache.DefaultPolicy())
	ctx := context.Background()

	p.Persist(ctx, "knowledge_base", records(10, 0.9))
	p.Persist(ctx, "knowledge_base", records(4, 0.9))

	persisted, err := repo.GetRecords(ctx)
	gt.NoError(t, err)
	gt.A(t, persisted).Length(4)
}

func TestLoadRoundTrip(t *testing.T) {
	repo := repository.NewMemory()
	p := cache.New(repo, cache.DefaultPolicy())
	ctx := context.Background()

	p.Persist(ctx, "knowledge_base", records(6, 0.9))
	p.Persist(ctx, "evaluations", records(2, 0.9))

	loaded := p.Load(ctx, "knowledge_base")
	gt.A(t, loaded).Length(6)
	for _, rec := range loaded {
		gt.Equal(t, rec.Kind, model.RecordKindKnowledge)
	}
}

func TestWarmPopulatesStore(t *testing.T) {
	repo := repository.NewMemory()
	p := cache.New(repo, cache.DefaultPolicy())
	ctx := context.Background()

	p.Persist(ctx, "knowledge_base", records(6, 0.9))
	p.Persist(ctx, "evaluations", records(2, 0.9))

	store := vector.NewStore()
	gt.Equal(t, p.Warm(ctx, store), 8)
	gt.Equal(t, store.Collection("knowledge_base").Size(), 6)
	gt.Equal(t, store.Collection("evaluations").Size(), 2)
}

func TestUnavailableStoreIsNoOp(t *testing.T) {
	p := cache.New(&failingRepo{}, cache.DefaultPolicy())
	ctx := context.Background()

	gt.Equal(t, p.Persist(ctx, "knowledge_base", records(3, 0.9)), 0)
	gt.A(t, p.Load(ctx, "knowledge_base")).Length(0)
	gt.Equal(t, p.Warm(ctx, vector.NewStore()), 0)

	_, err := p.Stats(ctx)
	gt.Error(t, err)
}

func TestStats(t *testing.T) {
	repo := repository.NewMemory()
	p := cache.New(repo, cache.DefaultPolicy())
	ctx := context.Background()

	p.Persist(ctx, "knowledge_base", records(6, 0.9))

	stats, err := p.Stats(ctx)
	gt.NoError(t, err)
	gt.Equal(t, stats.TotalRecords, 6)
	gt.Equal(t, stats.PerCollection["knowledge_base"], 6)
}
