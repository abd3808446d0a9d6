package knowledge_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/veracity/pkg/adapter"
	"github.com/m-mizutani/veracity/pkg/cache"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/repository"
	"github.com/m-mizutani/veracity/pkg/usecase/knowledge"
	"github.com/m-mizutani/veracity/pkg/vector"
)

func TestLoadSkipsInvalidEntries(t *testing.T) {
	store := vector.NewStore()
	embedder := adapter.NewSimulatedEmbedder(model.EmbeddingDimension)
	loader := knowledge.New(store, embedder)

	entries := []*model.KnowledgeEntry{
		{Content: "grounding techniques anchor attention to the present moment", Category: "coping", Importance: 0.8},
		{Content: "", Category: "coping", Importance: 0.5},
		{Content: "short one", Category: "", Importance: 1.5},
		{Content: "naming five things you can see interrupts spiraling thoughts", Category: "coping", Importance: 0.7},
	}

	loaded := loader.Load(context.Background(), entries, "knowledge_base")

	gt.Equal(t, loaded, 2)
	gt.Equal(t, store.Collection("knowledge_base").Size(), 2)

	for _, rec := range store.Collection("knowledge_base").All() {
		gt.NoError(t, rec.Validate())
		gt.A(t, rec.Embedding).Length(model.EmbeddingDimension)
	}
}

func TestLoadPersistsWhenConfigured(t *testing.T) {
	repo := repository.NewMemory()
	persister := cache.New(repo, cache.DefaultPolicy())

	store := vector.NewStore()
	embedder := adapter.NewSimulatedEmbedder(model.EmbeddingDimension)
	loader := knowledge.New(store, embedder, knowledge.WithPersister(persister))

	entries := []*model.KnowledgeEntry{
		{Content: "progressive muscle relaxation eases physical tension before sleep", Category: "sleep", Importance: 0.9},
	}
	gt.Equal(t, loader.Load(context.Background(), entries, "knowledge_base"), 1)

	stats, err := persister.Stats(context.Background())
	gt.NoError(t, err)
	gt.Equal(t, stats.TotalRecords, 1)
	gt.Equal(t, stats.PerCollection["knowledge_base"], 1)
}
