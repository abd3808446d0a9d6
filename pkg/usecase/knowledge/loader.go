package knowledge

import (
	"context"
	"time"

	"github.com/m-mizutani/veracity/pkg/adapter"
	"github.com/m-mizutani/veracity/pkg/cache"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/logging"
	"github.com/m-mizutani/veracity/pkg/utils/textutil"
	"github.com/m-mizutani/veracity/pkg/vector"
)

// Loader turns knowledge entries into embedded vector records
type Loader struct {
	store     *vector.Store
	embedder  adapter.Embedder
	persister *cache.Persister
}

// Option is a functional option for Loader
type Option func(*Loader)

// WithPersister flushes the collection after loading
func WithPersister(p *cache.Persister) Option {
	return func(l *Loader) {
		l.persister = p
	}
}

// New creates a knowledge Loader
func New(store *vector.Store, embedder adapter.Embedder, opts ...Option) *Loader {
	l := &Loader{
		store:    store,
		embedder: embedder,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load embeds and inserts entries into the named collection. Entries that
// fail validation or embedding are skipped with a warning. Returns how many
// records were inserted.
func (l *Loader) Load(ctx context.Context, entries []*model.KnowledgeEntry, collection string) int {
	logger := logging.From(ctx)
	coll := l.store.Collection(collection)

	loaded := 0
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			logger.Warn("skipping invalid knowledge entry", "error", err)
			continue
		}

		embedding, err := l.embedder.Embed(ctx, entry.Content)
		if err != nil {
			logger.Warn("skipping entry, embedding failed",
				"category", entry.Category,
				"error", err,
			)
			continue
		}

		coll.Insert(&model.VectorRecord{
			ID:        model.NewRecordID(),
			Text:      entry.Content,
			Embedding: embedding,
			Kind:      model.RecordKindKnowledge,
			Knowledge: &model.KnowledgeMeta{
				Category:   entry.Category,
				Importance: entry.Importance,
				Quality:    contentQuality(entry),
			},
			CreatedAt: time.Now(),
		})
		loaded++
	}

	if l.persister != nil && loaded > 0 {
		kept := l.persister.Persist(ctx, collection, coll.All())
		logger.Info("persisted knowledge collection",
			"collection", collection,
			"loaded", loaded,
			"kept", kept,
		)
	}

	return loaded
}

// contentQuality estimates how useful an entry is for retrieval. Longer,
// categorized entries score higher.
func contentQuality(entry *model.KnowledgeEntry) float64 {
	quality := 0.5
	if len(textutil.Tokenize(entry.Content)) >= 12 {
		quality += 0.2
	}
	if entry.Category != "" {
		quality += 0.2
	}
	if quality > 1.0 {
		quality = 1.0
	}
	return quality
}
