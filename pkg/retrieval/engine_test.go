package retrieval_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/veracity/pkg/adapter"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/retrieval"
	"github.com/m-mizutani/veracity/pkg/vector"
)

func loadKnowledge(t *testing.T, store *vector.Store, embedder adapter.Embedder, collection string, texts ...string) {
	t.Helper()
	c := store.Collection(collection)
	for _, text := range texts {
		vec, err := embedder.Embed(context.Background(), text)
		gt.NoError(t, err)
		c.Insert(&model.VectorRecord{
			ID:        model.NewRecordID(),
			Text:      text,
			Embedding: vec,
			Kind:      model.RecordKindKnowledge,
			Knowledge: &model.KnowledgeMeta{Category: "test", Importance: 0.8, Quality: 0.8},
			CreatedAt: time.Now(),
		})
	}
}

func TestExpandQuery(t *testing.T) {
	terms := retrieval.ExpandQuery("anxiety about sleeping")

	set := map[string]bool{}
	for _, term := range terms {
		set[term] = true
	}

	gt.True(t, set["anxiety"])
	gt.True(t, set["anxious"]) // synonym
	gt.True(t, set["sleeping"])
	gt.True(t, set["sleep"]) // stem

	// Original tokens come before expansions.
	gt.Equal(t, terms[0], "anxiety")
}

func TestRetrieveRanksRelevantFirst(t *testing.T) {
	store := vector.NewStore()
	embedder := adapter.NewSimulatedEmbedder(128)
	loadKnowledge(t, store, embedder, "knowledge_base",
		"deep breathing exercises help calm anxiety and panic",
		"a regular sleep schedule improves rest quality",
		"cooking pasta requires boiling salted water",
	)

	e := retrieval.New(store, embedder)
	passages, err := e.Retrieve(context.Background(), "how do I calm my anxiety", nil, retrieval.Options{Limit: 2})
	gt.NoError(t, err)

	gt.A(t, passages).Longer(0)
	gt.S(t, passages[0].Record.Text).Contains("anxiety")
}

func TestRetrieveRerankCollapsesDuplicates(t *testing.T) {
	store := vector.NewStore()
	embedder := adapter.NewSimulatedEmbedder(128)
	loadKnowledge(t, store, embedder, "knowledge_base",
		"deep breathing exercises help calm anxiety and panic",
		"deep breathing exercises help calm anxiety and panic attacks",
		"journaling before bed can reduce rumination",
	)

	e := retrieval.New(store, embedder)
	passages, err := e.Retrieve(context.Background(), "calm anxiety breathing", nil, retrieval.Options{Limit: 3, Rerank: true})
	gt.NoError(t, err)

	// The two near-identical passages collapse into one.
	gt.A(t, passages).Length(2)
}

func TestRetrieveLimitsCollections(t *testing.T) {
	store := vector.NewStore()
	embedder := adapter.NewSimulatedEmbedder(128)
	loadKnowledge(t, store, embedder, "knowledge_base", "breathing exercises calm anxiety")
	loadKnowledge(t, store, embedder, "conversation_turns", "I tried breathing exercises for anxiety")

	e := retrieval.New(store, embedder)
	passages, err := e.Retrieve(context.Background(), "breathing exercises anxiety", nil, retrieval.Options{
		Limit:       10,
		Collections: []string{"knowledge_base"},
	})
	gt.NoError(t, err)

	gt.A(t, passages).Length(1)
	gt.Equal(t, passages[0].Record.Kind, model.RecordKindKnowledge)
}

func TestAugmentShortResponsePrepends(t *testing.T) {
	passage := &retrieval.Passage{
		Record: &model.VectorRecord{Text: "Deep breathing activates the parasympathetic nervous system"},
	}

	out := retrieval.Augment("That sounds difficult.", passage)
	gt.S(t, out).Contains("Deep breathing activates")
	gt.S(t, out).Contains("That sounds difficult.")
	gt.True(t, len(out) > len("That sounds difficult."))

	// Prepended, not appended.
	gt.True(t, strings.HasPrefix(out, "Deep breathing"))
}

func TestAugmentLongResponseSplicesAfterSecondSentence(t *testing.T) {
	passage := &retrieval.Passage{
		Record: &model.VectorRecord{Text: "Grounding techniques reconnect attention with the present"},
	}
	response := "I hear you. That sounds heavy. Let's think about next steps. You are not alone."

	out := retrieval.Augment(response, passage)

	// The passage lands after the second sentence.
	gt.S(t, out).Contains("That sounds heavy. Grounding techniques")
}

func TestAugmentIdempotent(t *testing.T) {
	passage := &retrieval.Passage{
		Record: &model.VectorRecord{Text: "Grounding techniques reconnect attention with the present"},
	}

	once := retrieval.Augment("That sounds difficult.", passage)
	twice := retrieval.Augment(once, passage)
	gt.Equal(t, once, twice)
}

func TestAugmentSkipsWhenTermsAlreadyPresent(t *testing.T) {
	passage := &retrieval.Passage{
		Record: &model.VectorRecord{Text: "breathing exercises calm anxiety"},
	}
	response := "Try some breathing exercises; they can calm anxiety quickly."

	gt.Equal(t, retrieval.Augment(response, passage), response)
}
