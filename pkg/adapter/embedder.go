package adapter

import (
	"context"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/utils/logging"
)

// Embedder converts text into a fixed-length vector. Repeated calls on
// identical text must yield vectors whose cosine similarity is ~1.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// GeminiEmbedder adapts the Gemini client to the Embedder interface
type GeminiEmbedder struct {
	gemini    Gemini
	dimension int
}

func NewGeminiEmbedder(gemini Gemini) *GeminiEmbedder {
	return &GeminiEmbedder{
		gemini:    gemini,
		dimension: model.EmbeddingDimension,
	}
}

func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.gemini.Embedding(ctx, text)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed text")
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.New("embedding response is empty")
	}

	vec := resp.Embeddings[0].Values
	if len(vec) != e.dimension {
		return nil, goerr.New("unexpected embedding dimension",
			goerr.V("want", e.dimension), goerr.V("got", len(vec)))
	}

	return vec, nil
}

// FallbackEmbedder wraps a primary embedder and degrades to the simulated
// one when the primary fails. It never returns an error; callers can check
// Degraded() to see whether any call has fallen back.
type FallbackEmbedder struct {
	primary  Embedder
	fallback *SimulatedEmbedder
	degraded atomic.Bool
}

func NewFallbackEmbedder(primary Embedder) *FallbackEmbedder {
	dim := model.EmbeddingDimension
	if primary != nil {
		dim = primary.Dimension()
	}
	return &FallbackEmbedder{
		primary:  primary,
		fallback: NewSimulatedEmbedder(dim),
	}
}

func (e *FallbackEmbedder) Dimension() int {
	return e.fallback.Dimension()
}

// Degraded reports whether any embedding call has used the simulated path
func (e *FallbackEmbedder) Degraded() bool {
	return e.degraded.Load()
}

func (e *FallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.primary != nil {
		vec, err := e.primary.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		logging.From(ctx).Warn("embedding provider failed, using simulated embedding", "error", err)
	}

	e.degraded.Store(true)
	return e.fallback.Embed(ctx, text)
}
