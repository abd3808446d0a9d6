package adapter_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/veracity/pkg/adapter"
	"google.golang.org/genai"
)

// mockGemini is a mock implementation of adapter.Gemini for testing
type mockGemini struct {
	generateFunc  func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	embeddingFunc func(ctx context.Context, text string) (*genai.EmbedContentResponse, error)
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, contents, config)
	}
	return nil, errors.New("not implemented")
}

func (m *mockGemini) Embedding(ctx context.Context, text string) (*genai.EmbedContentResponse, error) {
	if m.embeddingFunc != nil {
		return m.embeddingFunc(ctx, text)
	}
	return nil, errors.New("not implemented")
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestSimulatedEmbedderDeterministic(t *testing.T) {
	e := adapter.NewSimulatedEmbedder(128)

	v1, err := e.Embed(context.Background(), "patient reports trouble sleeping")
	gt.NoError(t, err)
	v2, err := e.Embed(context.Background(), "patient reports trouble sleeping")
	gt.NoError(t, err)

	gt.A(t, v1).Length(128)
	gt.Number(t, cosine(v1, v2)).Greater(0.999)
}

func TestSimulatedEmbedderSeparatesTopics(t *testing.T) {
	e := adapter.NewSimulatedEmbedder(128)

	sleep, err := e.Embed(context.Background(), "trouble sleeping at night insomnia")
	gt.NoError(t, err)
	work, err := e.Embed(context.Background(), "deadline pressure from my manager")
	gt.NoError(t, err)

	gt.Number(t, cosine(sleep, work)).Less(0.9)
}

func TestSimulatedEmbedderEmptyText(t *testing.T) {
	e := adapter.NewSimulatedEmbedder(64)

	vec, err := e.Embed(context.Background(), "")
	gt.NoError(t, err)
	gt.A(t, vec).Length(64)
	for _, v := range vec {
		gt.Equal(t, v, 0)
	}
}

func TestFallbackEmbedderDegrades(t *testing.T) {
	gemini := &mockGemini{
		embeddingFunc: func(ctx context.Context, text string) (*genai.EmbedContentResponse, error) {
			return nil, errors.New("model unavailable")
		},
	}

	e := adapter.NewFallbackEmbedder(adapter.NewGeminiEmbedder(gemini))
	gt.False(t, e.Degraded())

	vec, err := e.Embed(context.Background(), "hello world")
	gt.NoError(t, err)
	gt.A(t, vec).Length(e.Dimension())
	gt.True(t, e.Degraded())
}

func TestFallbackEmbedderUsesPrimary(t *testing.T) {
	want := make([]float32, 768)
	want[0] = 1

	gemini := &mockGemini{
		embeddingFunc: func(ctx context.Context, text string) (*genai.EmbedContentResponse, error) {
			return &genai.EmbedContentResponse{
				Embeddings: []*genai.ContentEmbedding{{Values: want}},
			}, nil
		},
	}

	e := adapter.NewFallbackEmbedder(adapter.NewGeminiEmbedder(gemini))
	vec, err := e.Embed(context.Background(), "hello")
	gt.NoError(t, err)

	gt.A(t, vec).Length(768)
	gt.Equal(t, vec[0], 1)
	gt.False(t, e.Degraded())
}
