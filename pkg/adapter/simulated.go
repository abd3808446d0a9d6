package adapter

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// SimulatedEmbedder produces deterministic vectors without a model: each
// token is hashed into a handful of dimensions of the output vector and the
// result is L2-normalized. The vectors carry only crude lexical signal but
// identical texts always map to identical vectors, which keeps similarity
// search functional while the real provider is unavailable.
type SimulatedEmbedder struct {
	dimension int
}

func NewSimulatedEmbedder(dimension int) *SimulatedEmbedder {
	return &SimulatedEmbedder{dimension: dimension}
}

func (e *SimulatedEmbedder) Dimension() int {
	return e.dimension
}

func (e *SimulatedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)

	for _, token := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		seed := h.Sum64()

		// Spread each token across a few pseudo-random dimensions with
		// alternating sign so that distinct vocabularies stay separable.
		for i := 0; i < 4; i++ {
			idx := int((seed >> (i * 16)) % uint64(e.dimension))
			sign := float32(1)
			if (seed>>(i*16+1))&1 == 1 {
				sign = -1
			}
			vec[idx] += sign
		}
	}

	normalize(vec)
	return vec, nil
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
