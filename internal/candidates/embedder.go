package candidates

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
)

// Embedder produces a vector for a piece of query text. The langchaingo
// embeddings implementation satisfies this directly; tests and offline
// runs use HashEmbedder.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// HashEmbedder is a deterministic local embedder: each word contributes a
// pseudo-random but word-stable direction. It has no semantic power beyond
// vocabulary overlap, which is enough for fixtures and degraded operation.
type HashEmbedder struct {
	Dim int
}

// EmbedQuery implements Embedder
func (h HashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	dim := h.Dim
	if dim <= 0 {
		dim = 100
	}

	embedding := make([]float32, dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		hasher := fnv.New32a()
		hasher.Write([]byte(word))
		rng := rand.New(rand.NewSource(int64(hasher.Sum32())))
		for i := range embedding {
			embedding[i] += rng.Float32()*2 - 1
		}
	}

	normalize(embedding)
	return embedding, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct float32
	var normA float32
	var normB float32

	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / float32(math.Sqrt(float64(normA)*float64(normB)))
}

func normalize(v []float32) {
	var norm float32
	for _, x := range v {
		norm += x * x
	}
	norm = float32(math.Sqrt(float64(norm)))

	if norm != 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}
