package embeddings

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/rand/v2"
)

// ProviderHash selects the deterministic hash-seeded embedder
const ProviderHash = "hash"

// HashEmbedder stands in for a real embedding model. The SHA-256 digest of
// the text seeds a ChaCha8 generator which draws the vector components, so
// the same text always maps to the same vector across calls and runs.
// Related texts are not placed near each other.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash embedder producing vectors of the given size
func NewHashEmbedder(dims int) (*HashEmbedder, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", dims)
	}
	return &HashEmbedder{dims: dims}, nil
}

// Embed generates an embedding for a single text. It never fails.
func (h *HashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return h.Vector(text), nil
}

// Vector returns the embedding for text with components in [0,1)
func (h *HashEmbedder) Vector(text string) []float32 {
	seed := sha256.Sum256([]byte(text))
	rng := rand.New(rand.NewChaCha8(seed))

	v := make([]float32, h.dims)
	for i := range v {
		v[i] = rng.Float32()
	}
	return v
}

// Dimensions returns the embedding dimension size
func (h *HashEmbedder) Dimensions() int {
	return h.dims
}

// Name returns the embedder identifier
func (h *HashEmbedder) Name() string {
	return "hash/sha256-chacha8"
}
