package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEmbedder keeps recently computed vectors in an LRU so repeated
// questions skip the underlying embedder.
type CachedEmbedder struct {
	next  Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps e with an LRU of the given size. A non-positive
// size returns e unchanged.
func NewCachedEmbedder(e Embedder, size int) (Embedder, error) {
	if e == nil || size <= 0 {
		return e, nil
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &CachedEmbedder{next: e, cache: cache}, nil
}

// Embed returns the cached vector for text, computing it on a miss
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if cached, ok := c.cache.Get(key); ok {
		return cloneVector(cached), nil
	}

	v, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cloneVector(v))
	return v, nil
}

// Dimensions returns the wrapped embedder's dimension size
func (c *CachedEmbedder) Dimensions() int {
	return c.next.Dimensions()
}

// Name returns the wrapped embedder's name
func (c *CachedEmbedder) Name() string {
	return c.next.Name()
}

// Len returns the number of cached vectors
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
