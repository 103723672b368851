package embeddings

import (
	"context"
	"fmt"
)

// DefaultDimensions is the vector size used when none is configured
const DefaultDimensions = 64

// Embedder generates vector embeddings for text
type Embedder interface {
	// Embed generates an embedding vector for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the size of the embedding vectors
	Dimensions() int

	// Name returns the name/model of this embedder
	Name() string
}

// Config holds configuration for creating an embedder
type Config struct {
	Provider   string
	Dimensions int

	// CacheSize enables an LRU of computed vectors when positive
	CacheSize int
}

// NewEmbedder creates an embedder based on the config
func NewEmbedder(cfg Config) (Embedder, error) {
	dims := cfg.Dimensions
	if dims == 0 {
		dims = DefaultDimensions
	}

	var e Embedder
	switch cfg.Provider {
	case "", ProviderHash:
		h, err := NewHashEmbedder(dims)
		if err != nil {
			return nil, err
		}
		e = h
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	return NewCachedEmbedder(e, cfg.CacheSize)
}
