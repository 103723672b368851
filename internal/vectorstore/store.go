package vectorstore

import (
	"context"
	"errors"
	"time"
)

// DefaultThreshold is the minimum cosine similarity that counts as a hit
const DefaultThreshold = 0.8

var (
	// ErrDimensionMismatch is returned when a vector's length differs from
	// the store's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrJournalMismatch is returned when a journal was written by a
	// different embedder or dimension than the one opening it.
	ErrJournalMismatch = errors.New("journal does not match embedder")
)

// Record is a single answered question. Records are immutable once stored.
type Record struct {
	ID        string
	Question  string
	Answer    string
	Model     string
	Embedding []float32
	CreatedAt time.Time
}

// Match is the best record found for a query and its cosine similarity
type Match struct {
	Record Record
	Score  float64
}

// Journal persists records in insertion order so a store can be rebuilt
type Journal interface {
	// Append durably records rec after any previously appended record
	Append(ctx context.Context, rec Record) error

	// Load returns every record in insertion order
	Load(ctx context.Context) ([]Record, error)
}

func (r Record) clone() Record {
	if r.Embedding != nil {
		emb := make([]float32, len(r.Embedding))
		copy(emb, r.Embedding)
		r.Embedding = emb
	}
	return r
}
