package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iishyfishyy/recall/internal/embeddings"
)

// Store is an append-only, in-memory collection of records searched by
// cosine similarity. Records keep their insertion order.
type Store struct {
	embedder  embeddings.Embedder
	dims      int
	threshold float64
	journal   Journal
	logger    *zap.Logger

	records []Record
	mu      sync.RWMutex
}

// Option configures a Store
type Option func(*Store)

// WithThreshold sets the minimum similarity for a match
func WithThreshold(threshold float64) Option {
	return func(s *Store) {
		s.threshold = threshold
	}
}

// WithJournal writes every appended record through to j
func WithJournal(j Journal) Option {
	return func(s *Store) {
		s.journal = j
	}
}

// WithLogger sets the logger used for store events
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty store whose records are embedded by embedder
func NewStore(embedder embeddings.Embedder, opts ...Option) *Store {
	s := &Store{
		embedder:  embedder,
		dims:      embedder.Dimensions(),
		threshold: DefaultThreshold,
		logger:    zap.NewNop(),
		records:   []Record{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embedder returns the embedder used for stored questions
func (s *Store) Embedder() embeddings.Embedder {
	return s.embedder
}

// Dimensions returns the vector size every record must have
func (s *Store) Dimensions() int {
	return s.dims
}

// Threshold returns the minimum similarity for a match
func (s *Store) Threshold() float64 {
	return s.threshold
}

// Append embeds question and stores a new record. When a journal is
// configured the record is only kept in memory after the journal accepts it.
func (s *Store) Append(ctx context.Context, question, answer, model string, createdAt time.Time) (Record, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return Record{}, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vector) != s.dims {
		return Record{}, fmt.Errorf("%w: embedder returned %d, store expects %d", ErrDimensionMismatch, len(vector), s.dims)
	}

	rec := Record{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		Model:     model,
		Embedding: vector,
		CreatedAt: createdAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.journal != nil {
		if err := s.journal.Append(ctx, rec); err != nil {
			return Record{}, fmt.Errorf("failed to journal record: %w", err)
		}
	}
	s.records = append(s.records, rec)

	s.logger.Debug("stored record",
		zap.String("id", rec.ID),
		zap.String("model", model),
		zap.Int("count", len(s.records)))

	return rec.clone(), nil
}

// FindBestMatch scans every record in insertion order and returns the most
// similar one. The running best only changes on a strictly higher score, so
// among equal scores the earliest record wins. ok is false when the store is
// empty or the best score is below the threshold.
func (s *Store) FindBestMatch(query []float32) (match Match, ok bool, err error) {
	if len(query) != s.dims {
		return Match{}, false, fmt.Errorf("%w: query has %d, store expects %d", ErrDimensionMismatch, len(query), s.dims)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	best := -1
	bestScore := 0.0
	for i := range s.records {
		score := CosineSimilarity(query, s.records[i].Embedding)
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 || bestScore < s.threshold {
		return Match{}, false, nil
	}

	return Match{Record: s.records[best].clone(), Score: bestScore}, true, nil
}

// Replay rebuilds the store from its journal. It must be called before any
// Append; records already in memory are an error.
func (s *Store) Replay(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}

	records, err := s.journal.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load journal: %w", err)
	}

	for _, rec := range records {
		if len(rec.Embedding) != s.dims {
			return 0, fmt.Errorf("%w: record %s has %d, store expects %d", ErrDimensionMismatch, rec.ID, len(rec.Embedding), s.dims)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) > 0 {
		return 0, fmt.Errorf("cannot replay into a non-empty store (%d records)", len(s.records))
	}
	s.records = append(s.records, records...)

	s.logger.Info("replayed journal", zap.Int("records", len(records)))
	return len(records), nil
}

// Records returns a copy of every record, oldest first
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.clone()
	}
	return out
}

// Count returns the number of stored records
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|), accumulated in float64.
// A zero-norm vector yields 0. Vectors of different length also yield 0;
// callers validate dimensions before scoring.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
