// Package semcache answers questions from a semantic cache of earlier
// answers, falling back to a routed model call on a miss.
package semcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iishyfishyy/recall/internal/llm"
	"github.com/iishyfishyy/recall/internal/router"
	"github.com/iishyfishyy/recall/internal/vectorstore"
)

// ErrModelCall is returned when the model caller fails or answers with
// nothing. The store is left unchanged.
var ErrModelCall = errors.New("model call failed")

// Result describes how a question was answered
type Result struct {
	Question string
	Answer   string
	Model    string
	// Hit is true when the answer came from the cache
	Hit bool
	// Score is the similarity of the cached match; zero on a miss
	Score  float64
	Record vectorstore.Record
}

// Stats counts outcomes since the orchestrator was created
type Stats struct {
	Hits     int
	Misses   int
	Failures int
}

// Orchestrator runs each question through lookup, then routing, the model
// call and write-back on a miss
type Orchestrator struct {
	store  *vectorstore.Store
	router *router.Router
	caller llm.Caller
	logger *zap.Logger
	now    func() time.Time

	// mu serializes Ask so lookup and write-back see a stable store
	mu    sync.Mutex
	stats Stats
}

// New creates an orchestrator over store
func New(store *vectorstore.Store, r *router.Router, caller llm.Caller, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:  store,
		router: r,
		caller: caller,
		logger: logger,
		now:    time.Now,
	}
}

// Ask answers question from the cache when a stored question is similar
// enough, otherwise from the routed model, storing the new answer.
func (o *Orchestrator) Ask(ctx context.Context, question string) (Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	query, err := o.store.Embedder().Embed(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("failed to embed question: %w", err)
	}

	match, ok, err := o.store.FindBestMatch(query)
	if err != nil {
		return Result{}, fmt.Errorf("failed to search store: %w", err)
	}

	if ok {
		o.stats.Hits++
		o.logger.Debug("cache hit",
			zap.String("record", match.Record.ID),
			zap.Float64("score", match.Score))
		return Result{
			Question: question,
			Answer:   match.Record.Answer,
			Model:    match.Record.Model,
			Hit:      true,
			Score:    match.Score,
			Record:   match.Record,
		}, nil
	}

	model := o.router.SelectModel(question)
	o.logger.Debug("cache miss, routing", zap.String("model", model))

	answer, err := o.caller.Call(ctx, model, question)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = errors.New("empty answer")
	}
	if err != nil {
		o.stats.Failures++
		o.logger.Warn("model call failed", zap.String("model", model), zap.Error(err))
		return Result{}, fmt.Errorf("%w: %s: %w", ErrModelCall, model, err)
	}

	rec, err := o.store.Append(ctx, question, answer, model, o.now())
	if err != nil {
		o.stats.Failures++
		o.logger.Warn("failed to store answer",
			zap.String("model", model),
			zap.String("question", question),
			zap.String("answer", answer),
			zap.Error(err))
		return Result{}, fmt.Errorf("failed to store answer: %w", err)
	}
	o.stats.Misses++

	return Result{
		Question: question,
		Answer:   answer,
		Model:    model,
		Record:   rec,
	}, nil
}

// Stats returns a snapshot of the outcome counters
func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// Store returns the underlying similarity store
func (o *Orchestrator) Store() *vectorstore.Store {
	return o.store
}
