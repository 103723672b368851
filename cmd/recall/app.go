package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iishyfishyy/recall/internal/config"
	"github.com/iishyfishyy/recall/internal/embeddings"
	"github.com/iishyfishyy/recall/internal/history"
	"github.com/iishyfishyy/recall/internal/llm"
	"github.com/iishyfishyy/recall/internal/logging"
	"github.com/iishyfishyy/recall/internal/router"
	"github.com/iishyfishyy/recall/internal/semcache"
	"github.com/iishyfishyy/recall/internal/vectorstore"
)

// app holds the wired components for one command run
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	orch    *semcache.Orchestrator
	journal *vectorstore.SQLiteJournal

	hist      *history.History
	histPath  string
	histDirty bool
}

func buildApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, debug)
	if err != nil {
		return nil, err
	}
	configPath, _ := config.GetConfigPath()
	logger.Debug("config loaded",
		zap.String("path", configPath),
		zap.Float64("threshold", cfg.Cache.Threshold),
		zap.Int("cutoff", cfg.Router.Cutoff),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("persist", cfg.Storage.Persist))

	embedder, err := embeddings.NewEmbedder(embeddings.Config{
		Provider:   cfg.Embedding.Provider,
		Dimensions: cfg.Embedding.Dimensions,
		CacheSize:  cfg.Embedding.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	opts := []vectorstore.Option{
		vectorstore.WithThreshold(cfg.Cache.Threshold),
		vectorstore.WithLogger(logger),
	}
	if cfg.Storage.Persist {
		path, err := cfg.RecordsPath()
		if err != nil {
			return nil, err
		}
		journal, err := vectorstore.OpenSQLiteJournal(path, embedder.Name(), embedder.Dimensions())
		if err != nil {
			return nil, fmt.Errorf("failed to open records journal: %w", err)
		}
		a.journal = journal
		opts = append(opts, vectorstore.WithJournal(journal))
	}

	store := vectorstore.NewStore(embedder, opts...)
	if a.journal != nil {
		n, err := store.Replay(cmd.Context())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to replay records: %w", err)
		}
		logger.Debug("records replayed", zap.Int("count", n), zap.String("path", a.journal.Path()))
	}

	r := router.New(router.Config{
		Cutoff:        cfg.Router.Cutoff,
		CheapModel:    cfg.Router.CheapModel,
		AdvancedModel: cfg.Router.AdvancedModel,
	})

	a.orch = semcache.New(store, r, llm.NewSimulatedCaller(), logger)
	return a, nil
}

// applyFlags copies explicitly set global flags over the file values
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Cache.Threshold = threshold
	}
	if flags.Changed("cutoff") {
		cfg.Router.Cutoff = cutoff
	}
	if flags.Changed("dimensions") {
		cfg.Embedding.Dimensions = dimensions
	}
	if flags.Changed("persist") {
		cfg.Storage.Persist = persist
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// recordHistory adds an ask outcome to the history, which is loaded on
// first use and written once on Close. Failures are logged, never returned.
func (a *app) recordHistory(question string, res semcache.Result, askErr error) {
	if a.hist == nil {
		path, err := history.GetHistoryPath()
		if err != nil {
			a.logger.Warn("failed to resolve history path", zap.Error(err))
			return
		}
		hist, err := history.Load(path)
		if err != nil {
			a.logger.Warn("failed to load history", zap.Error(err))
			return
		}
		a.hist = hist
		a.histPath = path
	}
	a.hist.AddEntry(history.NewEntry(question, res, askErr))
	a.histDirty = true
}

func (a *app) Close() {
	if a.histDirty {
		if err := a.hist.Save(a.histPath); err != nil {
			a.logger.Warn("failed to save history", zap.Error(err))
		}
		a.histDirty = false
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn("failed to close records journal", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
