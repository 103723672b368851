package router

import "strings"

const (
	// DefaultCutoff is the word count at which questions go to the advanced model
	DefaultCutoff = 10

	DefaultCheapModel    = "openai/gpt-3.5-turbo"
	DefaultAdvancedModel = "openai/gpt-4"
)

// Config holds the routing heuristic parameters
type Config struct {
	// Cutoff: questions with fewer whitespace-separated words use CheapModel
	Cutoff        int
	CheapModel    string
	AdvancedModel string
}

// DefaultConfig returns the reference routing setup
func DefaultConfig() Config {
	return Config{
		Cutoff:        DefaultCutoff,
		CheapModel:    DefaultCheapModel,
		AdvancedModel: DefaultAdvancedModel,
	}
}

// Router picks a model for a question based on its length
type Router struct {
	cfg Config
}

// New creates a router. Empty model identifiers fall back to the defaults.
func New(cfg Config) *Router {
	if cfg.CheapModel == "" {
		cfg.CheapModel = DefaultCheapModel
	}
	if cfg.AdvancedModel == "" {
		cfg.AdvancedModel = DefaultAdvancedModel
	}
	return &Router{cfg: cfg}
}

// SelectModel returns the cheap model for short questions and the advanced
// model otherwise
func (r *Router) SelectModel(question string) string {
	if len(strings.Fields(question)) < r.cfg.Cutoff {
		return r.cfg.CheapModel
	}
	return r.cfg.AdvancedModel
}

// Config returns the router's effective configuration
func (r *Router) Config() Config {
	return r.cfg
}
