// Package server exposes the orchestrator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iishyfishyy/recall/internal/semcache"
)

const shutdownTimeout = 5 * time.Second

// Server serves the orchestrator over HTTP with gin
type Server struct {
	orch   *semcache.Orchestrator
	logger *zap.Logger
	engine *gin.Engine
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string  `json:"answer"`
	Model  string  `json:"model"`
	Score  float64 `json:"score"`
	Hit    bool    `json:"hit"`
}

type recordResponse struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

type statsResponse struct {
	Hits     int `json:"hits"`
	Misses   int `json:"misses"`
	Failures int `json:"failures"`
	Records  int `json:"records"`
}

// New creates a server with all routes registered on a fresh gin engine
func New(orch *semcache.Orchestrator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{orch: orch, logger: logger}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.accessLog())

	engine.GET("/healthz", s.health)
	api := engine.Group("/v1")
	api.POST("/ask", s.ask)
	api.GET("/records", s.records)
	api.GET("/stats", s.stats)

	s.engine = engine
	return s
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	res, err := s.orch.Ask(c.Request.Context(), req.Question)
	if err != nil {
		if errors.Is(err, semcache.ErrModelCall) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("ask failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, askResponse{
		Answer: res.Answer,
		Model:  res.Model,
		Score:  res.Score,
		Hit:    res.Hit,
	})
}

func (s *Server) records(c *gin.Context) {
	recs := s.orch.Store().Records()
	out := make([]recordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, recordResponse{
			ID:        r.ID,
			Question:  r.Question,
			Answer:    r.Answer,
			Model:     r.Model,
			CreatedAt: r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"records": out})
}

func (s *Server) stats(c *gin.Context) {
	st := s.orch.Stats()
	c.JSON(http.StatusOK, statsResponse{
		Hits:     st.Hits,
		Misses:   st.Misses,
		Failures: st.Failures,
		Records:  s.orch.Store().Count(),
	})
}
