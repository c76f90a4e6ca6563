// Package server provides the HTTP REST API for the job application assistant.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gdalmoro/jobpilot/internal/config"
	"github.com/gdalmoro/jobpilot/internal/indexer"
	"github.com/gdalmoro/jobpilot/internal/letter"
	"github.com/gdalmoro/jobpilot/internal/llm"
	"github.com/gdalmoro/jobpilot/internal/logger"
	"github.com/gdalmoro/jobpilot/internal/memory"
	"github.com/gdalmoro/jobpilot/internal/pipeline"
	"github.com/gdalmoro/jobpilot/internal/posting"
	"github.com/gdalmoro/jobpilot/internal/ranker"
	"github.com/gdalmoro/jobpilot/internal/server/ratelimit"
	"github.com/gdalmoro/jobpilot/internal/tracker"
)

// jobProcessor is the pipeline surface the handlers depend on.
type jobProcessor interface {
	Process(ctx context.Context, post *posting.Posting) (*pipeline.Report, error)
	ProcessURL(ctx context.Context, jobURL string) (*pipeline.Report, error)
}

// resumeIndexer is the indexing surface the handlers depend on.
type resumeIndexer interface {
	Index(path string) (*indexer.Result, error)
}

// Server represents the HTTP server and its wired components.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	store    *memory.Store
	profile  *memory.Collection
	client   llm.Client
	indexer  resumeIndexer
	pipeline jobProcessor

	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	httpServer  *http.Server
}

// New creates a server with all components wired from configuration.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	log = logger.Or(log)

	store, err := memory.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory store: %w", err)
	}

	profile, err := store.Collection(memory.CollectionProfile)
	if err != nil {
		return nil, err
	}
	chunks, err := store.Collection(memory.CollectionResumeChunks)
	if err != nil {
		return nil, err
	}

	client, err := llm.New(ctx, llm.OptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	rk := ranker.New(chunks, client, log)
	wr := letter.New(profile, chunks, client, cfg.OutDir, log)
	tr := tracker.New(cfg.NotionAPIKey, cfg.NotionDatabaseID, log)
	resolver := posting.NewResolver(cfg, log)

	s := &Server{
		cfg:      cfg,
		log:      log,
		store:    store,
		profile:  profile,
		client:   client,
		indexer:  indexer.New(profile, chunks, log),
		pipeline: pipeline.New(rk, wr, tr, resolver, cfg.FitThreshold, log),

		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		validate:    validator.New(),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Job processing runs a scrape and several model calls.
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /memory/brand-voice", s.handleSetBrandVoice)
	mux.HandleFunc("GET /memory/brand-voice", s.handleGetBrandVoice)
	mux.HandleFunc("POST /memory/resume/index", s.handleIndexResume)

	mux.HandleFunc("POST /process-job", s.handleProcessJob)
	mux.HandleFunc("POST /process-job-from-url", s.handleProcessJobFromURL)
	return mux
}

// Start begins listening and blocks until an interrupt, then shuts down
// gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if err := s.client.Close(); err != nil {
		s.log.Warn("failed to close generation client", zap.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.log.Warn("failed to close memory store", zap.Error(err))
	}

	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit applies per-client token bucket limits.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)

		if !allowed {
			s.log.Warn("rate limit exceeded",
				zap.String("client", clientID),
				zap.String("path", r.URL.Path))
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID identifies the client by IP address.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
