// Package httpserver provides the HTTP REST API of the research metadata service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/helixir/research-metadata-api/internal/aggregator"
	"github.com/helixir/research-metadata-api/internal/domain"
	"github.com/helixir/research-metadata-api/internal/observability"
)

// PaperService is the pipeline layer behind the handlers.
type PaperService interface {
	Search(ctx context.Context, query string, years domain.YearRange, limit int) ([]domain.CanonicalPaper, error)
	Trends(ctx context.Context, query string, years domain.YearRange, limit, top int) (*aggregator.TrendsReport, error)
	Lookup(ctx context.Context, doi string) (*aggregator.LookupResult, error)
}

// Server is the HTTP REST API server.
type Server struct {
	router          chi.Router
	httpServer      *http.Server
	service         PaperService
	params          *paramValidator
	metrics         *observability.Metrics
	logger          zerolog.Logger
	shutdownTimeout time.Duration
}

// Config holds HTTP server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// ShutdownTimeout bounds Shutdown on top of the caller's context.
	// Zero leaves the caller's deadline alone.
	ShutdownTimeout time.Duration
	Limits          Limits
}

// NewServer creates a new HTTP server. metrics may be nil.
func NewServer(cfg Config, service PaperService, metrics *observability.Metrics, logger zerolog.Logger) *Server {
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}

	s := &Server{
		service: service,
		params:  newParamValidator(cfg.Limits),
		metrics: metrics,
		logger:  observability.WithComponent(logger, "http-server"),

		shutdownTimeout: cfg.ShutdownTimeout,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlationIDMiddleware)
	r.Use(accessLogMiddleware(s.logger))
	if s.metrics != nil {
		r.Use(metricsMiddleware(s.metrics))
	}
	r.Use(recoverMiddleware)

	r.NotFound(s.notFoundHandler)
	r.MethodNotAllowed(s.methodNotAllowedHandler)

	r.Get("/health", s.healthHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/papers/search", s.searchPapers)
		r.Get("/papers/lookup", s.lookupPaper)
		r.Get("/trends", s.paperTrends)
	})

	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server, waiting at most the
// configured shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	s.logger.Info().Dur("timeout", s.shutdownTimeout).Msg("HTTP server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response with the given status code. The headers
// are already sent when encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Debug().
			Err(err).
			Int("status", statusCode).
			Str("path", r.URL.Path).
			Msg("encoding response failed")
	}
}
