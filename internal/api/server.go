// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/adiptan/trading-journal/internal/api/handler/api"
	"github.com/adiptan/trading-journal/internal/api/middleware"
	"github.com/adiptan/trading-journal/internal/api/response"
	"github.com/adiptan/trading-journal/internal/app"
	"github.com/adiptan/trading-journal/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the journal's HTTP API server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	handler    http.Handler
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string // empty disables /metrics
}

// Dependencies are the services the routes call.
type Dependencies struct {
	Journal *app.App
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Journal == nil {
		return nil, fmt.Errorf("api: journal is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = deps.Journal.Metrics()
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	s.handler = metrics.LoggingMiddleware(logger)(metrics.HTTPMiddleware(deps.Metrics)(mux))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	auth := middleware.APIKeyAuth(cfg.APIKey)
	trades := apihandler.NewTradesHandler(deps.Journal)
	reports := apihandler.NewReportHandler(deps.Journal)

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.Handle("GET /api/trades", auth(http.HandlerFunc(trades.List)))
	s.mux.Handle("POST /api/trades", auth(http.HandlerFunc(trades.Create)))
	s.mux.Handle("DELETE /api/trades/{id}", auth(http.HandlerFunc(trades.Delete)))
	s.mux.Handle("GET /api/report/weekly", auth(http.HandlerFunc(reports.Weekly)))
	s.mux.Handle("GET /api/stats/today", auth(http.HandlerFunc(reports.Today)))

	if cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
