// Package server exposes a built report as JSON for the dashboard frontend.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"clinic-kpi-report/pkg/report"
)

// Refresher rebuilds the report from its source rows, typically the Postgres
// views. Optional: a server without one serves the report it was handed.
type Refresher func(ctx context.Context) (report.Report, error)

// Config holds server configuration.
type Config struct {
	Addr         string
	Log          zerolog.Logger
	Cache        *Cache
	Refresh      Refresher
	RefreshEvery time.Duration
}

// Server serves the report API.
type Server struct {
	router       *chi.Mux
	server       *http.Server
	log          zerolog.Logger
	cache        *Cache
	refresh      Refresher
	refreshEvery time.Duration
	cron         *cron.Cron
}

// New creates the report server.
func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "server").Logger(),
		cache:        cfg.Cache,
		refresh:      cfg.Refresh,
		refreshEvery: cfg.RefreshEvery,
	}
	if s.cache == nil {
		s.cache = NewCache()
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/report/summary", s.handleSummary)
		r.Get("/report/funnel", s.handleFunnel)
		r.Get("/report/aging", s.handleAging)
		r.Get("/report/clients", s.handleClients)
	})
}

// Start runs the server until the context is canceled. When a refresher and
// interval are configured, the report is rebuilt on that schedule.
func (s *Server) Start(ctx context.Context) error {
	if s.refresh != nil && s.refreshEvery > 0 {
		s.cron = cron.New()
		if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.refreshEvery), s.runRefresh); err != nil {
			return fmt.Errorf("schedule refresh: %w", err)
		}
		s.cron.Start()
		s.log.Info().Dur("every", s.refreshEvery).Msg("scheduled report refresh")
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.server.Addr).Msg("report server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops the cron schedule and drains the HTTP server.
func (s *Server) Shutdown() error {
	if s.cron != nil {
		s.cron.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rebuilt, err := s.refresh(ctx)
	if err != nil {
		// Keep serving the last good report; a failed refresh is logged, not fatal.
		s.log.Error().Err(err).Msg("report refresh failed")
		return
	}
	s.cache.Set(rebuilt)
	s.log.Info().Int("clients", rebuilt.Summary.TotalClients).Msg("report refreshed")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, updatedAt, ok := s.cache.Get()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"report_ready": ok,
		"updated_at":   updatedAt,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rpt, ok := s.currentReport(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rpt)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rpt, ok := s.currentReport(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rpt.Summary)
}

func (s *Server) handleFunnel(w http.ResponseWriter, r *http.Request) {
	rpt, ok := s.currentReport(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rpt.Funnel)
}

func (s *Server) handleAging(w http.ResponseWriter, r *http.Request) {
	rpt, ok := s.currentReport(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rpt.Aging)
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	rpt, ok := s.currentReport(w)
	if !ok {
		return
	}
	clients := rpt.Clients
	if raw := r.URL.Query().Get("min_priority"); raw != "" {
		minPriority, err := report.ParsePriority(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		clients = report.FilterByPriority(clients, minPriority)
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) currentReport(w http.ResponseWriter) (report.Report, bool) {
	rpt, _, ok := s.cache.Get()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "report not ready"})
		return report.Report{}, false
	}
	return rpt, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
