package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"clusterperm/app"
	"clusterperm/internal"
	"clusterperm/internal/config"
	"clusterperm/ports"
)

// Server exposes permutation cluster testing over HTTP. Compute-heavy run
// requests are capped by a weighted semaphore so a burst of clients cannot
// oversubscribe the CPU.
type Server struct {
	router  *chi.Mux
	service *app.ClusterService
	repo    ports.RunRepository
	cfg     *config.Config
	runSem  *semaphore.Weighted
	log     *internal.Logger
	http    *http.Server
}

// NewServer wires the router, service and run limiter
func NewServer(cfg *config.Config, service *app.ClusterService, repo ports.RunRepository) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		repo:    repo,
		cfg:     cfg,
		runSem:  semaphore.NewWeighted(int64(cfg.Server.MaxConcurrentRuns)),
		log:     internal.DefaultLogger.Named("api"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(10 * time.Minute))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api/runs", func(r chi.Router) {
		r.Post("/", s.handleCreateRun)
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
		r.Get("/{id}/report", s.handleRunReport)
		r.Delete("/{id}", s.handleDeleteRun)
	})
}

// Start blocks serving HTTP until the server is shut down
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:    ":" + s.cfg.Server.Port,
		Handler: s.router,
	}
	s.log.Info("listening on :%s (max %d concurrent runs)",
		s.cfg.Server.Port, s.cfg.Server.MaxConcurrentRuns)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
