package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/diccas/internal/config"
	"github.com/dgallion1/diccas/internal/metrics"
	"github.com/dgallion1/diccas/internal/pipeline"
	"github.com/dgallion1/diccas/internal/tagger"
)

// Server is the HTTP API of the conversion service.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	taggerStats  *tagger.LatencyStats
	metrics      *metrics.Metrics
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. taggerStats and m may be nil.
func NewServer(orch *pipeline.Orchestrator, taggerStats *tagger.LatencyStats, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		taggerStats:  taggerStats,
		metrics:      m,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/convert", s.handleConvert)
		r.Get("/api/convert/{jobID}", s.handleConvertStatus)
		r.Get("/api/convert/{jobID}/files/{kind}", s.handleDownload)
		r.Get("/api/convert/{jobID}/report", s.handleReport)
		r.Get("/api/stats/tagger", s.handleTaggerStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
