package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/hive/internal/hive"
	"github.com/MikeSquared-Agency/hive/internal/prospect"
	"github.com/MikeSquared-Agency/hive/internal/report"
	"github.com/MikeSquared-Agency/hive/internal/script"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Scripts interface {
	Generate(ctx context.Context, prospectID uuid.UUID, t script.Type) (script.Script, error)
	Get(ctx context.Context, id uuid.UUID) (script.Script, error)
	SubmitFeedback(ctx context.Context, scriptID uuid.UUID, raw string) (script.Script, error)
}

type Learnings interface {
	List(ctx context.Context, f hive.Filter) ([]hive.Learning, error)
	Leaderboard(ctx context.Context) ([]hive.Learning, error)
}

type Prospects interface {
	UpdateProspectStatus(ctx context.Context, id uuid.UUID, status prospect.Status) error
}

type Reports interface {
	Trigger(ctx context.Context, trigger string) (*report.Report, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the HTTP surface. Reports and DB may be nil.
type Deps struct {
	Scripts   Scripts
	Learnings Learnings
	Prospects Prospects
	Reports   Reports
	DB        Pinger
}

type Server struct {
	router *chi.Mux
	port   int
	deps   Deps
	logger *slog.Logger
	http   *http.Server
}

func NewServer(port int, deps Deps, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		deps:   deps,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/hive/status", s.status)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/scripts", s.generateScript)
		r.Get("/scripts/{id}", s.getScript)
		r.Post("/scripts/{id}/feedback", s.submitFeedback)
		r.Patch("/prospects/{id}/status", s.updateProspectStatus)
		r.Get("/learnings", s.listLearnings)
		r.Get("/leaderboard", s.leaderboard)
		r.Post("/reports", s.triggerReport)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	db := "none"
	if s.deps.DB != nil {
		db = "ok"
		if err := s.deps.DB.Ping(r.Context()); err != nil {
			db = "unreachable"
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":    "hive",
		"status":   "active",
		"database": db,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
