package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"call-transcriber/internal/domain"
	"call-transcriber/internal/domain/ports/repository"
	"call-transcriber/internal/infra/logging"
)

// Server exposes health, metrics and run status while a batch is in flight.
type Server struct {
	runs   repository.PipelineRunRepository
	apiKey string
	log    *zerolog.Logger
}

func NewServer(runs repository.PipelineRunRepository, apiKey string, log *zerolog.Logger) *Server {
	return &Server{runs: runs, apiKey: apiKey, log: log}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/api/v1/runs/latest", s.latestRun)
	})
	return r
}

// traceMiddleware tags each request with a trace_id and logs it.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

// authMiddleware provides simple Bearer token authentication for the
// status API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == token || token != s.apiKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type runResponse struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Discovered int       `json:"discovered"`
	Processed  int       `json:"processed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
}

func (s *Server) latestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.FindLatest(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "no runs recorded", http.StatusNotFound)
			return
		}
		s.log.Error().Err(err).Msg("latest run lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runResponse{
		ID:         run.ID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Discovered: run.Discovered,
		Processed:  run.Processed,
		Failed:     run.Failed,
		Skipped:    run.Skipped,
	})
}
