package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
)

// maxBodyBytes bounds POST /v1/assessments request bodies.
const maxBodyBytes = 1 << 20

// Server exposes health, readiness, metrics, and on-demand assessment endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// AssessmentRequest is a single scenario submitted over HTTP. A nil Seed
// perturbs the progression with entropy; an explicit seed makes it reproducible.
type AssessmentRequest struct {
	hydrology.SimulationInput
	Seed *uint64 `json:"seed,omitempty"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /v1/assessments routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/v1/assessments", s.handleAssess)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req AssessmentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "decode request: " + err.Error()})
		return
	}

	var noise hydrology.NoiseSource
	if req.Seed != nil {
		noise = hydrology.NewUniformNoise(*req.Seed)
	} else {
		noise = hydrology.NewEntropyNoise()
	}

	assessment, err := hydrology.Assess(req.SimulationInput, noise)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, hydrology.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	s.logger.Debug("assessment served",
		"request_id", middleware.GetReqID(r.Context()),
		"rainfall_mm", assessment.RainfallMM,
		"risk", assessment.RiskLabel,
	)
	sharedobs.WriteJSON(w, http.StatusOK, assessment)
}
