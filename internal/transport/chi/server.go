package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arcline/ideascope/internal/domain"
	analysisuc "github.com/arcline/ideascope/internal/usecase/analysis"
	healthuc "github.com/arcline/ideascope/internal/usecase/health"
	retrievaluc "github.com/arcline/ideascope/internal/usecase/retrieval"
	"github.com/arcline/ideascope/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the analysis engine over HTTP.
type Server struct {
	analysis      *analysisuc.Service
	retrieval     *retrievaluc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	analysis *analysisuc.Service,
	retrieval *retrievaluc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		analysis:  analysis,
		retrieval: retrieval,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoProvidersAvailable, http.StatusServiceUnavailable, codeProvidersUnavailable),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, codeUpstreamMalformed),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired, codeQuotaExceeded),
	}
	return s
}

// Mount registers the API routes on an already-middlewared router.
func (s *Server) Mount(r gochi.Router) {
	r.Get("/healthz", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r gochi.Router) {
		r.Post("/analyze", s.Analyze)
		r.Post("/similar", s.Similar)
		r.Get("/stats", s.GetStats)
	})
}

// Analyze handles POST /v1/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var idea domain.IdeaInput
	if err := json.NewDecoder(r.Body).Decode(&idea); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := idea.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	result, err := s.analysis.Analyze(r.Context(), idea)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Similar handles POST /v1/similar.
func (s *Server) Similar(w http.ResponseWriter, r *http.Request) {
	var idea domain.IdeaInput
	if err := json.NewDecoder(r.Body).Decode(&idea); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := idea.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	retrieved, err := s.retrieval.FindSimilar(r.Context(), idea)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, similarToDTO(retrieved))
}

// GetStats handles GET /v1/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsToDTO(s.retrieval.Stats()))
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Providers: report.Providers,
		StoreSize: report.StoreSize,
		Version:   version.Version,
		Time:      time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNoProvidersAvailable,
		domain.ErrMalformedResponse,
		domain.ErrEmbeddingQuotaExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		// Client went away; nothing useful to write.
		return
	}

	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
