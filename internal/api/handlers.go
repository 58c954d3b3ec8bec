// Package api exposes the scoring pipeline over HTTP
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gophishfree/risk-engine/internal/domain"
	"github.com/gophishfree/risk-engine/pkg/logger"
)

const (
	maxEmailBytes      = 10 << 20
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// ScanService is the application surface the handlers depend on
type ScanService interface {
	ScanRaw(ctx context.Context, raw []byte) (*domain.RiskAssessment, error)
	ScoreSignals(ctx context.Context, sig domain.Signals) (*domain.RiskAssessment, error)
	RecentScans(ctx context.Context, limit int) ([]domain.RiskAssessment, error)
	HighRiskScans(ctx context.Context, limit int) ([]domain.RiskAssessment, error)
	HasModel() bool
}

// Handlers serves the scan endpoints
type Handlers struct {
	service ScanService
	metrics *Metrics
	log     *logger.Logger
}

func NewHandlers(service ScanService, metrics *Metrics, log *logger.Logger) *Handlers {
	return &Handlers{
		service: service,
		metrics: metrics,
		log:     log.WithComponent("api"),
	}
}

// Scan accepts one raw RFC 5322 message in the request body and returns its
// risk assessment
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEmailBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "unreadable request body")
		return
	}
	if len(raw) == 0 {
		h.writeError(w, http.StatusBadRequest, "empty request body")
		return
	}

	start := time.Now()
	assessment, err := h.service.ScanRaw(r.Context(), raw)
	if err != nil {
		h.metrics.ScanFailures.Inc()
		h.log.Warn().Err(err).Msg("scan failed")
		h.writeError(w, http.StatusUnprocessableEntity, "email could not be parsed")
		return
	}
	h.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	h.metrics.ScansTotal.WithLabelValues(string(assessment.Level)).Inc()

	h.writeJSON(w, http.StatusOK, assessment)
}

// Score accepts a pre-extracted signal set and returns its risk assessment.
// Intended for callers that run their own extraction pipeline.
func (h *Handlers) Score(w http.ResponseWriter, r *http.Request) {
	var sig domain.Signals
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxEmailBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&sig); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid signal payload")
		return
	}

	assessment, err := h.service.ScoreSignals(r.Context(), sig)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "scoring failed")
		return
	}
	h.metrics.ScansTotal.WithLabelValues(string(assessment.Level)).Inc()

	h.writeJSON(w, http.StatusOK, assessment)
}

// RecentScans lists the latest stored assessments
func (h *Handlers) RecentScans(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, defaultRecentLimit)

	var (
		assessments []domain.RiskAssessment
		err         error
	)
	if r.URL.Query().Get("level") == "high" {
		assessments, err = h.service.HighRiskScans(r.Context(), limit)
	} else {
		assessments, err = h.service.RecentScans(r.Context(), limit)
	}
	if err != nil {
		h.log.Warn().Err(err).Msg("history query failed")
		h.writeError(w, http.StatusServiceUnavailable, "scan history unavailable")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"count": len(assessments),
		"scans": assessments,
	})
}

// Healthz reports liveness plus whether the model artifact is loaded.
// A missing model is degraded, not dead: scans still run at neutral.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"model_loaded": h.service.HasModel(),
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Warn().Err(err).Msg("failed to write response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return fallback
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}
