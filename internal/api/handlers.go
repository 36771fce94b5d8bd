package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wanwanbooboo/boatrace/internal/models"
	"github.com/wanwanbooboo/boatrace/internal/service"
)

var requestValidator = validator.New()

// handlePredict prices one race snapshot and submits the selected
// candidates to the order ledger.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.applyDefaults()

	if err := requestValidator.Struct(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	asOf, err := time.Parse(time.RFC3339, req.SnapshotTS)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "snapshot_ts must be RFC3339")
		return
	}

	resp, err := s.pricing.PriceAndSubmit(r.Context(), service.PricingRequest{
		RaceID:  req.RaceID,
		BetType: req.BetType,
		AsOf:    asOf,
		TopK:    req.TopK,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleHealth reports process liveness and the configured execution mode.
// The store connection is probed so orchestrators see DB outages here.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok := s.db.HealthCheck(r.Context()) == nil
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, HealthResponse{OK: ok, Mode: s.cfg.Engine.OrderMode})
}

// handleReady reports store readiness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "database not ready")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"msg": "ev-engine up"})
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrDataQuality):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrStoreFault):
		// Retryable: resubmission is idempotent by construction.
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.WithError(err).Error("Unexpected pricing failure")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}
