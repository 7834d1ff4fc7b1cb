package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/mfmprime/internal/correction"
	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/internal/primality"
	"github.com/agbru/mfmprime/internal/sequence"
	"github.com/agbru/mfmprime/internal/service"
	"github.com/agbru/mfmprime/pkg/models"
)

// handleHealth responds to health check requests.
// It returns a 200 OK status with a JSON payload indicating the service is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleInfo lists the names a /sweep request may select and the server
// defaults.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"policies":    correction.Policies(),
		"bases":       correction.Bases(),
		"engines":     correction.Engines(),
		"prime_tests": primality.List(),
		"default_n":   s.cfg.NMax,
		"max_n":       s.securityConfig.MaxNValue,
		"basis":       s.cfg.Basis,
		"engine":      s.cfg.Engine,
	}
	if cached, ok := s.service.(interface{ CacheStats() sequence.CacheStats }); ok {
		stats := cached.CacheStats()
		response["base_cache"] = map[string]any{
			"hits":    stats.Hits,
			"misses":  stats.Misses,
			"entries": stats.Entries,
		}
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// handleSweep runs one sweep pass and returns its record as JSON.
//
// Query parameters: k (required), n, policy and seed (optional, falling back
// to the server configuration).
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	req, err := parseSweepParams(r)
	if err != nil {
		var parseErr SweepParseError
		if errors.As(err, &parseErr) {
			s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		} else {
			s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout())
	defer cancel()

	start := time.Now()
	rec, err := s.service.Sweep(ctx, req)
	duration := time.Since(start)

	if err != nil {
		s.writeErrorResponse(w, statusForError(err), s.messageForError(err))
		return
	}

	s.metrics.RecordSweep(rec)
	s.writeJSONResponse(w, http.StatusOK, s.buildSweepResponse(req, rec, duration))
}

// parseSweepParams extracts and validates the sweep parameters from the request.
//
// Returns:
//   - service.SweepRequest: The parsed request; omitted fields are zero.
//   - error: A SweepParseError if validation fails, nil otherwise.
func parseSweepParams(r *http.Request) (service.SweepRequest, error) {
	q := r.URL.Query()
	var req service.SweepRequest

	kStr := q.Get("k")
	if kStr == "" {
		return req, SweepParseError{Message: "Missing 'k' parameter", StatusCode: http.StatusBadRequest}
	}
	k, err := strconv.ParseUint(kStr, 10, 31)
	if err != nil || k == 0 {
		return req, SweepParseError{Message: "Invalid 'k' parameter: must be a positive integer", StatusCode: http.StatusBadRequest}
	}
	req.K = int(k)

	if nStr := q.Get("n"); nStr != "" {
		n, err := strconv.ParseUint(nStr, 10, 31)
		if err != nil || n == 0 {
			return req, SweepParseError{Message: "Invalid 'n' parameter: must be a positive integer", StatusCode: http.StatusBadRequest}
		}
		req.NMax = int(n)
	}

	req.Policy = strings.ToLower(q.Get("policy"))

	if seedStr := q.Get("seed"); seedStr != "" {
		seed, err := strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			return req, SweepParseError{Message: "Invalid 'seed' parameter: must be an unsigned integer", StatusCode: http.StatusBadRequest}
		}
		req.Seed = seed
	}

	return req, nil
}

func (s *Server) buildSweepResponse(req service.SweepRequest, rec models.SweepRecord, duration time.Duration) SweepResponse {
	resp := SweepResponse{
		SweepRecord: rec,
		N:           s.cfg.NMax,
		Policy:      s.cfg.Policy,
		Duration:    duration.String(),
	}
	if req.NMax > 0 {
		resp.N = req.NMax
	}
	if req.Policy != "" {
		resp.Policy = req.Policy
	}
	return resp
}

func statusForError(err error) int {
	var ve apperrors.ValidationError
	switch {
	case errors.Is(err, service.ErrMaxValueExceeded), errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) messageForError(err error) string {
	if errors.Is(err, service.ErrMaxValueExceeded) {
		return fmt.Sprintf("Value of 'n' exceeds maximum allowed (%d). This limit prevents resource exhaustion.", s.securityConfig.MaxNValue)
	}
	return err.Error()
}

// requestTimeout is the shorter of the server request timeout and the
// configured sweep timeout.
func (s *Server) requestTimeout() time.Duration {
	d := s.timeouts.RequestTimeout
	if t := s.cfg.Timeout; t > 0 && (d <= 0 || t < d) {
		d = t
	}
	return d
}

// writeJSONResponse writes data as JSON with the correct content type.
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Error encoding JSON response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	errResp := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	s.writeJSONResponse(w, statusCode, errResp)
}
