package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/genvis/genvis-core/internal/feature"
	"github.com/genvis/genvis-core/internal/genapi"
)

const (
	// maxQueryParamLen limits path and query parameter length to prevent
	// DoS via oversized URL params.
	maxQueryParamLen = 100

	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// setFeatureRequest is the request body for PUT /features/{name}/value.
// The value may be a JSON string, number or boolean; numbers keep their
// literal form so 64-bit integers survive the round trip.
type setFeatureRequest struct {
	Value json.RawMessage `json:"value"`
}

// handleListFeatures returns every named feature with its current value.
func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	infos := s.registry.List(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"features": infos,
		"count":    len(infos),
	})
}

// handleGetFeature returns the metadata and current value of one feature.
func (s *Server) handleGetFeature(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || len(name) > maxQueryParamLen {
		writeBadRequest(w, "invalid feature name")
		return
	}

	info, err := s.registry.Describe(r.Context(), name)
	if err != nil {
		s.writeFeatureError(w, name, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// handleSetFeature writes a new value to a feature.
//
// The body is {"value": ...}. The value is coerced according to the
// feature's kind: enumerations match by entry name, booleans accept
// true/false, integers and floats parse from the literal.
func (s *Server) handleSetFeature(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || len(name) > maxQueryParamLen {
		writeBadRequest(w, "invalid feature name")
		return
	}

	var req setFeatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(req.Value) == 0 {
		writeBadRequest(w, "value is required")
		return
	}

	value, err := rawValueToString(req.Value)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.registry.SetFromString(r.Context(), name, value); err != nil {
		s.writeFeatureError(w, name, err)
		return
	}

	// Return the feature as the device now sees it; a selector write may
	// have invalidated more than the written node.
	info, err := s.registry.Describe(r.Context(), name)
	if err != nil {
		s.writeFeatureError(w, name, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// handleExecuteFeature fires a command feature.
func (s *Server) handleExecuteFeature(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || len(name) > maxQueryParamLen {
		writeBadRequest(w, "invalid feature name")
		return
	}

	if err := s.registry.Execute(r.Context(), name); err != nil {
		s.writeFeatureError(w, name, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"feature":  name,
		"executed": true,
	})
}

// handleFeatureHistory returns recorded values for a feature, newest first.
//
// Query parameters:
//   - limit: maximum entries to return (default 50, max 200)
//   - from, to: RFC3339 time bounds, both optional
func (s *Server) handleFeatureHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || len(name) > maxQueryParamLen {
		writeBadRequest(w, "invalid feature name")
		return
	}

	limit, err := parseHistoryLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	from, err := parseTimeParam(r.URL.Query().Get("from"))
	if err != nil {
		writeBadRequest(w, "invalid from timestamp")
		return
	}
	to, err := parseTimeParam(r.URL.Query().Get("to"))
	if err != nil {
		writeBadRequest(w, "invalid to timestamp")
		return
	}

	// A feature with no recorded history is indistinguishable from an
	// empty result, but an unknown name is a client error.
	if _, err := s.registry.Describe(r.Context(), name); err != nil {
		s.writeFeatureError(w, name, err)
		return
	}

	entries, err := s.registry.History(r.Context(), feature.HistoryQuery{
		Feature: name,
		From:    from,
		To:      to,
		Limit:   limit,
	})
	if err != nil {
		if errors.Is(err, feature.ErrHistoryDisabled) {
			writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "feature history unavailable")
			return
		}
		s.logger.Error("feature history query failed", "feature", name, "error", err)
		writeInternalError(w, "failed to load feature history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"feature": name,
		"history": entries,
		"count":   len(entries),
	})
}

// handleClearCache drops every cached register read and node value so
// the next access re-reads the device.
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.registry.ClearCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "cache cleared",
	})
}

// writeFeatureError maps registry and node-graph errors to HTTP status codes.
func (s *Server) writeFeatureError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, feature.ErrFeatureNotFound):
		writeNotFound(w, "feature not found")
	case errors.Is(err, genapi.ErrAccessDenied):
		writeForbidden(w, err.Error())
	case errors.Is(err, genapi.ErrInvalidData), errors.Is(err, genapi.ErrInvalidNode):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		s.logger.Error("feature operation failed", "feature", name, "error", err)
		writeInternalError(w, "feature operation failed")
	}
}

// rawValueToString converts a JSON value literal into the string form
// the registry parses. Strings are unquoted; numbers and booleans keep
// their literal text. Objects and arrays are rejected.
func rawValueToString(raw json.RawMessage) (string, error) {
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid string value")
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("value must be a string, number or boolean")
	case 'n':
		return "", fmt.Errorf("value must not be null")
	default:
		return string(raw), nil
	}
}

// parseHistoryLimit parses the limit parameter with default and maximum.
func parseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit")
	}
	if limit > maxHistoryLimit {
		return 0, fmt.Errorf("limit exceeds maximum")
	}

	return limit, nil
}

// parseTimeParam parses an optional RFC3339 timestamp; empty means unbounded.
func parseTimeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if len(raw) > maxQueryParamLen {
		return time.Time{}, fmt.Errorf("timestamp exceeds maximum length")
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		ts, err = time.Parse(time.RFC3339, raw)
	}
	return ts, err
}
