// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reportkit/internal/logging"
	"github.com/tomtom215/reportkit/internal/models"
	"github.com/tomtom215/reportkit/internal/query"
	"github.com/tomtom215/reportkit/internal/report"
	"github.com/tomtom215/reportkit/internal/session"
	"github.com/tomtom215/reportkit/internal/store"
	"github.com/tomtom215/reportkit/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with an ETag. Report state changes with
// every action, so responses are never cached by intermediaries.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData wraps data in a success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}, meta models.Metadata) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// generateETag creates a quoted ETag from data using FNV-1a
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return `"` + strconv.FormatUint(uint64(hash), 16) + `"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondAPIError sends a prebuilt APIError.
func respondAPIError(w http.ResponseWriter, status int, apiErr *models.APIError) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

// respondErrorFrom maps a domain error onto its status and code.
func respondErrorFrom(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		logging.CtxErr(r.Context(), err).Str("code", code).Msg("Request failed")
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

func classifyError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, ErrReportExists):
		return http.StatusConflict, "CONFLICT", "Report already exists"
	case errors.Is(err, ErrNotConversion):
		return http.StatusBadRequest, "NOT_CONVERSION", "Summary is only available for conversion reports"
	case errors.Is(err, ErrNothingToEdit):
		return http.StatusBadRequest, "INVALID_REQUEST", "Nothing to edit"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Report not found"
	case errors.Is(err, session.ErrUnknownItem):
		return http.StatusNotFound, "ITEM_NOT_FOUND", sanitizeLogValue(err.Error())
	case errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest, "INVALID_ID", "Report id must be non-empty and must not contain ':' or '/'"
	case errors.Is(err, report.ErrUnknownAction):
		return http.StatusBadRequest, "INVALID_REQUEST", sanitizeLogValue(err.Error())
	case errors.Is(err, query.ErrInvalidPayload):
		return http.StatusBadRequest, "INVALID_QUERY", sanitizeLogValue(err.Error())
	case errors.Is(err, query.ErrQueryUnavailable), errors.Is(err, query.ErrJSONUnavailable):
		return http.StatusServiceUnavailable, "QUERY_UNAVAILABLE", "Query backend unavailable"
	case errors.Is(err, store.ErrClosed), errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Service shutting down"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", "Request timed out"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v
// untouched when allowEmpty is set.
func decodeJSON(r *http.Request, v interface{}, allowEmpty bool) *models.APIError {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return &models.APIError{Code: "INVALID_REQUEST", Message: "Failed to read request body"}
	}
	if len(body) > maxBodyBytes {
		return &models.APIError{Code: "INVALID_REQUEST", Message: "Request body too large"}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		if allowEmpty {
			return nil
		}
		return &models.APIError{Code: "INVALID_REQUEST", Message: "Request body required"}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &models.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON body",
			Details: map[string]interface{}{"error": sanitizeLogValue(err.Error())},
		}
	}
	return nil
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or a models.APIError if validation fails.
func validateRequest(v interface{}) *models.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// getBoolParam extracts a boolean query parameter with a default value
func getBoolParam(r *http.Request, key string, defaultValue bool) bool {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
