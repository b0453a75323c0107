package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code. The status is
// already sent when encoding fails, so the failure is only logged.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Int("status", status).
			Str("correlation_id", middleware.CorrelationIDFromContext(r.Context())).
			Msg("failed to encode response")
	}
}

// statusFor maps a domain error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound, model.ErrCodeSaleNotFound, model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidJSON, model.ErrCodeInvalidID, model.ErrCodeInvalidQuery, model.ErrCodeMissingField, model.ErrCodeEmptyOrder,
		model.ErrCodeInvalidQuantity, model.ErrCodeInvalidStatus, model.ErrCodeInvalidSale:
		return http.StatusBadRequest
	case model.ErrCodeInvalidStatusTransition:
		return http.StatusConflict
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates err into the standard error body. Errors that are
// not domain errors are reported as INTERNAL_ERROR without their detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	resp := model.ErrorResponse{
		Error:         model.ErrCodeInternalError,
		Message:       "internal server error",
		CorrelationID: middleware.CorrelationIDFromContext(r.Context()),
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		resp.Error = domainErr.Code
		resp.Message = err.Error()
	}
	status := statusFor(resp.Error)

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("correlation_id", resp.CorrelationID).
		Msg("handler error")

	writeJSON(w, r, status, resp, logger)
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidJSON, err)
	}
	return nil
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidID, raw)
	}
	return id, nil
}

// pagination reads the limit and offset query parameters.
func pagination(r *http.Request) (limit, offset int, err error) {
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("%w: invalid limit parameter", model.ErrInvalidQuery)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			return 0, 0, fmt.Errorf("%w: invalid offset parameter", model.ErrInvalidQuery)
		}
	}
	return limit, offset, nil
}
