// Package handlers contains the HTTP layer of logia-engine.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeServiceError maps service-layer sentinel errors onto HTTP responses.
// Unrecognized errors become an opaque 500 so internals never leak.
func writeServiceError(logger *zap.Logger, w http.ResponseWriter, err error) {
	var status int
	var code string
	var message string

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "Resource not found"
	case errors.Is(err, apperrors.ErrPermissionDenied):
		status, code, message = http.StatusForbidden, "forbidden", "Permission denied"
	case errors.Is(err, apperrors.ErrInvalidRank):
		status, code, message = http.StatusBadRequest, "invalid_rank", "Invalid rank. Must be one of: aprendiz, companero, maestro"
	case errors.Is(err, apperrors.ErrInvalidRole):
		status, code, message = http.StatusBadRequest, "invalid_role", "Invalid role. Must be one of: general, admin, superadmin"
	case errors.Is(err, apperrors.ErrInvalidCategory):
		status, code, message = http.StatusBadRequest, "invalid_category", "Invalid category"
	case errors.Is(err, apperrors.ErrInvalidEventKind):
		status, code, message = http.StatusBadRequest, "invalid_event_kind", "Invalid event kind. Must be one of: tenida, instruction, ceremony"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"
	case errors.Is(err, apperrors.ErrAccountInactive):
		status, code, message = http.StatusForbidden, "account_inactive", "Account is awaiting approval or has been deactivated"
	case errors.Is(err, apperrors.ErrLastSuperadmin):
		status, code, message = http.StatusConflict, "last_superadmin", "The last superadmin cannot be removed or demoted"
	case errors.Is(err, apperrors.ErrAlreadyReviewed):
		status, code, message = http.StatusConflict, "already_reviewed", "Plancha was already reviewed"
	case errors.Is(err, apperrors.ErrConflict):
		status, code, message = http.StatusConflict, "conflict", "Resource conflict"
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		status, code, message = http.StatusInternalServerError, "internal_error", "Internal server error"
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}
