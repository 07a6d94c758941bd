package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/auth"
	"github.com/gran-oriente/logia-engine/pkg/services"
)

// NotificationsHandler handles the member inbox endpoints.
type NotificationsHandler struct {
	notificationService services.NotificationService
	logger              *zap.Logger
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(notificationService services.NotificationService, logger *zap.Logger) *NotificationsHandler {
	return &NotificationsHandler{notificationService: notificationService, logger: logger}
}

// RegisterRoutes registers the notifications handler's routes on the given mux.
func (h *NotificationsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/notifications", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/notifications/{id}/read", authMiddleware.RequireAuth(h.MarkRead))
}

// List handles GET /api/notifications.
// ?unread=true narrows the inbox to unread entries.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetClaims(r.Context())
	memberID, ok := claims.MemberUUID()
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Session carries no member"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.notificationService.List(r.Context(), memberID, unreadOnly)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, notifications); err != nil {
		h.logger.Error("Failed to encode notifications response", zap.Error(err))
	}
}

// MarkRead handles POST /api/notifications/{id}/read.
// Members can only mark their own notifications.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetClaims(r.Context())
	memberID, ok := claims.MemberUUID()
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Session carries no member"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_notification_id", "Invalid notification ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), id, memberID); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
