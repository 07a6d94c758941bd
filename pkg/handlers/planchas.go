package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/auth"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/services"
)

// SubmitPlanchaRequest is the request body for filing a plancha.
type SubmitPlanchaRequest struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	ContentURL string `json:"content_url"`
}

// ReviewPlanchaRequest is the request body for a review decision.
type ReviewPlanchaRequest struct {
	Approve bool `json:"approve"`
}

// PlanchasHandler handles the plancha workflow endpoints.
type PlanchasHandler struct {
	planchaService services.PlanchaService
	logger         *zap.Logger
}

// NewPlanchasHandler creates a new planchas handler.
func NewPlanchasHandler(planchaService services.PlanchaService, logger *zap.Logger) *PlanchasHandler {
	return &PlanchasHandler{planchaService: planchaService, logger: logger}
}

// RegisterRoutes registers the planchas handler's routes on the given mux.
func (h *PlanchasHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/planchas", authMiddleware.RequireAuth(h.Submit))
	mux.HandleFunc("GET /api/planchas", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/planchas/{id}/review", authMiddleware.RequireAuth(h.Review))
}

// Submit handles POST /api/planchas.
// The author is taken from the session, never from the body.
func (h *PlanchasHandler) Submit(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())
	claims, _ := auth.GetClaims(r.Context())

	authorID, ok := claims.MemberUUID()
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Session carries no member"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req SubmitPlanchaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Title == "" || req.ContentURL == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_fields", "Title and content URL are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	plancha := &models.Plancha{
		Title:      req.Title,
		Category:   models.Category(req.Category),
		ContentURL: req.ContentURL,
	}

	if err := h.planchaService.Submit(r.Context(), viewer, authorID, plancha); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, plancha); err != nil {
		h.logger.Error("Failed to encode plancha response", zap.Error(err))
	}
}

// List handles GET /api/planchas.
// ?view=mine lists the author's own, ?view=pending the review queue
// (elevated only); the default is the approved library.
func (h *PlanchasHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())
	claims, _ := auth.GetClaims(r.Context())

	var planchas []*models.Plancha
	var err error

	switch r.URL.Query().Get("view") {
	case "mine":
		authorID, ok := claims.MemberUUID()
		if !ok {
			if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Session carries no member"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		planchas, err = h.planchaService.ListMine(r.Context(), authorID)
	case "pending":
		planchas, err = h.planchaService.ListPending(r.Context(), viewer)
	default:
		planchas, err = h.planchaService.ListLibrary(r.Context(), viewer)
	}
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, planchas); err != nil {
		h.logger.Error("Failed to encode planchas response", zap.Error(err))
	}
}

// Review handles POST /api/planchas/{id}/review.
func (h *PlanchasHandler) Review(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())
	claims, _ := auth.GetClaims(r.Context())

	planchaID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_plancha_id", "Invalid plancha ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	reviewerID, ok := claims.MemberUUID()
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Session carries no member"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req ReviewPlanchaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.planchaService.Review(r.Context(), viewer, planchaID, reviewerID, req.Approve); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
