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

// ApproveRequest is the request body for approving a pending account.
type ApproveRequest struct {
	Role string `json:"role"`
	Rank string `json:"rank"`
}

// EditAccountRequest is the request body for editing an account grant.
type EditAccountRequest struct {
	Role   string `json:"role"`
	Rank   string `json:"rank"`
	Active bool   `json:"active"`
}

// AccountsHandler handles the registration approval endpoints.
type AccountsHandler struct {
	accountService services.AccountService
	logger         *zap.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(accountService services.AccountService, logger *zap.Logger) *AccountsHandler {
	return &AccountsHandler{accountService: accountService, logger: logger}
}

// RegisterRoutes registers the accounts handler's routes on the given mux.
// The service layer re-checks the actor's permissions; the middleware only
// provides the coarse admin gate.
func (h *AccountsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/accounts/pending", authMiddleware.RequireAdmin(h.ListPending))
	mux.HandleFunc("POST /api/accounts/{id}/approve", authMiddleware.RequireAdmin(h.Approve))
	mux.HandleFunc("POST /api/accounts/{id}/reject", authMiddleware.RequireAdmin(h.Reject))
	mux.HandleFunc("PUT /api/accounts/{id}", authMiddleware.RequireAdmin(h.Edit))
	mux.HandleFunc("POST /api/accounts/{id}/toggle", authMiddleware.RequireAdmin(h.Toggle))
	mux.HandleFunc("DELETE /api/accounts/{id}", authMiddleware.RequireSuperadmin(h.Remove))
}

// ListPending handles GET /api/accounts/pending.
func (h *AccountsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	accounts, err := h.accountService.ListPending(r.Context(), viewer)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, accounts); err != nil {
		h.logger.Error("Failed to encode pending accounts", zap.Error(err))
	}
}

// Approve handles POST /api/accounts/{id}/approve.
func (h *AccountsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.accountService.Approve(r.Context(), viewer, id, models.Role(req.Role), models.Rank(req.Rank)); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Reject handles POST /api/accounts/{id}/reject.
// Deletes the account and its member record; this is irreversible.
func (h *AccountsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	if err := h.accountService.Reject(r.Context(), viewer, id); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Edit handles PUT /api/accounts/{id}.
func (h *AccountsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req EditAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.accountService.EditAccount(r.Context(), viewer, id, models.Role(req.Role), models.Rank(req.Rank), req.Active); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Toggle handles POST /api/accounts/{id}/toggle.
func (h *AccountsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	if err := h.accountService.ToggleStatus(r.Context(), viewer, id); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Remove handles DELETE /api/accounts/{id}.
// Removes the login while keeping the member on the rolls as non-current.
func (h *AccountsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, ok := h.accountID(w, r)
	if !ok {
		return
	}

	if err := h.accountService.RemoveAdmin(r.Context(), viewer, id); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountsHandler) accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_account_id", "Invalid account ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
