package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/auth"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/services"
)

// UpdateMemberRequest is the request body for updating a member record.
type UpdateMemberRequest struct {
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	NationalID     string     `json:"national_id"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Address        string     `json:"address"`
	Profession     string     `json:"profession"`
	BirthDate      *time.Time `json:"birth_date"`
	Rank           string     `json:"rank"`
	Office         string     `json:"office"`
	InitiationDate *time.Time `json:"initiation_date"`
	ElevationDate  *time.Time `json:"elevation_date"`
	ExaltationDate *time.Time `json:"exaltation_date"`
	Current        bool       `json:"current"`
}

// ChangeRankRequest is the request body for changing a member's rank.
type ChangeRankRequest struct {
	Rank string `json:"rank"`
}

// MembersHandler handles the member directory endpoints.
type MembersHandler struct {
	memberService  services.MemberService
	accountService services.AccountService
	logger         *zap.Logger
}

// NewMembersHandler creates a new members handler.
func NewMembersHandler(memberService services.MemberService, accountService services.AccountService, logger *zap.Logger) *MembersHandler {
	return &MembersHandler{
		memberService:  memberService,
		accountService: accountService,
		logger:         logger,
	}
}

// RegisterRoutes registers the members handler's routes on the given mux.
func (h *MembersHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/members", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("GET /api/members/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/members/{id}", authMiddleware.RequireAdmin(h.Update))
	mux.HandleFunc("PUT /api/members/{id}/rank", authMiddleware.RequireAdmin(h.ChangeRank))
	mux.HandleFunc("POST /api/members/{id}/deactivate", authMiddleware.RequireAdmin(h.Deactivate))
	mux.HandleFunc("DELETE /api/members/{id}", authMiddleware.RequireSuperadmin(h.Delete))
}

// List handles GET /api/members.
// Optional query parameters: rank, all (include non-current members).
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	var rank *models.Rank
	if raw := r.URL.Query().Get("rank"); raw != "" {
		parsed, ok := models.ParseRank(raw)
		if !ok {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_rank", "Invalid rank filter"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		rank = &parsed
	}

	onlyCurrent := r.URL.Query().Get("all") != "true"

	views, err := h.memberService.List(r.Context(), viewer, rank, onlyCurrent)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, views); err != nil {
		h.logger.Error("Failed to encode members response", zap.Error(err))
	}
}

// Get handles GET /api/members/{id}.
func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_member_id", "Invalid member ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	view, err := h.memberService.Get(r.Context(), viewer, id)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, view); err != nil {
		h.logger.Error("Failed to encode member response", zap.Error(err))
	}
}

// Update handles PUT /api/members/{id}.
// Last write wins; there is no optimistic locking on member records.
func (h *MembersHandler) Update(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_member_id", "Invalid member ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	member := &models.Member{
		ID:             id,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		NationalID:     req.NationalID,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		Profession:     req.Profession,
		BirthDate:      req.BirthDate,
		Rank:           models.Rank(req.Rank),
		Office:         req.Office,
		InitiationDate: req.InitiationDate,
		ElevationDate:  req.ElevationDate,
		ExaltationDate: req.ExaltationDate,
		Current:        req.Current,
	}

	if err := h.memberService.Update(r.Context(), viewer, member); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// ChangeRank handles PUT /api/members/{id}/rank.
// Updates the member's rank and keeps any linked account in sync.
func (h *MembersHandler) ChangeRank(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_member_id", "Invalid member ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req ChangeRankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.accountService.ChangeRank(r.Context(), viewer, id, models.Rank(req.Rank)); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Deactivate handles POST /api/members/{id}/deactivate.
func (h *MembersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_member_id", "Invalid member ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.memberService.Deactivate(r.Context(), viewer, id); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/members/{id}.
func (h *MembersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	viewer, _ := auth.ViewerFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_member_id", "Invalid member ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.memberService.Delete(r.Context(), viewer, id); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
