package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/auth"
	"github.com/gran-oriente/logia-engine/pkg/services"
)

// RegisterRequest is the request body for registration submissions.
type RegisterRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Profession string `json:"profession"`
	Password   string `json:"password"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and basic identity.
type LoginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Rank     string `json:"rank"`
	MemberID string `json:"member_id"`
}

// ChangePasswordRequest is the request body for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	authService    services.AuthService
	accountService services.AccountService
	tokens         *auth.TokenService
	logger         *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	authService services.AuthService,
	accountService services.AccountService,
	tokens *auth.TokenService,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		accountService: accountService,
		tokens:         tokens,
		logger:         logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
// Register and login are the only public endpoints of the API.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("POST /api/auth/password", authMiddleware.RequireAuth(h.ChangePassword))
}

// Register handles POST /api/auth/register.
// Creates an inactive member and account pair awaiting admin approval.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_fields", "First name, last name and email are required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if len(req.Password) < 8 {
		if err := ErrorResponse(w, http.StatusBadRequest, "weak_password", "Password must be at least 8 characters"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	account, err := h.accountService.Register(r.Context(), services.RegistrationInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Profession: req.Profession,
		Password:   req.Password,
	})
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, map[string]string{
		"id":     account.ID.String(),
		"status": "pending",
	}); err != nil {
		h.logger.Error("Failed to encode register response", zap.Error(err))
	}
}

// Login handles POST /api/auth/login.
// Issues a bearer token and mirrors it into the browser session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	account, member, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	token, err := h.tokens.Issue(account, member)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "token_error", "Failed to create session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := auth.SaveTokenToSession(r, w, token); err != nil {
		h.logger.Warn("Failed to save session cookie", zap.Error(err))
	}

	if err := WriteJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		Role:     string(account.Role),
		Rank:     string(account.Rank),
		MemberID: member.ID.String(),
	}); err != nil {
		h.logger.Error("Failed to encode login response", zap.Error(err))
	}
}

// Logout handles POST /api/auth/logout.
// Clears the browser session; bearer tokens simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(r, w); err != nil {
		h.logger.Warn("Failed to clear session", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles POST /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.GetClaims(r.Context())
	accountID, ok := claims.AccountID()
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Invalid session subject"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if len(req.NewPassword) < 8 {
		if err := ErrorResponse(w, http.StatusBadRequest, "weak_password", "Password must be at least 8 characters"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.authService.ChangePassword(r.Context(), accountID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
