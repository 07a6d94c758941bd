package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/models"
)

// Middleware provides HTTP authentication middleware. It is thin and
// delegates token validation to TokenService.
type Middleware struct {
	tokens *TokenService
	logger *zap.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(tokens *TokenService, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, logger: logger}
}

// RequireAuth validates the bearer token (or session cookie fallback) and
// sets claims in context for downstream handlers.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := extractToken(r)
		if !ok {
			m.unauthorized(w, "Authentication required")
			return
		}

		claims, err := m.tokens.Verify(tokenString)
		if err != nil {
			m.unauthorized(w, "Invalid or expired session")
			return
		}

		next(w, r.WithContext(SetClaims(r.Context(), claims)))
	}
}

// RequireAdmin additionally requires an admin or superadmin role.
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := GetClaims(r.Context())
		if !models.Role(claims.Role).IsAdmin() {
			m.logger.Warn("Non-admin attempted admin endpoint",
				zap.String("subject", claims.Subject),
				zap.String("path", r.URL.Path))
			m.forbidden(w, "Administrator role required")
			return
		}
		next(w, r)
	})
}

// RequireSuperadmin restricts an endpoint to the superadmin role.
func (m *Middleware) RequireSuperadmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := GetClaims(r.Context())
		if models.Role(claims.Role) != models.RoleSuperadmin {
			m.forbidden(w, "Superadmin role required")
			return
		}
		next(w, r)
	})
}

// extractToken reads the token from the Authorization header, falling back
// to the session cookie set by the browser login flow.
func extractToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), true
	}

	token, err := TokenFromSession(r)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

// forbidden returns a 403 response with JSON error body.
func (m *Middleware) forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "forbidden",
		"message": message,
	})
}
