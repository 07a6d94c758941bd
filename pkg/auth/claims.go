// Package auth provides JWT-based authentication for logia-engine. Tokens
// are issued locally at login and carry the account's role, rank and office
// so the access policy can be evaluated without a database round trip.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/policy"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
)

// Claims is the JWT claims structure for logia-engine sessions. The subject
// is the account ID; the member ID links back to the directory entry.
type Claims struct {
	jwt.RegisteredClaims
	MemberID string `json:"mid,omitempty"`
	Role     string `json:"role,omitempty"`
	Rank     string `json:"rank,omitempty"`
	Office   string `json:"office,omitempty"`
}

// Viewer shapes the claims into the value the access policy evaluates.
func (c *Claims) Viewer() policy.Viewer {
	return policy.Viewer{
		Role:   models.Role(c.Role),
		Rank:   models.Rank(c.Rank),
		Office: c.Office,
	}
}

// AccountID parses the subject as the account UUID.
func (c *Claims) AccountID() (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// MemberUUID parses the member ID claim.
func (c *Claims) MemberUUID() (uuid.UUID, bool) {
	id, err := uuid.Parse(c.MemberID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// SetClaims stores JWT claims in the context. Used by the middleware and by
// tests that need an authenticated context.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// ViewerFromContext extracts the policy viewer from the claims in context.
// Returns the zero viewer and false when the request is unauthenticated.
func ViewerFromContext(ctx context.Context) (policy.Viewer, bool) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return policy.Viewer{}, false
	}
	return claims.Viewer(), true
}
