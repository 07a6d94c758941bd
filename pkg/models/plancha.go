package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus is the state of a plancha in the review workflow.
type ReviewStatus string

// Review status constants.
const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// IsValidReviewStatus checks if the given status is valid.
func IsValidReviewStatus(status string) bool {
	switch ReviewStatus(status) {
	case ReviewPending, ReviewApproved, ReviewRejected:
		return true
	}
	return false
}

// Plancha is a written work submitted by a member for review. Approved
// planchas enter the library subject to the same category visibility rules
// as documents.
type Plancha struct {
	ID         uuid.UUID    `json:"id"`
	AuthorID   uuid.UUID    `json:"author_id"`
	Title      string       `json:"title"`
	Category   Category     `json:"category"`
	ContentURL string       `json:"content_url"`
	Status     ReviewStatus `json:"status"`
	ReviewedBy *uuid.UUID   `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
