package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message for a member. Delivery to devices is
// handled outside the engine; these rows are the source of truth the
// mobile client polls.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	MemberID  uuid.UUID `json:"member_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
