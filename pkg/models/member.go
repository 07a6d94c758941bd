package models

import (
	"time"

	"github.com/google/uuid"
)

// Member represents a lodge member. NationalID is stored encrypted; the
// repository layer owns encryption and decryption.
type Member struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	NationalID string    `json:"national_id,omitempty"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address,omitempty"`
	Profession string    `json:"profession,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`

	Rank Rank `json:"rank"`

	// Office is a held administrative or ceremonial position. A non-empty
	// office grants admin-equivalent viewing rights.
	Office string `json:"office,omitempty"`

	// Milestone dates for each grade. Used as a fallback when inferring a
	// member's rank from an incomplete record.
	InitiationDate *time.Time `json:"initiation_date,omitempty"`
	ElevationDate  *time.Time `json:"elevation_date,omitempty"`
	ExaltationDate *time.Time `json:"exaltation_date,omitempty"`

	// Current distinguishes active members from soft-deleted ones.
	Current bool `json:"current"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName returns the member's display name.
func (m *Member) FullName() string {
	if m.FirstName == "" {
		return m.LastName
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}
