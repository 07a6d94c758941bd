package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceRecord links a member to an event with a tri-state outcome:
// present (Attended true), absent (false), unrecorded (nil).
//
// Invariant: Justification != nil implies Attended points at false. A
// record is never both attended and justified; setting Attended to true
// clears any justification.
type AttendanceRecord struct {
	ID            uuid.UUID `json:"id"`
	EventID       uuid.UUID `json:"event_id"`
	MemberID      uuid.UUID `json:"member_id"`
	Attended      *bool     `json:"attended"`
	Justification *string   `json:"justification,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsExcused reports whether the record is a justified absence.
func (r *AttendanceRecord) IsExcused() bool {
	return r.Attended != nil && !*r.Attended && r.Justification != nil
}
