package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind classifies a lodge meeting.
type EventKind string

// Event kind constants.
const (
	EventTenida      EventKind = "tenida"
	EventInstruction EventKind = "instruction"
	EventCeremony    EventKind = "ceremony"
)

// IsValidEventKind checks if the given kind is valid.
func IsValidEventKind(kind string) bool {
	switch EventKind(kind) {
	case EventTenida, EventInstruction, EventCeremony:
		return true
	}
	return false
}

// Event is a lodge meeting attendance is recorded against.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Kind      EventKind `json:"kind"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}
