package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/policy"
	"github.com/gran-oriente/logia-engine/pkg/repositories"
)

// RosterEntry pairs a member with their attendance record for one event. The
// record outcome is nil until someone marks it.
type RosterEntry struct {
	MemberID uuid.UUID   `json:"member_id"`
	Name     string      `json:"name"`
	Rank     models.Rank `json:"rank"`
	Attended *bool       `json:"attended"`
	// Justification is set only on excused absences.
	Justification *string `json:"justification,omitempty"`
}

// EventService manages lodge events and their attendance rosters.
type EventService interface {
	// Create stores the event and seeds an unrecorded attendance row for
	// every current member, atomically.
	Create(ctx context.Context, actor policy.Viewer, event *models.Event) error
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListRange(ctx context.Context, from, to time.Time) ([]*models.Event, error)
	// Roster returns the event's attendance sheet ordered by member name.
	Roster(ctx context.Context, actor policy.Viewer, eventID uuid.UUID) ([]RosterEntry, error)
}

type eventService struct {
	db             *database.DB
	eventRepo      repositories.EventRepository
	attendanceRepo repositories.AttendanceRepository
	memberRepo     repositories.MemberRepository
	logger         *zap.Logger
}

// NewEventService creates a new event service with dependencies.
func NewEventService(
	db *database.DB,
	eventRepo repositories.EventRepository,
	attendanceRepo repositories.AttendanceRepository,
	memberRepo repositories.MemberRepository,
	logger *zap.Logger,
) EventService {
	return &eventService{
		db:             db,
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
		memberRepo:     memberRepo,
		logger:         logger,
	}
}

// Create stores the event and seeds the attendance roster.
func (s *eventService) Create(ctx context.Context, actor policy.Viewer, event *models.Event) error {
	if !actor.IsElevated() {
		return apperrors.ErrPermissionDenied
	}
	if !models.IsValidEventKind(string(event.Kind)) {
		return apperrors.ErrInvalidEventKind
	}

	members, err := s.memberRepo.List(ctx, nil, true)
	if err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.eventRepo.Create(txCtx, event); err != nil {
			return err
		}
		for _, member := range members {
			// Seeded rows carry no outcome until someone marks them.
			if err := s.attendanceRepo.SetOutcome(txCtx, event.ID, member.ID, nil, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("kind", string(event.Kind)),
		zap.Int("roster_size", len(members)))

	return nil
}

// Get retrieves one event.
func (s *eventService) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// ListRange returns events within [from, to].
func (s *eventService) ListRange(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	return s.eventRepo.ListRange(ctx, from, to)
}

// Roster returns the event's attendance sheet.
func (s *eventService) Roster(ctx context.Context, actor policy.Viewer, eventID uuid.UUID) ([]RosterEntry, error) {
	if !actor.IsElevated() {
		return nil, apperrors.ErrPermissionDenied
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	byMember := make(map[uuid.UUID]*models.AttendanceRecord, len(records))
	for _, rec := range records {
		byMember[rec.MemberID] = rec
	}

	members, err := s.memberRepo.List(ctx, nil, true)
	if err != nil {
		return nil, err
	}

	roster := make([]RosterEntry, 0, len(members))
	for _, member := range members {
		entry := RosterEntry{
			MemberID: member.ID,
			Name:     member.FullName(),
			Rank:     member.Rank,
		}
		if rec, ok := byMember[member.ID]; ok {
			entry.Attended = rec.Attended
			entry.Justification = rec.Justification
		}
		roster = append(roster, entry)
	}

	return roster, nil
}

// Ensure eventService implements EventService at compile time.
var _ EventService = (*eventService)(nil)
