// Package services contains the business logic of logia-engine.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/policy"
	"github.com/gran-oriente/logia-engine/pkg/repositories"
)

// Stats summarizes a member's attendance over a set of records.
type Stats struct {
	// Total counts every record in the window, recorded or not.
	Total int `json:"total"`
	// Registered counts records with a recorded outcome.
	Registered int `json:"registered"`
	Attended   int `json:"attended"`
	// Excused counts justified absences.
	Excused int `json:"excused"`
	// Unexcused counts recorded absences with no justification.
	Unexcused int `json:"unexcused"`
	// Rate is attended over registered as a percentage. Zero registered
	// records yield 0, never NaN.
	Rate float64 `json:"rate"`
}

// ComputeStats derives attendance statistics from a member's records. Pure
// over its input; an empty slice yields the zero Stats with Rate 0.
func ComputeStats(records []*models.AttendanceRecord) Stats {
	var s Stats
	s.Total = len(records)

	for _, rec := range records {
		if rec.Attended == nil {
			continue
		}
		s.Registered++
		if *rec.Attended {
			s.Attended++
		} else if rec.Justification != nil {
			s.Excused++
		}
	}

	s.Unexcused = s.Registered - s.Attended - s.Excused
	if s.Registered > 0 {
		s.Rate = float64(s.Attended) / float64(s.Registered) * 100
	}

	return s
}

// MemberStats pairs a member with their computed statistics for reports.
type MemberStats struct {
	MemberID uuid.UUID   `json:"member_id"`
	Name     string      `json:"name"`
	Rank     models.Rank `json:"rank"`
	Stats    Stats       `json:"stats"`
}

// AttendanceService defines attendance marking and reporting operations.
type AttendanceService interface {
	// SetAttended records presence or absence for one member at one event.
	// Marking present clears any justification; marking absent preserves it.
	SetAttended(ctx context.Context, eventID, memberID uuid.UUID, present bool) error
	// SetJustification stores an absence justification, forcing the record
	// to absent. Whitespace-only text is normalized to no justification.
	SetJustification(ctx context.Context, eventID, memberID uuid.UUID, text string) error
	// MarkAll bulk-sets every record of an event. Marking present clears
	// all justifications for the event.
	MarkAll(ctx context.Context, eventID uuid.UUID, present bool) error
	// ReportForMember computes one member's statistics over a date range.
	ReportForMember(ctx context.Context, memberID uuid.UUID, from, to time.Time) (Stats, error)
	// ReportByRank computes statistics for every current member of a rank,
	// each member independently.
	ReportByRank(ctx context.Context, viewer policy.Viewer, rank models.Rank, from, to time.Time) ([]MemberStats, error)
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	memberRepo     repositories.MemberRepository
	logger         *zap.Logger
}

// NewAttendanceService creates a new attendance service with dependencies.
func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepository,
	memberRepo repositories.MemberRepository,
	logger *zap.Logger,
) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		memberRepo:     memberRepo,
		logger:         logger,
	}
}

// SetAttended records presence or absence for one member at one event.
func (s *attendanceService) SetAttended(ctx context.Context, eventID, memberID uuid.UUID, present bool) error {
	attended := present

	var justification *string
	if !present {
		// Absence keeps whatever justification already exists.
		existing, err := s.attendanceRepo.GetByEventAndMember(ctx, eventID, memberID)
		if err != nil {
			return err
		}
		if existing != nil {
			justification = existing.Justification
		}
	}

	return s.attendanceRepo.SetOutcome(ctx, eventID, memberID, &attended, justification)
}

// SetJustification stores an absence justification.
func (s *attendanceService) SetJustification(ctx context.Context, eventID, memberID uuid.UUID, text string) error {
	attended := false

	var justification *string
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		justification = &trimmed
	}

	return s.attendanceRepo.SetOutcome(ctx, eventID, memberID, &attended, justification)
}

// MarkAll bulk-sets every record of an event.
func (s *attendanceService) MarkAll(ctx context.Context, eventID uuid.UUID, present bool) error {
	return s.attendanceRepo.MarkAllForEvent(ctx, eventID, present)
}

// ReportForMember computes one member's statistics over a date range.
func (s *attendanceService) ReportForMember(ctx context.Context, memberID uuid.UUID, from, to time.Time) (Stats, error) {
	records, err := s.attendanceRepo.ListByMemberRange(ctx, memberID, from, to)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(records), nil
}

// ReportByRank computes statistics for every current member of a rank.
func (s *attendanceService) ReportByRank(ctx context.Context, viewer policy.Viewer, rank models.Rank, from, to time.Time) ([]MemberStats, error) {
	if !viewer.IsElevated() {
		return nil, apperrors.ErrPermissionDenied
	}
	if !models.IsValidRank(string(rank)) {
		return nil, apperrors.ErrInvalidRank
	}

	members, err := s.memberRepo.List(ctx, &rank, true)
	if err != nil {
		return nil, err
	}

	report := make([]MemberStats, 0, len(members))
	for _, member := range members {
		records, err := s.attendanceRepo.ListByMemberRange(ctx, member.ID, from, to)
		if err != nil {
			return nil, err
		}
		report = append(report, MemberStats{
			MemberID: member.ID,
			Name:     member.FullName(),
			Rank:     member.Rank,
			Stats:    ComputeStats(records),
		})
	}

	return report, nil
}

// Ensure attendanceService implements AttendanceService at compile time.
var _ AttendanceService = (*attendanceService)(nil)
