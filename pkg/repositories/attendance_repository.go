package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
)

// AttendanceRepository defines the interface for attendance data access.
// Outcome writes go through SetOutcome so the justification invariant is
// enforced in exactly one place above this layer.
type AttendanceRepository interface {
	// SetOutcome upserts the record for (event, member).
	SetOutcome(ctx context.Context, eventID, memberID uuid.UUID, attended *bool, justification *string) error
	GetByEventAndMember(ctx context.Context, eventID, memberID uuid.UUID) (*models.AttendanceRecord, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.AttendanceRecord, error)
	// ListByMemberRange returns a member's records for events in [from, to].
	ListByMemberRange(ctx context.Context, memberID uuid.UUID, from, to time.Time) ([]*models.AttendanceRecord, error)
	// MarkAllForEvent bulk-sets the outcome for every record of an event.
	// When present is true all justifications are cleared.
	MarkAllForEvent(ctx context.Context, eventID uuid.UUID, present bool) error
}

type attendanceRepository struct {
	db *database.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *database.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) SetOutcome(ctx context.Context, eventID, memberID uuid.UUID, attended *bool, justification *string) error {
	query := `
		INSERT INTO attendance (id, event_id, member_id, attended, justification, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, member_id) DO UPDATE
		SET attended = EXCLUDED.attended,
		    justification = EXCLUDED.justification,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.db.Scope(ctx).Exec(ctx, query,
		uuid.New(),
		eventID,
		memberID,
		attended,
		justification,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set attendance outcome: %w", err)
	}

	return nil
}

func (r *attendanceRepository) GetByEventAndMember(ctx context.Context, eventID, memberID uuid.UUID) (*models.AttendanceRecord, error) {
	query := `
		SELECT id, event_id, member_id, attended, justification, updated_at
		FROM attendance
		WHERE event_id = $1 AND member_id = $2`

	var rec models.AttendanceRecord
	err := r.db.Scope(ctx).QueryRow(ctx, query, eventID, memberID).Scan(
		&rec.ID,
		&rec.EventID,
		&rec.MemberID,
		&rec.Attended,
		&rec.Justification,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A missing row is an unrecorded outcome, not an error the
			// caller has to branch on.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return &rec, nil
}

func (r *attendanceRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.AttendanceRecord, error) {
	query := `
		SELECT id, event_id, member_id, attended, justification, updated_at
		FROM attendance
		WHERE event_id = $1`

	return r.list(ctx, query, eventID)
}

func (r *attendanceRepository) ListByMemberRange(ctx context.Context, memberID uuid.UUID, from, to time.Time) ([]*models.AttendanceRecord, error) {
	query := `
		SELECT a.id, a.event_id, a.member_id, a.attended, a.justification, a.updated_at
		FROM attendance a
		JOIN events e ON e.id = a.event_id
		WHERE a.member_id = $1 AND e.date >= $2 AND e.date <= $3
		ORDER BY e.date`

	return r.list(ctx, query, memberID, from, to)
}

func (r *attendanceRepository) MarkAllForEvent(ctx context.Context, eventID uuid.UUID, present bool) error {
	query := `
		UPDATE attendance
		SET attended = $1,
		    justification = CASE WHEN $1 THEN NULL ELSE justification END,
		    updated_at = $2
		WHERE event_id = $3`

	_, err := r.db.Scope(ctx).Exec(ctx, query, present, time.Now(), eventID)
	if err != nil {
		return fmt.Errorf("failed to mark attendance for event: %w", err)
	}

	return nil
}

func (r *attendanceRepository) list(ctx context.Context, query string, args ...any) ([]*models.AttendanceRecord, error) {
	rows, err := r.db.Scope(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var records []*models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		err := rows.Scan(
			&rec.ID,
			&rec.EventID,
			&rec.MemberID,
			&rec.Attended,
			&rec.Justification,
			&rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance: %w", err)
	}

	return records, nil
}

var _ AttendanceRepository = (*attendanceRepository)(nil)
