package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
)

// EventRepository defines the interface for event data access.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	// ListRange returns events within [from, to], most recent first.
	ListRange(ctx context.Context, from, to time.Time) ([]*models.Event, error)
}

type eventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *database.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now()

	query := `
		INSERT INTO events (id, title, kind, date, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Scope(ctx).Exec(ctx, query,
		event.ID,
		event.Title,
		event.Kind,
		event.Date,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `SELECT id, title, kind, date, created_at FROM events WHERE id = $1`

	var event models.Event
	err := r.db.Scope(ctx).QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Kind,
		&event.Date,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

func (r *eventRepository) ListRange(ctx context.Context, from, to time.Time) ([]*models.Event, error) {
	query := `
		SELECT id, title, kind, date, created_at
		FROM events
		WHERE date >= $1 AND date <= $2
		ORDER BY date DESC`

	rows, err := r.db.Scope(ctx).Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(&event.ID, &event.Title, &event.Kind, &event.Date, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

var _ EventRepository = (*eventRepository)(nil)
