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

// PlanchaRepository defines the interface for plancha data access.
type PlanchaRepository interface {
	Create(ctx context.Context, plancha *models.Plancha) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plancha, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Plancha, error)
	// ListApprovedByCategories returns approved planchas browseable under
	// the given categories, newest first.
	ListApprovedByCategories(ctx context.Context, categories []models.Category) ([]*models.Plancha, error)
	ListPending(ctx context.Context) ([]*models.Plancha, error)
	// SetReview stamps the review decision. Fails with ErrAlreadyReviewed
	// if the plancha already left the pending state.
	SetReview(ctx context.Context, id uuid.UUID, status models.ReviewStatus, reviewerID uuid.UUID) error
}

type planchaRepository struct {
	db *database.DB
}

// NewPlanchaRepository creates a new plancha repository.
func NewPlanchaRepository(db *database.DB) PlanchaRepository {
	return &planchaRepository{db: db}
}

const planchaColumns = `id, author_id, title, category, content_url, status, reviewed_by, reviewed_at, created_at, updated_at`

func (r *planchaRepository) Create(ctx context.Context, plancha *models.Plancha) error {
	if plancha.ID == uuid.Nil {
		plancha.ID = uuid.New()
	}
	now := time.Now()
	plancha.CreatedAt = now
	plancha.UpdatedAt = now
	plancha.Status = models.ReviewPending

	query := `
		INSERT INTO planchas (id, author_id, title, category, content_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Scope(ctx).Exec(ctx, query,
		plancha.ID,
		plancha.AuthorID,
		plancha.Title,
		plancha.Category,
		plancha.ContentURL,
		plancha.Status,
		plancha.CreatedAt,
		plancha.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create plancha: %w", err)
	}

	return nil
}

func (r *planchaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Plancha, error) {
	query := `SELECT ` + planchaColumns + ` FROM planchas WHERE id = $1`

	var p models.Plancha
	err := r.db.Scope(ctx).QueryRow(ctx, query, id).Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Category, &p.ContentURL,
		&p.Status, &p.ReviewedBy, &p.ReviewedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plancha: %w", err)
	}

	return &p, nil
}

func (r *planchaRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Plancha, error) {
	query := `SELECT ` + planchaColumns + ` FROM planchas WHERE author_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, authorID)
}

func (r *planchaRepository) ListApprovedByCategories(ctx context.Context, categories []models.Category) ([]*models.Plancha, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	cats := make([]string, len(categories))
	for i, c := range categories {
		cats[i] = string(c)
	}

	query := `SELECT ` + planchaColumns + ` FROM planchas
		WHERE status = 'approved' AND category = ANY($1)
		ORDER BY created_at DESC`
	return r.list(ctx, query, cats)
}

func (r *planchaRepository) ListPending(ctx context.Context) ([]*models.Plancha, error) {
	query := `SELECT ` + planchaColumns + ` FROM planchas WHERE status = 'pending' ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *planchaRepository) SetReview(ctx context.Context, id uuid.UUID, status models.ReviewStatus, reviewerID uuid.UUID) error {
	query := `
		UPDATE planchas
		SET status = $1, reviewed_by = $2, reviewed_at = $3, updated_at = $3
		WHERE id = $4 AND status = 'pending'`

	result, err := r.db.Scope(ctx).Exec(ctx, query, status, reviewerID, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to review plancha: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Either the plancha does not exist or someone reviewed it first.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrAlreadyReviewed
	}

	return nil
}

func (r *planchaRepository) list(ctx context.Context, query string, args ...any) ([]*models.Plancha, error) {
	rows, err := r.db.Scope(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list planchas: %w", err)
	}
	defer rows.Close()

	var planchas []*models.Plancha
	for rows.Next() {
		var p models.Plancha
		err := rows.Scan(
			&p.ID, &p.AuthorID, &p.Title, &p.Category, &p.ContentURL,
			&p.Status, &p.ReviewedBy, &p.ReviewedAt, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plancha: %w", err)
		}
		planchas = append(planchas, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating planchas: %w", err)
	}

	return planchas, nil
}

var _ PlanchaRepository = (*planchaRepository)(nil)
