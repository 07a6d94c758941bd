package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
)

// DocumentRepository defines the interface for library document access.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	// ListByCategories returns documents whose category is in the given
	// set, newest first. Category filtering happens here so the policy
	// decision made above is the only thing deciding visibility.
	ListByCategories(ctx context.Context, categories []models.Category) ([]*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *database.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = time.Now()

	query := `
		INSERT INTO documents (id, title, category, storage_url, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Scope(ctx).Exec(ctx, query,
		doc.ID,
		doc.Title,
		doc.Category,
		doc.StorageURL,
		doc.UploadedBy,
		doc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

func (r *documentRepository) ListByCategories(ctx context.Context, categories []models.Category) ([]*models.Document, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	cats := make([]string, len(categories))
	for i, c := range categories {
		cats[i] = string(c)
	}

	query := `
		SELECT id, title, category, storage_url, uploaded_by, created_at
		FROM documents
		WHERE category = ANY($1)
		ORDER BY created_at DESC`

	rows, err := r.db.Scope(ctx).Query(ctx, query, cats)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(&doc.ID, &doc.Title, &doc.Category, &doc.StorageURL, &doc.UploadedBy, &doc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return docs, nil
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM documents WHERE id = $1`

	result, err := r.db.Scope(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

var _ DocumentRepository = (*documentRepository)(nil)
