package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/policy"
	"github.com/gran-oriente/logia-engine/pkg/repositories"
)

// DocumentService exposes the lodge library. Listing is filtered by the
// viewer's category allow-list before any query runs.
type DocumentService interface {
	// Upload adds a document to the library. Admin only.
	Upload(ctx context.Context, actor policy.Viewer, doc *models.Document) error
	// List returns the documents the viewer may browse, newest first.
	List(ctx context.Context, viewer policy.Viewer) ([]*models.Document, error)
	// ListCategory returns one category's documents if the viewer may browse
	// it.
	ListCategory(ctx context.Context, viewer policy.Viewer, category models.Category) ([]*models.Document, error)
	// Delete removes a document from the library. Admin only.
	Delete(ctx context.Context, actor policy.Viewer, id uuid.UUID) error
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	logger       *zap.Logger
}

// NewDocumentService creates a new document service with dependencies.
func NewDocumentService(documentRepo repositories.DocumentRepository, logger *zap.Logger) DocumentService {
	return &documentService{documentRepo: documentRepo, logger: logger}
}

// Upload adds a document to the library.
func (s *documentService) Upload(ctx context.Context, actor policy.Viewer, doc *models.Document) error {
	if !actor.Role.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}
	if !models.IsValidCategory(string(doc.Category)) {
		return apperrors.ErrInvalidCategory
	}

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("category", string(doc.Category)))

	return nil
}

// List returns the documents the viewer may browse.
func (s *documentService) List(ctx context.Context, viewer policy.Viewer) ([]*models.Document, error) {
	return s.documentRepo.ListByCategories(ctx, policy.AllowedCategories(viewer))
}

// ListCategory returns one category's documents.
func (s *documentService) ListCategory(ctx context.Context, viewer policy.Viewer, category models.Category) ([]*models.Document, error) {
	if !models.IsValidCategory(string(category)) {
		return nil, apperrors.ErrInvalidCategory
	}
	if !policy.CanViewCategory(viewer, category) {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.documentRepo.ListByCategories(ctx, []models.Category{category})
}

// Delete removes a document from the library.
func (s *documentService) Delete(ctx context.Context, actor policy.Viewer, id uuid.UUID) error {
	if !actor.Role.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Document deleted", zap.String("document_id", id.String()))
	return nil
}

// Ensure documentService implements DocumentService at compile time.
var _ DocumentService = (*documentService)(nil)
