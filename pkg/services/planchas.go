package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/policy"
	"github.com/gran-oriente/logia-engine/pkg/repositories"
)

// PlanchaService implements the paper review workflow. Submissions start
// pending, a reviewer approves or rejects them exactly once, and approved
// planchas join the library under the same category visibility rules as
// documents.
type PlanchaService interface {
	// Submit files a new plancha under the author's member ID. The category
	// must be one the author can browse.
	Submit(ctx context.Context, viewer policy.Viewer, authorID uuid.UUID, plancha *models.Plancha) error
	// ListMine returns the author's own planchas in every state.
	ListMine(ctx context.Context, authorID uuid.UUID) ([]*models.Plancha, error)
	// ListLibrary returns approved planchas the viewer may browse.
	ListLibrary(ctx context.Context, viewer policy.Viewer) ([]*models.Plancha, error)
	// ListPending returns planchas awaiting review, oldest first.
	ListPending(ctx context.Context, actor policy.Viewer) ([]*models.Plancha, error)
	// Review stamps the decision and notifies the author. A plancha can be
	// reviewed exactly once.
	Review(ctx context.Context, actor policy.Viewer, planchaID, reviewerID uuid.UUID, approve bool) error
}

type planchaService struct {
	db               *database.DB
	planchaRepo      repositories.PlanchaRepository
	notificationRepo repositories.NotificationRepository
	logger           *zap.Logger
}

// NewPlanchaService creates a new plancha service with dependencies.
func NewPlanchaService(
	db *database.DB,
	planchaRepo repositories.PlanchaRepository,
	notificationRepo repositories.NotificationRepository,
	logger *zap.Logger,
) PlanchaService {
	return &planchaService{
		db:               db,
		planchaRepo:      planchaRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Submit files a new plancha under the author's member ID.
func (s *planchaService) Submit(ctx context.Context, viewer policy.Viewer, authorID uuid.UUID, plancha *models.Plancha) error {
	if !models.IsValidCategory(string(plancha.Category)) {
		return apperrors.ErrInvalidCategory
	}
	if !policy.CanViewCategory(viewer, plancha.Category) {
		return apperrors.ErrPermissionDenied
	}

	plancha.AuthorID = authorID
	if err := s.planchaRepo.Create(ctx, plancha); err != nil {
		return err
	}

	s.logger.Info("Plancha submitted",
		zap.String("plancha_id", plancha.ID.String()),
		zap.String("category", string(plancha.Category)))

	return nil
}

// ListMine returns the author's own planchas.
func (s *planchaService) ListMine(ctx context.Context, authorID uuid.UUID) ([]*models.Plancha, error) {
	return s.planchaRepo.ListByAuthor(ctx, authorID)
}

// ListLibrary returns approved planchas the viewer may browse.
func (s *planchaService) ListLibrary(ctx context.Context, viewer policy.Viewer) ([]*models.Plancha, error) {
	return s.planchaRepo.ListApprovedByCategories(ctx, policy.AllowedCategories(viewer))
}

// ListPending returns planchas awaiting review.
func (s *planchaService) ListPending(ctx context.Context, actor policy.Viewer) ([]*models.Plancha, error) {
	if !actor.IsElevated() {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.planchaRepo.ListPending(ctx)
}

// Review stamps the decision and notifies the author.
func (s *planchaService) Review(ctx context.Context, actor policy.Viewer, planchaID, reviewerID uuid.UUID, approve bool) error {
	if !actor.IsElevated() {
		return apperrors.ErrPermissionDenied
	}

	plancha, err := s.planchaRepo.GetByID(ctx, planchaID)
	if err != nil {
		return err
	}

	status := models.ReviewRejected
	title := "Plancha rechazada"
	body := "Tu plancha \"" + plancha.Title + "\" fue rechazada."
	if approve {
		status = models.ReviewApproved
		title = "Plancha aprobada"
		body = "Tu plancha \"" + plancha.Title + "\" fue aprobada y publicada en la biblioteca."
	}

	err = s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.planchaRepo.SetReview(txCtx, planchaID, status, reviewerID); err != nil {
			return err
		}
		return s.notificationRepo.Create(txCtx, &models.Notification{
			MemberID: plancha.AuthorID,
			Title:    title,
			Body:     body,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Plancha reviewed",
		zap.String("plancha_id", planchaID.String()),
		zap.String("status", string(status)))

	return nil
}

// Ensure planchaService implements PlanchaService at compile time.
var _ PlanchaService = (*planchaService)(nil)
