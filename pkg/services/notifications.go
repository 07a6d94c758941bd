package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/repositories"
)

// NotificationService exposes a member's in-app inbox.
type NotificationService interface {
	List(ctx context.Context, memberID uuid.UUID, unreadOnly bool) ([]*models.Notification, error)
	// MarkRead marks one notification read. The member ID must match the
	// notification's owner.
	MarkRead(ctx context.Context, id, memberID uuid.UUID) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notificationRepo repositories.NotificationRepository, logger *zap.Logger) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, logger: logger}
}

func (s *notificationService) List(ctx context.Context, memberID uuid.UUID, unreadOnly bool) ([]*models.Notification, error) {
	return s.notificationRepo.ListForMember(ctx, memberID, unreadOnly)
}

func (s *notificationService) MarkRead(ctx context.Context, id, memberID uuid.UUID) error {
	return s.notificationRepo.MarkRead(ctx, id, memberID)
}

// Ensure notificationService implements NotificationService at compile time.
var _ NotificationService = (*notificationService)(nil)
