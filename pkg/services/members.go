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

// MemberService exposes the member directory. Reads are redacted per viewer;
// writes are restricted to administrators.
type MemberService interface {
	// List returns directory entries shaped for the viewer, optionally
	// filtered by rank.
	List(ctx context.Context, viewer policy.Viewer, rank *models.Rank, onlyCurrent bool) ([]policy.MemberView, error)
	// Get returns one member shaped for the viewer.
	Get(ctx context.Context, viewer policy.Viewer, id uuid.UUID) (policy.MemberView, error)
	// Update persists every mutable field of a member record.
	Update(ctx context.Context, actor policy.Viewer, member *models.Member) error
	// Deactivate marks the member non-current without removing history.
	Deactivate(ctx context.Context, actor policy.Viewer, id uuid.UUID) error
	// Delete removes the member row permanently. Superadmin only.
	Delete(ctx context.Context, actor policy.Viewer, id uuid.UUID) error
}

type memberService struct {
	memberRepo repositories.MemberRepository
	logger     *zap.Logger
}

// NewMemberService creates a new member service with dependencies.
func NewMemberService(memberRepo repositories.MemberRepository, logger *zap.Logger) MemberService {
	return &memberService{memberRepo: memberRepo, logger: logger}
}

// List returns directory entries shaped for the viewer.
func (s *memberService) List(ctx context.Context, viewer policy.Viewer, rank *models.Rank, onlyCurrent bool) ([]policy.MemberView, error) {
	if rank != nil && !models.IsValidRank(string(*rank)) {
		return nil, apperrors.ErrInvalidRank
	}

	members, err := s.memberRepo.List(ctx, rank, onlyCurrent)
	if err != nil {
		return nil, err
	}

	views := make([]policy.MemberView, 0, len(members))
	for _, member := range members {
		views = append(views, policy.RedactMember(viewer, member))
	}

	return views, nil
}

// Get returns one member shaped for the viewer.
func (s *memberService) Get(ctx context.Context, viewer policy.Viewer, id uuid.UUID) (policy.MemberView, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return policy.MemberView{}, err
	}
	return policy.RedactMember(viewer, member), nil
}

// Update persists every mutable field of a member record.
func (s *memberService) Update(ctx context.Context, actor policy.Viewer, member *models.Member) error {
	if !actor.Role.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}
	if !models.IsValidRank(string(member.Rank)) {
		return apperrors.ErrInvalidRank
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return err
	}

	s.logger.Info("Member updated", zap.String("member_id", member.ID.String()))
	return nil
}

// Deactivate marks the member non-current.
func (s *memberService) Deactivate(ctx context.Context, actor policy.Viewer, id uuid.UUID) error {
	if !actor.Role.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}
	return s.memberRepo.SetCurrent(ctx, id, false)
}

// Delete removes the member row permanently.
func (s *memberService) Delete(ctx context.Context, actor policy.Viewer, id uuid.UUID) error {
	if actor.Role != models.RoleSuperadmin {
		return apperrors.ErrPermissionDenied
	}

	if err := s.memberRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Member deleted", zap.String("member_id", id.String()))
	return nil
}

// Ensure memberService implements MemberService at compile time.
var _ MemberService = (*memberService)(nil)
