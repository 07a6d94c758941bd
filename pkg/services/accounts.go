package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/policy"
	"github.com/gran-oriente/logia-engine/pkg/repositories"
)

// RegistrationInput contains the data submitted by an aspiring member.
type RegistrationInput struct {
	FirstName  string
	LastName   string
	NationalID string
	Email      string
	Phone      string
	Address    string
	Profession string
	Password   string
}

// AccountService implements the registration approval workflow. Pending
// accounts (active=false) either become active, are rejected (account and
// member rows deleted), or are deactivated later (account deleted, member
// kept non-current). Every transition that touches both the account and
// the member row runs in a single transaction.
type AccountService interface {
	// Register creates an inactive member and account pair awaiting
	// approval.
	Register(ctx context.Context, input RegistrationInput) (*models.Account, error)
	ListPending(ctx context.Context, actor policy.Viewer) ([]*models.Account, error)
	// Approve activates the account with the assigned role and rank and
	// mirrors the rank onto the member. Re-approving overwrites the grant
	// without error.
	Approve(ctx context.Context, actor policy.Viewer, accountID uuid.UUID, role models.Role, rank models.Rank) error
	// Reject deletes the account and its linked member. Irreversible.
	Reject(ctx context.Context, actor policy.Viewer, accountID uuid.UUID) error
	// EditAccount updates role, rank and active, mirroring rank and active
	// onto the member.
	EditAccount(ctx context.Context, actor policy.Viewer, accountID uuid.UUID, role models.Role, rank models.Rank, active bool) error
	// ToggleStatus flips account.active and mirrors member.current.
	ToggleStatus(ctx context.Context, actor policy.Viewer, accountID uuid.UUID) error
	// ChangeRank updates a member's rank and keeps any linked account rank
	// in sync.
	ChangeRank(ctx context.Context, actor policy.Viewer, memberID uuid.UUID, rank models.Rank) error
	// RemoveAdmin deletes an account while keeping the member on the books
	// as non-current. Superadmin only.
	RemoveAdmin(ctx context.Context, actor policy.Viewer, accountID uuid.UUID) error
}

type accountService struct {
	db               *database.DB
	accountRepo      repositories.AccountRepository
	memberRepo       repositories.MemberRepository
	notificationRepo repositories.NotificationRepository
	logger           *zap.Logger
}

// NewAccountService creates a new account service with dependencies.
func NewAccountService(
	db *database.DB,
	accountRepo repositories.AccountRepository,
	memberRepo repositories.MemberRepository,
	notificationRepo repositories.NotificationRepository,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		db:               db,
		accountRepo:      accountRepo,
		memberRepo:       memberRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Register creates an inactive member and account pair awaiting approval.
func (s *accountService) Register(ctx context.Context, input RegistrationInput) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &models.Member{
		ID:         uuid.New(),
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		NationalID: input.NationalID,
		Email:      input.Email,
		Phone:      input.Phone,
		Address:    input.Address,
		Profession: input.Profession,
		Rank:       models.RankAprendiz,
		Current:    false,
	}

	account := &models.Account{
		ID:           uuid.New(),
		MemberID:     member.ID,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         models.RoleGeneral,
		Rank:         models.RankAprendiz,
		Active:       false,
	}

	err = s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.memberRepo.Create(txCtx, member); err != nil {
			return err
		}
		return s.accountRepo.Create(txCtx, account)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Registration submitted",
		zap.String("account_id", account.ID.String()),
		zap.String("member_id", member.ID.String()))

	return account, nil
}

// ListPending retrieves accounts awaiting approval.
func (s *accountService) ListPending(ctx context.Context, actor policy.Viewer) ([]*models.Account, error) {
	if !actor.Role.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.accountRepo.ListPending(ctx)
}

// Approve activates the account with the assigned role and rank.
func (s *accountService) Approve(ctx context.Context, actor policy.Viewer, accountID uuid.UUID, role models.Role, rank models.Rank) error {
	if !models.IsValidRole(string(role)) {
		return apperrors.ErrInvalidRole
	}
	if !models.IsValidRank(string(rank)) {
		return apperrors.ErrInvalidRank
	}
	if !policy.CanAssignRole(actor, role) {
		return apperrors.ErrPermissionDenied
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.accountRepo.UpdateGrant(txCtx, accountID, role, rank, true); err != nil {
			return err
		}
		if err := s.memberRepo.UpdateRank(txCtx, account.MemberID, rank); err != nil {
			return err
		}
		if err := s.memberRepo.SetCurrent(txCtx, account.MemberID, true); err != nil {
			return err
		}
		return s.notificationRepo.Create(txCtx, &models.Notification{
			MemberID: account.MemberID,
			Title:    "Solicitud aprobada",
			Body:     "Tu registro ha sido aprobado. Ya puedes ingresar a la aplicacion.",
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("Account approved",
		zap.String("account_id", accountID.String()),
		zap.String("role", string(role)),
		zap.String("rank", string(rank)))

	return nil
}

// Reject deletes the account and its linked member.
func (s *accountService) Reject(ctx context.Context, actor policy.Viewer, accountID uuid.UUID) error {
	if !actor.Role.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.accountRepo.Delete(txCtx, accountID); err != nil {
			return err
		}
		return s.memberRepo.Delete(txCtx, account.MemberID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Account rejected", zap.String("account_id", accountID.String()))
	return nil
}

// guardLastSuperadmin refuses transitions that would leave the lodge with
// no active superadmin. No-op unless the target is an active superadmin.
func (s *accountService) guardLastSuperadmin(ctx context.Context, target *models.Account) error {
	if target.Role != models.RoleSuperadmin || !target.Active {
		return nil
	}
	count, err := s.accountRepo.CountActiveByRole(ctx, models.RoleSuperadmin)
	if err != nil {
		return err
	}
	if count <= 1 {
		return apperrors.ErrLastSuperadmin
	}
	return nil
}

// EditAccount updates role, rank and active on an existing account.
func (s *accountService) EditAccount(ctx context.Context, actor policy.Viewer, accountID uuid.UUID, role models.Role, rank models.Rank, active bool) error {
	if !models.IsValidRole(string(role)) {
		return apperrors.ErrInvalidRole
	}
	if !models.IsValidRank(string(rank)) {
		return apperrors.ErrInvalidRank
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !policy.CanEditAccount(actor, account.Role) {
		return apperrors.ErrPermissionDenied
	}
	if !policy.CanAssignRole(actor, role) {
		return apperrors.ErrPermissionDenied
	}

	if role != models.RoleSuperadmin || !active {
		if err := s.guardLastSuperadmin(ctx, account); err != nil {
			return err
		}
	}

	return s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.accountRepo.UpdateGrant(txCtx, accountID, role, rank, active); err != nil {
			return err
		}
		if err := s.memberRepo.UpdateRank(txCtx, account.MemberID, rank); err != nil {
			return err
		}
		return s.memberRepo.SetCurrent(txCtx, account.MemberID, active)
	})
}

// ToggleStatus flips account.active and mirrors member.current.
func (s *accountService) ToggleStatus(ctx context.Context, actor policy.Viewer, accountID uuid.UUID) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if !policy.CanEditAccount(actor, account.Role) {
		return apperrors.ErrPermissionDenied
	}

	if account.Active {
		if err := s.guardLastSuperadmin(ctx, account); err != nil {
			return err
		}
	}

	newActive := !account.Active
	return s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.accountRepo.SetActive(txCtx, accountID, newActive); err != nil {
			return err
		}
		return s.memberRepo.SetCurrent(txCtx, account.MemberID, newActive)
	})
}

// ChangeRank updates a member's rank and any linked account's mirror.
func (s *accountService) ChangeRank(ctx context.Context, actor policy.Viewer, memberID uuid.UUID, rank models.Rank) error {
	if !models.IsValidRank(string(rank)) {
		return apperrors.ErrInvalidRank
	}

	account, err := s.accountRepo.GetByMemberID(ctx, memberID)
	switch {
	case err == nil:
		if !policy.CanEditAccount(actor, account.Role) {
			return apperrors.ErrPermissionDenied
		}
	case errors.Is(err, apperrors.ErrNotFound):
		// Members without an account exist (historical records). Rank
		// changes still require an administrator.
		if !actor.Role.IsAdmin() {
			return apperrors.ErrPermissionDenied
		}
		account = nil
	default:
		return err
	}

	return s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.memberRepo.UpdateRank(txCtx, memberID, rank); err != nil {
			return err
		}
		if account == nil {
			return nil
		}
		return s.accountRepo.UpdateRank(txCtx, account.ID, rank)
	})
}

// RemoveAdmin deletes an account while keeping the member non-current.
func (s *accountService) RemoveAdmin(ctx context.Context, actor policy.Viewer, accountID uuid.UUID) error {
	if actor.Role != models.RoleSuperadmin {
		return apperrors.ErrPermissionDenied
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.guardLastSuperadmin(ctx, account); err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.accountRepo.Delete(txCtx, accountID); err != nil {
			return err
		}
		return s.memberRepo.SetCurrent(txCtx, account.MemberID, false)
	})
}

// Ensure accountService implements AccountService at compile time.
var _ AccountService = (*accountService)(nil)
