package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/repositories"
)

// AuthService verifies credentials. Token minting lives in pkg/auth; this
// service only decides whether a login attempt is valid.
type AuthService interface {
	// Login verifies the password and the active flag, returning the account
	// and its linked member. Unknown emails and bad passwords return the same
	// error so the response does not leak which emails exist.
	Login(ctx context.Context, email, password string) (*models.Account, *models.Member, error)
	// ChangePassword verifies the current password before storing a new hash.
	ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error
}

type authService struct {
	accountRepo repositories.AccountRepository
	memberRepo  repositories.MemberRepository
	logger      *zap.Logger
}

// NewAuthService creates a new auth service with dependencies.
func NewAuthService(
	accountRepo repositories.AccountRepository,
	memberRepo repositories.MemberRepository,
	logger *zap.Logger,
) AuthService {
	return &authService{
		accountRepo: accountRepo,
		memberRepo:  memberRepo,
		logger:      logger,
	}
}

// Login verifies the password and the active flag.
func (s *authService) Login(ctx context.Context, email, password string) (*models.Account, *models.Member, error) {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Failed login attempt", zap.String("account_id", account.ID.String()))
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if !account.Active {
		return nil, nil, apperrors.ErrAccountInactive
	}

	member, err := s.memberRepo.GetByID(ctx, account.MemberID)
	if err != nil {
		return nil, nil, err
	}

	return account, member, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *authService) ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(current)); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accountRepo.UpdatePassword(ctx, accountID, string(hash)); err != nil {
		return err
	}

	s.logger.Info("Password changed", zap.String("account_id", accountID.String()))
	return nil
}

// Ensure authService implements AuthService at compile time.
var _ AuthService = (*authService)(nil)
