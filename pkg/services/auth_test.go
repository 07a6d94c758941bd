package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/models"
)

func seedLoginAccount(t *testing.T, accountRepo *mockAccountRepo, memberRepo *mockMemberRepo, password string, active bool) *models.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	memberID := uuid.New()
	memberRepo.members[memberID] = &models.Member{
		ID: memberID, FirstName: "Valentin", LastName: "Letelier",
		Rank: models.RankMaestro, Current: active,
	}
	account := &models.Account{
		ID:           uuid.New(),
		MemberID:     memberID,
		Email:        "valentin@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleGeneral,
		Rank:         models.RankMaestro,
		Active:       active,
	}
	accountRepo.accounts[account.ID] = account
	return account
}

func TestLogin(t *testing.T) {
	accountRepo := newMockAccountRepo()
	memberRepo := newMockMemberRepo()
	svc := NewAuthService(accountRepo, memberRepo, zap.NewNop())

	seedLoginAccount(t, accountRepo, memberRepo, "correcta123", true)

	account, member, err := svc.Login(testContext(), "valentin@example.com", "correcta123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if account.Email != "valentin@example.com" {
		t.Errorf("unexpected account %s", account.Email)
	}
	if member == nil || member.ID != account.MemberID {
		t.Error("linked member not returned")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	accountRepo := newMockAccountRepo()
	memberRepo := newMockMemberRepo()
	svc := NewAuthService(accountRepo, memberRepo, zap.NewNop())

	seedLoginAccount(t, accountRepo, memberRepo, "correcta123", true)

	// Unknown email and wrong password must be indistinguishable.
	_, _, err := svc.Login(testContext(), "nadie@example.com", "correcta123")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}

	_, _, err = svc.Login(testContext(), "valentin@example.com", "incorrecta")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	accountRepo := newMockAccountRepo()
	memberRepo := newMockMemberRepo()
	svc := NewAuthService(accountRepo, memberRepo, zap.NewNop())

	seedLoginAccount(t, accountRepo, memberRepo, "correcta123", false)

	_, _, err := svc.Login(testContext(), "valentin@example.com", "correcta123")
	if !errors.Is(err, apperrors.ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	accountRepo := newMockAccountRepo()
	memberRepo := newMockMemberRepo()
	svc := NewAuthService(accountRepo, memberRepo, zap.NewNop())

	account := seedLoginAccount(t, accountRepo, memberRepo, "antigua123", true)

	err := svc.ChangePassword(testContext(), account.ID, "equivocada", "nueva456")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.ChangePassword(testContext(), account.ID, "antigua123", "nueva456"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("nueva456")); err != nil {
		t.Error("new password hash not stored")
	}
}
