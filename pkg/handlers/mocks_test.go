package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/auth"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/policy"
	"github.com/gran-oriente/logia-engine/pkg/services"
)

// Handler tests exercise the full middleware chain with real tokens and
// function-field service mocks.

var testTokens = auth.NewTokenService("handler-test-secret", time.Hour)

func authedRequest(t *testing.T, method, target string, body io.Reader, role models.Role, rank models.Rank) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testToken(t, role, rank))
	return req
}

func testToken(t *testing.T, role models.Role, rank models.Rank) string {
	t.Helper()
	member := &models.Member{ID: uuid.New(), Rank: rank}
	account := &models.Account{ID: uuid.New(), MemberID: member.ID, Role: role, Rank: rank}
	token, err := testTokens.Issue(account, member)
	if err != nil {
		t.Fatalf("failed to issue test token: %v", err)
	}
	return token
}

func testMiddleware() *auth.Middleware {
	return auth.NewMiddleware(testTokens, zap.NewNop())
}

// mockMemberService implements services.MemberService.
type mockMemberService struct {
	listFn func(viewer policy.Viewer, rank *models.Rank, onlyCurrent bool) ([]policy.MemberView, error)
	getFn  func(viewer policy.Viewer, id uuid.UUID) (policy.MemberView, error)
}

func (m *mockMemberService) List(_ context.Context, viewer policy.Viewer, rank *models.Rank, onlyCurrent bool) ([]policy.MemberView, error) {
	return m.listFn(viewer, rank, onlyCurrent)
}

func (m *mockMemberService) Get(_ context.Context, viewer policy.Viewer, id uuid.UUID) (policy.MemberView, error) {
	return m.getFn(viewer, id)
}

func (m *mockMemberService) Update(context.Context, policy.Viewer, *models.Member) error { return nil }
func (m *mockMemberService) Deactivate(context.Context, policy.Viewer, uuid.UUID) error  { return nil }
func (m *mockMemberService) Delete(context.Context, policy.Viewer, uuid.UUID) error      { return nil }

// mockAccountService implements services.AccountService.
type mockAccountService struct {
	approveFn     func(actor policy.Viewer, id uuid.UUID, role models.Role, rank models.Rank) error
	listPendingFn func(actor policy.Viewer) ([]*models.Account, error)
	registerFn    func(input services.RegistrationInput) (*models.Account, error)
}

func (m *mockAccountService) Register(_ context.Context, input services.RegistrationInput) (*models.Account, error) {
	return m.registerFn(input)
}

func (m *mockAccountService) ListPending(_ context.Context, actor policy.Viewer) ([]*models.Account, error) {
	return m.listPendingFn(actor)
}

func (m *mockAccountService) Approve(_ context.Context, actor policy.Viewer, id uuid.UUID, role models.Role, rank models.Rank) error {
	return m.approveFn(actor, id, role, rank)
}

func (m *mockAccountService) Reject(context.Context, policy.Viewer, uuid.UUID) error { return nil }
func (m *mockAccountService) EditAccount(context.Context, policy.Viewer, uuid.UUID, models.Role, models.Rank, bool) error {
	return nil
}
func (m *mockAccountService) ToggleStatus(context.Context, policy.Viewer, uuid.UUID) error {
	return nil
}
func (m *mockAccountService) ChangeRank(context.Context, policy.Viewer, uuid.UUID, models.Rank) error {
	return nil
}
func (m *mockAccountService) RemoveAdmin(context.Context, policy.Viewer, uuid.UUID) error {
	return nil
}

// mockAuthService implements services.AuthService.
type mockAuthService struct {
	loginFn func(email, password string) (*models.Account, *models.Member, error)
}

func (m *mockAuthService) Login(_ context.Context, email, password string) (*models.Account, *models.Member, error) {
	return m.loginFn(email, password)
}

func (m *mockAuthService) ChangePassword(context.Context, uuid.UUID, string, string) error {
	return nil
}
