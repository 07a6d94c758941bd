package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
)

// stubQuerier satisfies database.Querier without a live connection. Placing
// it in the context makes DB.WithTx join the scope instead of opening a real
// transaction, so transactional services run against mock repositories.
type stubQuerier struct{}

func (stubQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (stubQuerier) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }

func testContext() context.Context {
	return database.SetQuerier(context.Background(), stubQuerier{})
}

// mockMemberRepo is a configurable mock member repository.
type mockMemberRepo struct {
	members       map[uuid.UUID]*models.Member
	listFn        func(rank *models.Rank, onlyCurrent bool) ([]*models.Member, error)
	createErr     error
	updateErr     error
	deletedIDs    []uuid.UUID
	rankUpdates   map[uuid.UUID]models.Rank
	currentStates map[uuid.UUID]bool
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{
		members:       make(map[uuid.UUID]*models.Member),
		rankUpdates:   make(map[uuid.UUID]models.Rank),
		currentStates: make(map[uuid.UUID]bool),
	}
}

func (m *mockMemberRepo) Create(_ context.Context, member *models.Member) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.members[member.ID] = member
	return nil
}

func (m *mockMemberRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Member, error) {
	member, ok := m.members[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return member, nil
}

func (m *mockMemberRepo) List(_ context.Context, rank *models.Rank, onlyCurrent bool) ([]*models.Member, error) {
	if m.listFn != nil {
		return m.listFn(rank, onlyCurrent)
	}
	var out []*models.Member
	for _, member := range m.members {
		if rank != nil && member.Rank != *rank {
			continue
		}
		if onlyCurrent && !member.Current {
			continue
		}
		out = append(out, member)
	}
	return out, nil
}

func (m *mockMemberRepo) Update(_ context.Context, member *models.Member) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.members[member.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.members[member.ID] = member
	return nil
}

func (m *mockMemberRepo) UpdateRank(_ context.Context, id uuid.UUID, rank models.Rank) error {
	member, ok := m.members[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	member.Rank = rank
	m.rankUpdates[id] = rank
	return nil
}

func (m *mockMemberRepo) SetCurrent(_ context.Context, id uuid.UUID, current bool) error {
	member, ok := m.members[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	member.Current = current
	m.currentStates[id] = current
	return nil
}

func (m *mockMemberRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.members[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.members, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

// mockAccountRepo is a configurable mock account repository.
type mockAccountRepo struct {
	accounts   map[uuid.UUID]*models.Account
	deletedIDs []uuid.UUID
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[uuid.UUID]*models.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, account *models.Account) error {
	m.accounts[account.ID] = account
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return account, nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, account := range m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockAccountRepo) GetByMemberID(_ context.Context, memberID uuid.UUID) (*models.Account, error) {
	for _, account := range m.accounts {
		if account.MemberID == memberID {
			return account, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockAccountRepo) ListPending(_ context.Context) ([]*models.Account, error) {
	var out []*models.Account
	for _, account := range m.accounts {
		if !account.Active {
			out = append(out, account)
		}
	}
	return out, nil
}

func (m *mockAccountRepo) UpdateGrant(_ context.Context, id uuid.UUID, role models.Role, rank models.Rank, active bool) error {
	account, ok := m.accounts[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	account.Role = role
	account.Rank = rank
	account.Active = active
	return nil
}

func (m *mockAccountRepo) UpdateRank(_ context.Context, id uuid.UUID, rank models.Rank) error {
	account, ok := m.accounts[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	account.Rank = rank
	return nil
}

func (m *mockAccountRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	account, ok := m.accounts[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

func (m *mockAccountRepo) CountActiveByRole(_ context.Context, role models.Role) (int, error) {
	count := 0
	for _, account := range m.accounts {
		if account.Role == role && account.Active {
			count++
		}
	}
	return count, nil
}

func (m *mockAccountRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	account, ok := m.accounts[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	account.Active = active
	return nil
}

func (m *mockAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.accounts[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.accounts, id)
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

type outcomeKey struct {
	eventID  uuid.UUID
	memberID uuid.UUID
}

// mockAttendanceRepo is a configurable mock attendance repository.
type mockAttendanceRepo struct {
	records     map[outcomeKey]*models.AttendanceRecord
	rangeFn     func(memberID uuid.UUID, from, to time.Time) ([]*models.AttendanceRecord, error)
	markAllWith *bool
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[outcomeKey]*models.AttendanceRecord)}
}

func (m *mockAttendanceRepo) SetOutcome(_ context.Context, eventID, memberID uuid.UUID, attended *bool, justification *string) error {
	m.records[outcomeKey{eventID, memberID}] = &models.AttendanceRecord{
		ID:            uuid.New(),
		EventID:       eventID,
		MemberID:      memberID,
		Attended:      attended,
		Justification: justification,
	}
	return nil
}

func (m *mockAttendanceRepo) GetByEventAndMember(_ context.Context, eventID, memberID uuid.UUID) (*models.AttendanceRecord, error) {
	return m.records[outcomeKey{eventID, memberID}], nil
}

func (m *mockAttendanceRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*models.AttendanceRecord, error) {
	var out []*models.AttendanceRecord
	for key, rec := range m.records {
		if key.eventID == eventID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) ListByMemberRange(_ context.Context, memberID uuid.UUID, from, to time.Time) ([]*models.AttendanceRecord, error) {
	if m.rangeFn != nil {
		return m.rangeFn(memberID, from, to)
	}
	var out []*models.AttendanceRecord
	for key, rec := range m.records {
		if key.memberID == memberID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) MarkAllForEvent(_ context.Context, eventID uuid.UUID, present bool) error {
	m.markAllWith = &present
	for key, rec := range m.records {
		if key.eventID != eventID {
			continue
		}
		attended := present
		rec.Attended = &attended
		if present {
			rec.Justification = nil
		}
	}
	return nil
}

// mockNotificationRepo records created notifications.
type mockNotificationRepo struct {
	created []*models.Notification
	readIDs []uuid.UUID
}

func (m *mockNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepo) ListForMember(_ context.Context, memberID uuid.UUID, unreadOnly bool) ([]*models.Notification, error) {
	var out []*models.Notification
	for _, n := range m.created {
		if n.MemberID != memberID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, memberID uuid.UUID) error {
	for _, n := range m.created {
		if n.ID == id && n.MemberID == memberID {
			n.Read = true
			m.readIDs = append(m.readIDs, id)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// mockPlanchaRepo is a configurable mock plancha repository.
type mockPlanchaRepo struct {
	planchas map[uuid.UUID]*models.Plancha
}

func newMockPlanchaRepo() *mockPlanchaRepo {
	return &mockPlanchaRepo{planchas: make(map[uuid.UUID]*models.Plancha)}
}

func (m *mockPlanchaRepo) Create(_ context.Context, plancha *models.Plancha) error {
	if plancha.ID == uuid.Nil {
		plancha.ID = uuid.New()
	}
	plancha.Status = models.ReviewPending
	m.planchas[plancha.ID] = plancha
	return nil
}

func (m *mockPlanchaRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Plancha, error) {
	plancha, ok := m.planchas[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return plancha, nil
}

func (m *mockPlanchaRepo) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]*models.Plancha, error) {
	var out []*models.Plancha
	for _, p := range m.planchas {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlanchaRepo) ListApprovedByCategories(_ context.Context, categories []models.Category) ([]*models.Plancha, error) {
	allowed := make(map[models.Category]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}
	var out []*models.Plancha
	for _, p := range m.planchas {
		if p.Status == models.ReviewApproved && allowed[p.Category] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlanchaRepo) ListPending(_ context.Context) ([]*models.Plancha, error) {
	var out []*models.Plancha
	for _, p := range m.planchas {
		if p.Status == models.ReviewPending {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPlanchaRepo) SetReview(_ context.Context, id uuid.UUID, status models.ReviewStatus, reviewerID uuid.UUID) error {
	plancha, ok := m.planchas[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if plancha.Status != models.ReviewPending {
		return apperrors.ErrAlreadyReviewed
	}
	now := time.Now()
	plancha.Status = status
	plancha.ReviewedBy = &reviewerID
	plancha.ReviewedAt = &now
	return nil
}

// mockEventRepo is a configurable mock event repository.
type mockEventRepo struct {
	events    map[uuid.UUID]*models.Event
	createErr error
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[uuid.UUID]*models.Event)}
}

func (m *mockEventRepo) Create(_ context.Context, event *models.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return event, nil
}

func (m *mockEventRepo) ListRange(_ context.Context, from, to time.Time) ([]*models.Event, error) {
	var out []*models.Event
	for _, e := range m.events {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

// mockDocumentRepo is a configurable mock document repository.
type mockDocumentRepo struct {
	documents map[uuid.UUID]*models.Document
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{documents: make(map[uuid.UUID]*models.Document)}
}

func (m *mockDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	m.documents[doc.ID] = doc
	return nil
}

func (m *mockDocumentRepo) ListByCategories(_ context.Context, categories []models.Category) ([]*models.Document, error) {
	allowed := make(map[models.Category]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}
	var out []*models.Document
	for _, doc := range m.documents {
		if allowed[doc.Category] {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *mockDocumentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.documents[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.documents, id)
	return nil
}
