//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/crypto"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/testhelpers"
)

// repoTestContext holds shared dependencies for repository integration tests.
type repoTestContext struct {
	t              *testing.T
	testDB         *testhelpers.TestDB
	memberRepo     MemberRepository
	accountRepo    AccountRepository
	eventRepo      EventRepository
	attendanceRepo AttendanceRepository
}

func setupRepoTest(t *testing.T) *repoTestContext {
	testDB := testhelpers.GetTestDB(t)

	encryptor, err := crypto.NewFieldEncryptor("integration-test-key")
	require.NoError(t, err)

	return &repoTestContext{
		t:              t,
		testDB:         testDB,
		memberRepo:     NewMemberRepository(testDB.DB, encryptor),
		accountRepo:    NewAccountRepository(testDB.DB),
		eventRepo:      NewEventRepository(testDB.DB),
		attendanceRepo: NewAttendanceRepository(testDB.DB),
	}
}

func (tc *repoTestContext) createMember(ctx context.Context, lastName string) *models.Member {
	tc.t.Helper()
	member := &models.Member{
		ID:         uuid.New(),
		FirstName:  "Test",
		LastName:   lastName,
		NationalID: "12.345.678-9",
		Rank:       models.RankAprendiz,
		Current:    true,
	}
	require.NoError(tc.t, tc.memberRepo.Create(ctx, member))
	return member
}

func TestMemberRoundTripEncryptsNationalID(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	member := tc.createMember(ctx, "Cifrado")

	got, err := tc.memberRepo.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.345.678-9", got.NationalID)

	// The stored column must not contain the plaintext.
	var stored string
	err = tc.testDB.DB.QueryRow(ctx,
		"SELECT national_id FROM members WHERE id = $1", member.ID).Scan(&stored)
	require.NoError(t, err)
	assert.NotEqual(t, "12.345.678-9", stored)
	assert.NotContains(t, stored, "12.345.678")
}

func TestMemberListFiltersRankAndCurrent(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	current := tc.createMember(ctx, "Activo")
	former := tc.createMember(ctx, "Retirado")
	require.NoError(t, tc.memberRepo.SetCurrent(ctx, former.ID, false))

	members, err := tc.memberRepo.List(ctx, nil, true)
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		ids[m.ID] = true
	}
	assert.True(t, ids[current.ID], "current member missing from listing")
	assert.False(t, ids[former.ID], "former member leaked into current listing")

	rank := models.RankMaestro
	masters, err := tc.memberRepo.List(ctx, &rank, true)
	require.NoError(t, err)
	for _, m := range masters {
		assert.Equal(t, models.RankMaestro, m.Rank)
	}
}

func TestAccountEmailUnique(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	first := tc.createMember(ctx, "Primero")
	second := tc.createMember(ctx, "Segundo")

	email := "duplicado-" + uuid.NewString() + "@example.com"
	err := tc.accountRepo.Create(ctx, &models.Account{
		ID: uuid.New(), MemberID: first.ID, Email: email,
		PasswordHash: "x", Role: models.RoleGeneral, Rank: models.RankAprendiz,
	})
	require.NoError(t, err)

	err = tc.accountRepo.Create(ctx, &models.Account{
		ID: uuid.New(), MemberID: second.ID, Email: email,
		PasswordHash: "x", Role: models.RoleGeneral, Rank: models.RankAprendiz,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAccountApprovalLifecycle(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	member := tc.createMember(ctx, "Pendiente")
	account := &models.Account{
		ID: uuid.New(), MemberID: member.ID,
		Email:        "pendiente-" + uuid.NewString() + "@example.com",
		PasswordHash: "x", Role: models.RoleGeneral, Rank: models.RankAprendiz,
		Active: false,
	}
	require.NoError(t, tc.accountRepo.Create(ctx, account))

	pending, err := tc.accountRepo.ListPending(ctx)
	require.NoError(t, err)
	found := false
	for _, a := range pending {
		if a.ID == account.ID {
			found = true
		}
	}
	assert.True(t, found, "new account missing from pending list")

	require.NoError(t, tc.accountRepo.UpdateGrant(ctx, account.ID, models.RoleAdmin, models.RankCompanero, true))

	got, err := tc.accountRepo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, models.RankCompanero, got.Rank)
	assert.True(t, got.Active)
}

func TestAttendanceUpsertAndBulkMark(t *testing.T) {
	tc := setupRepoTest(t)
	ctx := context.Background()

	member := tc.createMember(ctx, "Asistente")
	event := &models.Event{
		ID: uuid.New(), Title: "Tenida ordinaria",
		Kind: models.EventTenida, Date: time.Now(),
	}
	require.NoError(t, tc.eventRepo.Create(ctx, event))

	// Seed unrecorded, then mark a justified absence over it.
	require.NoError(t, tc.attendanceRepo.SetOutcome(ctx, event.ID, member.ID, nil, nil))

	absent := false
	reason := "viaje de trabajo"
	require.NoError(t, tc.attendanceRepo.SetOutcome(ctx, event.ID, member.ID, &absent, &reason))

	record, err := tc.attendanceRepo.GetByEventAndMember(ctx, event.ID, member.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.NotNil(t, record.Attended)
	assert.False(t, *record.Attended)
	require.NotNil(t, record.Justification)
	assert.Equal(t, "viaje de trabajo", *record.Justification)

	// Bulk present clears the justification.
	require.NoError(t, tc.attendanceRepo.MarkAllForEvent(ctx, event.ID, true))

	record, err = tc.attendanceRepo.GetByEventAndMember(ctx, event.ID, member.ID)
	require.NoError(t, err)
	require.NotNil(t, record.Attended)
	assert.True(t, *record.Attended)
	assert.Nil(t, record.Justification)
}
