package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/models"
	"github.com/gran-oriente/logia-engine/pkg/policy"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func record(attended *bool, justification *string) *models.AttendanceRecord {
	return &models.AttendanceRecord{
		ID:            uuid.New(),
		EventID:       uuid.New(),
		MemberID:      uuid.New(),
		Attended:      attended,
		Justification: justification,
	}
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name    string
		records []*models.AttendanceRecord
		want    Stats
	}{
		{
			name:    "no records",
			records: nil,
			want:    Stats{},
		},
		{
			name: "all unrecorded",
			records: []*models.AttendanceRecord{
				record(nil, nil),
				record(nil, nil),
			},
			want: Stats{Total: 2},
		},
		{
			name: "full attendance",
			records: []*models.AttendanceRecord{
				record(boolPtr(true), nil),
				record(boolPtr(true), nil),
			},
			want: Stats{Total: 2, Registered: 2, Attended: 2, Rate: 100},
		},
		{
			name: "mixed outcomes",
			records: []*models.AttendanceRecord{
				record(boolPtr(true), nil),
				record(boolPtr(false), strPtr("viaje de trabajo")),
				record(boolPtr(false), nil),
				record(nil, nil),
			},
			want: Stats{Total: 4, Registered: 3, Attended: 1, Excused: 1, Unexcused: 1, Rate: 100.0 / 3.0},
		},
		{
			name: "all absent",
			records: []*models.AttendanceRecord{
				record(boolPtr(false), nil),
				record(boolPtr(false), strPtr("enfermedad")),
			},
			want: Stats{Total: 2, Registered: 2, Excused: 1, Unexcused: 1, Rate: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.records)
			if got != tt.want {
				t.Errorf("ComputeStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeStatsZeroRegisteredRate(t *testing.T) {
	// Unrecorded outcomes must never divide by zero.
	got := ComputeStats([]*models.AttendanceRecord{record(nil, nil)})
	if got.Rate != 0 {
		t.Errorf("Rate = %v, want 0", got.Rate)
	}
}

func TestSetAttendedPresentClearsJustification(t *testing.T) {
	attendanceRepo := newMockAttendanceRepo()
	svc := NewAttendanceService(attendanceRepo, newMockMemberRepo(), zap.NewNop())

	eventID := uuid.New()
	memberID := uuid.New()
	ctx := testContext()

	if err := svc.SetJustification(ctx, eventID, memberID, "licencia medica"); err != nil {
		t.Fatalf("SetJustification() error = %v", err)
	}
	if err := svc.SetAttended(ctx, eventID, memberID, true); err != nil {
		t.Fatalf("SetAttended() error = %v", err)
	}

	rec := attendanceRepo.records[outcomeKey{eventID, memberID}]
	if rec.Attended == nil || !*rec.Attended {
		t.Error("expected record marked present")
	}
	if rec.Justification != nil {
		t.Errorf("expected justification cleared, got %q", *rec.Justification)
	}
}

func TestSetAttendedAbsentPreservesJustification(t *testing.T) {
	attendanceRepo := newMockAttendanceRepo()
	svc := NewAttendanceService(attendanceRepo, newMockMemberRepo(), zap.NewNop())

	eventID := uuid.New()
	memberID := uuid.New()
	ctx := testContext()

	if err := svc.SetJustification(ctx, eventID, memberID, "licencia medica"); err != nil {
		t.Fatalf("SetJustification() error = %v", err)
	}
	if err := svc.SetAttended(ctx, eventID, memberID, false); err != nil {
		t.Fatalf("SetAttended() error = %v", err)
	}

	rec := attendanceRepo.records[outcomeKey{eventID, memberID}]
	if rec.Attended == nil || *rec.Attended {
		t.Error("expected record marked absent")
	}
	if rec.Justification == nil || *rec.Justification != "licencia medica" {
		t.Error("expected justification preserved on absent mark")
	}
}

func TestSetJustificationForcesAbsent(t *testing.T) {
	attendanceRepo := newMockAttendanceRepo()
	svc := NewAttendanceService(attendanceRepo, newMockMemberRepo(), zap.NewNop())

	eventID := uuid.New()
	memberID := uuid.New()
	ctx := testContext()

	if err := svc.SetAttended(ctx, eventID, memberID, true); err != nil {
		t.Fatalf("SetAttended() error = %v", err)
	}
	if err := svc.SetJustification(ctx, eventID, memberID, "deber familiar"); err != nil {
		t.Fatalf("SetJustification() error = %v", err)
	}

	rec := attendanceRepo.records[outcomeKey{eventID, memberID}]
	if rec.Attended == nil || *rec.Attended {
		t.Error("justification must force the record to absent")
	}
	if rec.Justification == nil || *rec.Justification != "deber familiar" {
		t.Error("expected justification stored")
	}
}

func TestSetJustificationNormalizesWhitespace(t *testing.T) {
	attendanceRepo := newMockAttendanceRepo()
	svc := NewAttendanceService(attendanceRepo, newMockMemberRepo(), zap.NewNop())

	eventID := uuid.New()
	memberID := uuid.New()

	if err := svc.SetJustification(testContext(), eventID, memberID, "   \t "); err != nil {
		t.Fatalf("SetJustification() error = %v", err)
	}

	rec := attendanceRepo.records[outcomeKey{eventID, memberID}]
	if rec.Justification != nil {
		t.Errorf("whitespace-only justification should store nil, got %q", *rec.Justification)
	}
	if rec.Attended == nil || *rec.Attended {
		t.Error("expected record marked absent")
	}
}

func TestMarkAllPresentClearsJustifications(t *testing.T) {
	attendanceRepo := newMockAttendanceRepo()
	svc := NewAttendanceService(attendanceRepo, newMockMemberRepo(), zap.NewNop())

	eventID := uuid.New()
	memberID := uuid.New()
	ctx := testContext()

	if err := svc.SetJustification(ctx, eventID, memberID, "excusa previa"); err != nil {
		t.Fatalf("SetJustification() error = %v", err)
	}
	if err := svc.MarkAll(ctx, eventID, true); err != nil {
		t.Fatalf("MarkAll() error = %v", err)
	}

	rec := attendanceRepo.records[outcomeKey{eventID, memberID}]
	if rec.Attended == nil || !*rec.Attended {
		t.Error("expected record marked present")
	}
	if rec.Justification != nil {
		t.Error("bulk present mark must clear justifications")
	}
}

func TestReportByRankRequiresElevatedViewer(t *testing.T) {
	svc := NewAttendanceService(newMockAttendanceRepo(), newMockMemberRepo(), zap.NewNop())

	viewer := policy.Viewer{Role: models.RoleGeneral, Rank: models.RankMaestro}
	_, err := svc.ReportByRank(testContext(), viewer, models.RankAprendiz, time.Now().AddDate(0, -1, 0), time.Now())
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestReportByRankRejectsInvalidRank(t *testing.T) {
	svc := NewAttendanceService(newMockAttendanceRepo(), newMockMemberRepo(), zap.NewNop())

	viewer := policy.Viewer{Role: models.RoleAdmin}
	_, err := svc.ReportByRank(testContext(), viewer, models.Rank("gran maestre"), time.Now().AddDate(0, -1, 0), time.Now())
	if !errors.Is(err, apperrors.ErrInvalidRank) {
		t.Errorf("expected ErrInvalidRank, got %v", err)
	}
}

func TestReportByRankComputesPerMember(t *testing.T) {
	memberRepo := newMockMemberRepo()
	attendanceRepo := newMockAttendanceRepo()
	svc := NewAttendanceService(attendanceRepo, memberRepo, zap.NewNop())

	present := uuid.New()
	absent := uuid.New()
	memberRepo.members[present] = &models.Member{
		ID: present, FirstName: "Pedro", LastName: "Aguirre",
		Rank: models.RankMaestro, Current: true,
	}
	memberRepo.members[absent] = &models.Member{
		ID: absent, FirstName: "Manuel", LastName: "Blanco",
		Rank: models.RankMaestro, Current: true,
	}

	attendanceRepo.rangeFn = func(memberID uuid.UUID, _, _ time.Time) ([]*models.AttendanceRecord, error) {
		if memberID == present {
			return []*models.AttendanceRecord{record(boolPtr(true), nil)}, nil
		}
		return []*models.AttendanceRecord{record(boolPtr(false), nil)}, nil
	}

	viewer := policy.Viewer{Role: models.RoleAdmin}
	report, err := svc.ReportByRank(testContext(), viewer, models.RankMaestro, time.Now().AddDate(0, -1, 0), time.Now())
	if err != nil {
		t.Fatalf("ReportByRank() error = %v", err)
	}
	if len(report) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(report))
	}

	rates := make(map[uuid.UUID]float64, len(report))
	for _, entry := range report {
		rates[entry.MemberID] = entry.Stats.Rate
	}
	if rates[present] != 100 {
		t.Errorf("present member rate = %v, want 100", rates[present])
	}
	if rates[absent] != 0 {
		t.Errorf("absent member rate = %v, want 0", rates[absent])
	}
}
