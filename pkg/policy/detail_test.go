package policy

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gran-oriente/logia-engine/pkg/models"
)

func testMember(rank models.Rank) *models.Member {
	birth := time.Date(1980, 5, 12, 0, 0, 0, 0, time.UTC)
	return &models.Member{
		ID:         uuid.New(),
		FirstName:  "Juan",
		LastName:   "Perez",
		NationalID: "12.345.678-9",
		Email:      "juan@example.com",
		Phone:      "+56 9 1234 5678",
		Address:    "Calle Falsa 123",
		Profession: "arquitecto",
		BirthDate:  &birth,
		Rank:       rank,
		Current:    true,
	}
}

func TestInferRank_MilestoneFallback(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		member *models.Member
		want   models.Rank
	}{
		{
			name:   "explicit rank wins",
			member: &models.Member{Rank: models.RankAprendiz, ExaltationDate: &now},
			want:   models.RankAprendiz,
		},
		{
			name:   "exaltation date implies maestro",
			member: &models.Member{ExaltationDate: &now, ElevationDate: &now, InitiationDate: &now},
			want:   models.RankMaestro,
		},
		{
			name:   "elevation date implies companero",
			member: &models.Member{ElevationDate: &now, InitiationDate: &now},
			want:   models.RankCompanero,
		},
		{
			name:   "initiation date implies aprendiz",
			member: &models.Member{InitiationDate: &now},
			want:   models.RankAprendiz,
		},
		{
			name:   "no data fails closed to maestro",
			member: &models.Member{},
			want:   models.RankMaestro,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferRank(tt.member); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCanViewDetail_RankComparison(t *testing.T) {
	tests := []struct {
		name   string
		viewer Viewer
		target models.Rank
		want   bool
	}{
		{"aprendiz views aprendiz", Viewer{Role: models.RoleGeneral, Rank: models.RankAprendiz}, models.RankAprendiz, true},
		{"aprendiz views maestro", Viewer{Role: models.RoleGeneral, Rank: models.RankAprendiz}, models.RankMaestro, false},
		{"companero views aprendiz", Viewer{Role: models.RoleGeneral, Rank: models.RankCompanero}, models.RankAprendiz, true},
		{"companero views maestro", Viewer{Role: models.RoleGeneral, Rank: models.RankCompanero}, models.RankMaestro, false},
		{"maestro views maestro", Viewer{Role: models.RoleGeneral, Rank: models.RankMaestro}, models.RankMaestro, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanViewDetail(tt.viewer, testMember(tt.target)); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCanViewDetail_MissingRankFailsClosed(t *testing.T) {
	viewer := Viewer{Role: models.RoleGeneral, Rank: models.RankCompanero}
	target := testMember("")

	if CanViewDetail(viewer, target) {
		t.Error("member with no rank data must be treated as maestro")
	}
}

func TestRedactMember_RestrictedFieldsOmitted(t *testing.T) {
	viewer := Viewer{Role: models.RoleGeneral, Rank: models.RankAprendiz}
	target := testMember(models.RankMaestro)

	view := RedactMember(viewer, target)

	if view.Detailed {
		t.Error("view should not be detailed")
	}
	if view.NationalID != "" || view.Address != "" || view.BirthDate != nil || view.Profession != "" {
		t.Errorf("restricted fields leaked: %+v", view)
	}
	// Basic contact info is always visible.
	if view.FirstName != "Juan" || view.Phone == "" || view.Email == "" {
		t.Errorf("basic fields missing: %+v", view)
	}
	if view.Rank != models.RankMaestro {
		t.Errorf("expected rank maestro, got %q", view.Rank)
	}
}

func TestRedactMember_ElevatedOverride(t *testing.T) {
	target := testMember(models.RankMaestro)

	viewers := []Viewer{
		{Role: models.RoleAdmin, Rank: models.RankAprendiz},
		{Role: models.RoleSuperadmin, Rank: models.RankAprendiz},
		{Role: models.RoleGeneral, Rank: models.RankAprendiz, Office: "venerable"},
	}

	for _, v := range viewers {
		view := RedactMember(v, target)
		if !view.Detailed {
			t.Errorf("viewer %+v should see full detail", v)
		}
		if view.NationalID != target.NationalID {
			t.Errorf("viewer %+v missing national ID", v)
		}
	}
}
