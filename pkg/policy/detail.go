package policy

import (
	"time"

	"github.com/gran-oriente/logia-engine/pkg/models"
)

// InferRank guesses a member's rank from milestone dates when the rank
// field itself is missing. It is best-effort only: a member with incomplete
// milestone records can be misclassified, and callers must treat the result
// as advisory. When no milestone date is present the member is assumed to
// hold the highest grade, so detail access fails closed.
func InferRank(m *models.Member) models.Rank {
	if models.IsValidRank(string(m.Rank)) {
		return m.Rank
	}
	switch {
	case m.ExaltationDate != nil:
		return models.RankMaestro
	case m.ElevationDate != nil:
		return models.RankCompanero
	case m.InitiationDate != nil:
		return models.RankAprendiz
	default:
		return models.RankMaestro
	}
}

// CanViewDetail reports whether the viewer may see a member's restricted
// personal fields. Elevated viewers always may; otherwise the viewer's
// grade must be at or above the target's effective grade.
func CanViewDetail(v Viewer, target *models.Member) bool {
	if v.IsElevated() {
		return true
	}
	return v.Rank.AtLeast(InferRank(target))
}

// MemberView is a member record shaped for a particular viewer. Basic
// contact fields are always populated; restricted fields are present only
// when Detailed is true.
type MemberView struct {
	ID        string      `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Rank      models.Rank `json:"rank"`
	Office    string      `json:"office,omitempty"`
	Phone     string      `json:"phone"`
	Email     string      `json:"email"`
	Current   bool        `json:"current"`

	Detailed bool `json:"detailed"`

	NationalID string     `json:"national_id,omitempty"`
	Address    string     `json:"address,omitempty"`
	Profession string     `json:"profession,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
}

// RedactMember shapes a member record for the viewer, omitting restricted
// fields unless CanViewDetail allows them.
func RedactMember(v Viewer, m *models.Member) MemberView {
	view := MemberView{
		ID:        m.ID.String(),
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Rank:      m.Rank,
		Office:    m.Office,
		Phone:     m.Phone,
		Email:     m.Email,
		Current:   m.Current,
	}
	if !CanViewDetail(v, m) {
		return view
	}
	view.Detailed = true
	view.NationalID = m.NationalID
	view.Address = m.Address
	view.Profession = m.Profession
	view.BirthDate = m.BirthDate
	return view
}
