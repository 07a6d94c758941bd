// Package policy implements the lodge's visibility and authorization rules
// as pure functions. Every rule takes an explicit Viewer value built from
// the authenticated request; nothing in this package reads ambient state or
// performs I/O.
package policy

import "github.com/gran-oriente/logia-engine/pkg/models"

// Viewer describes who is looking: their account role, their grade, and
// any office they hold.
type Viewer struct {
	Role   models.Role
	Rank   models.Rank
	Office string
}

// IsElevated reports whether the viewer sees all categories and member
// detail without restriction. Admins, superadmins, and any member holding
// an office qualify. This is the single override checked first by every
// visibility rule.
func (v Viewer) IsElevated() bool {
	return v.Role.IsAdmin() || v.Office != ""
}
