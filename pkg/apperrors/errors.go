package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidRank        = errors.New("invalid rank")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidEventKind   = errors.New("invalid event kind")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is not active")
	ErrAlreadyReviewed    = errors.New("plancha already reviewed")
	ErrLastSuperadmin     = errors.New("cannot remove the last superadmin")
)
