// Package repositories contains the PostgreSQL data access layer.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/crypto"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
)

// MemberRepository defines the interface for member data access.
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	// List returns members ordered by last name. A nil rank returns every
	// grade; onlyCurrent excludes soft-deleted members.
	List(ctx context.Context, rank *models.Rank, onlyCurrent bool) ([]*models.Member, error)
	Update(ctx context.Context, member *models.Member) error
	UpdateRank(ctx context.Context, id uuid.UUID, rank models.Rank) error
	SetCurrent(ctx context.Context, id uuid.UUID, current bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// memberRepository implements MemberRepository using PostgreSQL. National
// IDs are encrypted before they reach the database and decrypted on read.
type memberRepository struct {
	db        *database.DB
	encryptor *crypto.FieldEncryptor
}

// NewMemberRepository creates a new member repository.
func NewMemberRepository(db *database.DB, encryptor *crypto.FieldEncryptor) MemberRepository {
	return &memberRepository{db: db, encryptor: encryptor}
}

const memberColumns = `id, first_name, last_name, national_id, email, phone, address,
	profession, birth_date, rank, office, initiation_date, elevation_date,
	exaltation_date, current, created_at, updated_at`

// Create inserts a new member row.
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now

	encryptedID, err := r.encryptor.Encrypt(member.NationalID)
	if err != nil {
		return fmt.Errorf("failed to encrypt national ID: %w", err)
	}

	query := `
		INSERT INTO members (id, first_name, last_name, national_id, email, phone,
			address, profession, birth_date, rank, office, initiation_date,
			elevation_date, exaltation_date, current, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err = r.db.Scope(ctx).Exec(ctx, query,
		member.ID,
		member.FirstName,
		member.LastName,
		encryptedID,
		member.Email,
		member.Phone,
		member.Address,
		member.Profession,
		member.BirthDate,
		member.Rank,
		member.Office,
		member.InitiationDate,
		member.ElevationDate,
		member.ExaltationDate,
		member.Current,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetByID retrieves a member by ID.
func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	member, err := r.scanMember(r.db.Scope(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// List retrieves members, optionally filtered by rank and current status.
func (r *memberRepository) List(ctx context.Context, rank *models.Rank, onlyCurrent bool) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE ($1::text IS NULL OR rank = $1)`
	if onlyCurrent {
		query += ` AND current`
	}
	query += ` ORDER BY last_name, first_name`

	rows, err := r.db.Scope(ctx).Query(ctx, query, rank)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := r.scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// Update persists every mutable member field.
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	member.UpdatedAt = time.Now()

	encryptedID, err := r.encryptor.Encrypt(member.NationalID)
	if err != nil {
		return fmt.Errorf("failed to encrypt national ID: %w", err)
	}

	query := `
		UPDATE members
		SET first_name = $1, last_name = $2, national_id = $3, email = $4,
			phone = $5, address = $6, profession = $7, birth_date = $8,
			rank = $9, office = $10, initiation_date = $11, elevation_date = $12,
			exaltation_date = $13, current = $14, updated_at = $15
		WHERE id = $16`

	result, err := r.db.Scope(ctx).Exec(ctx, query,
		member.FirstName,
		member.LastName,
		encryptedID,
		member.Email,
		member.Phone,
		member.Address,
		member.Profession,
		member.BirthDate,
		member.Rank,
		member.Office,
		member.InitiationDate,
		member.ElevationDate,
		member.ExaltationDate,
		member.Current,
		member.UpdatedAt,
		member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// UpdateRank changes only the member's grade.
func (r *memberRepository) UpdateRank(ctx context.Context, id uuid.UUID, rank models.Rank) error {
	query := `UPDATE members SET rank = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Scope(ctx).Exec(ctx, query, rank, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update member rank: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SetCurrent flips the active-membership flag (soft delete / reinstate).
func (r *memberRepository) SetCurrent(ctx context.Context, id uuid.UUID, current bool) error {
	query := `UPDATE members SET current = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Scope(ctx).Exec(ctx, query, current, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set member status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes the member row permanently.
func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM members WHERE id = $1`

	result, err := r.db.Scope(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// scanMember reads one member row and decrypts the national ID.
func (r *memberRepository) scanMember(row pgx.Row) (*models.Member, error) {
	var member models.Member
	var encryptedID string

	err := row.Scan(
		&member.ID,
		&member.FirstName,
		&member.LastName,
		&encryptedID,
		&member.Email,
		&member.Phone,
		&member.Address,
		&member.Profession,
		&member.BirthDate,
		&member.Rank,
		&member.Office,
		&member.InitiationDate,
		&member.ElevationDate,
		&member.ExaltationDate,
		&member.Current,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	member.NationalID, err = r.encryptor.Decrypt(encryptedID)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt national ID: %w", err)
	}

	return &member, nil
}

// Ensure memberRepository implements MemberRepository at compile time.
var _ MemberRepository = (*memberRepository)(nil)
