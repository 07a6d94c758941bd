package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gran-oriente/logia-engine/pkg/apperrors"
	"github.com/gran-oriente/logia-engine/pkg/database"
	"github.com/gran-oriente/logia-engine/pkg/models"
)

// AccountRepository defines the interface for account data access.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// GetByMemberID resolves the account linked to a member, if any.
	GetByMemberID(ctx context.Context, memberID uuid.UUID) (*models.Account, error)
	ListPending(ctx context.Context) ([]*models.Account, error)
	// UpdateGrant sets role, rank and active in one statement. Used by the
	// approval workflow; repeated calls overwrite the previous grant.
	UpdateGrant(ctx context.Context, id uuid.UUID, role models.Role, rank models.Rank, active bool) error
	UpdateRank(ctx context.Context, id uuid.UUID, rank models.Rank) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// CountActiveByRole returns how many active accounts hold the role.
	CountActiveByRole(ctx context.Context, role models.Role) (int, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// accountRepository implements AccountRepository using PostgreSQL.
type accountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *database.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, member_id, email, password_hash, role, rank, active, created_at, updated_at`

// Create inserts a new account row.
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	query := `
		INSERT INTO accounts (id, member_id, email, password_hash, role, rank, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Scope(ctx).Exec(ctx, query,
		account.ID,
		account.MemberID,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Rank,
		account.Active,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		// Unique constraint violation (PostgreSQL error code 23505) means the
		// email or member already has an account.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID.
func (r *accountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves an account by its login email.
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// GetByMemberID retrieves the account linked to a member.
func (r *accountRepository) GetByMemberID(ctx context.Context, memberID uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE member_id = $1`
	return r.getOne(ctx, query, memberID)
}

func (r *accountRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	var account models.Account
	err := r.db.Scope(ctx).QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.MemberID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Rank,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// ListPending retrieves accounts awaiting approval, oldest first.
func (r *accountRepository) ListPending(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE NOT active ORDER BY created_at`

	rows, err := r.db.Scope(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.ID,
			&account.MemberID,
			&account.Email,
			&account.PasswordHash,
			&account.Role,
			&account.Rank,
			&account.Active,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateGrant sets role, rank and active in one statement.
func (r *accountRepository) UpdateGrant(ctx context.Context, id uuid.UUID, role models.Role, rank models.Rank, active bool) error {
	query := `
		UPDATE accounts
		SET role = $1, rank = $2, active = $3, updated_at = $4
		WHERE id = $5`

	result, err := r.db.Scope(ctx).Exec(ctx, query, role, rank, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update account grant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// UpdateRank mirrors a member rank change onto the account.
func (r *accountRepository) UpdateRank(ctx context.Context, id uuid.UUID, rank models.Rank) error {
	query := `UPDATE accounts SET rank = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Scope(ctx).Exec(ctx, query, rank, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update account rank: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// UpdatePassword stores a new password hash.
func (r *accountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Scope(ctx).Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update account password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// CountActiveByRole returns how many active accounts hold the role.
func (r *accountRepository) CountActiveByRole(ctx context.Context, role models.Role) (int, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE role = $1 AND active`

	var count int
	if err := r.db.Scope(ctx).QueryRow(ctx, query, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts by role: %w", err)
	}

	return count, nil
}

// SetActive flips the login gate.
func (r *accountRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE accounts SET active = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Scope(ctx).Exec(ctx, query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set account status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes the account row.
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := r.db.Scope(ctx).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure accountRepository implements AccountRepository at compile time.
var _ AccountRepository = (*accountRepository)(nil)
