package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx operations repositories use. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so repository methods run the same
// whether called directly or inside a transaction scope.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type contextKey string

// querierKey is the context key for storing a transaction-scoped querier.
const querierKey contextKey = "querier"

// GetQuerier retrieves a transaction-scoped querier from context.
// Returns nil and false if not present.
func GetQuerier(ctx context.Context) (Querier, bool) {
	q, ok := ctx.Value(querierKey).(Querier)
	return q, ok
}

// SetQuerier stores a transaction-scoped querier in context.
func SetQuerier(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, querierKey, q)
}

// Scope resolves the querier for the current call: the transaction bound to
// the context if one exists, otherwise the shared pool.
func (db *DB) Scope(ctx context.Context) Querier {
	if q, ok := GetQuerier(ctx); ok {
		return q
	}
	return db.Pool
}
