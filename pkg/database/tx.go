package database

import (
	"context"
	"fmt"
)

// WithTx runs fn inside a single transaction. The context passed to fn
// carries the transaction as its querier, so every repository call inside
// fn joins the same transaction. Any error rolls the whole transaction
// back; transitions that touch multiple rows (account plus member) must go
// through here so a failure leaves no partial state.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := GetQuerier(ctx); ok {
		// Already inside a transaction scope; join it.
		return fn(ctx)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txCtx := SetQuerier(ctx, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
