package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the ledger reacts to
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// LedgerTxOptions is used for every write unit of work. Row-level locks and
// conditional updates provide the invariants, read committed is sufficient.
var LedgerTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// BeginLedgerTx starts a read committed transaction on the pool
func (db *DB) BeginLedgerTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := db.Pool.BeginTx(ctx, LedgerTxOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// IsConflict reports whether err is a serialization failure or deadlock,
// i.e. the transaction lost a race and may be retried.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// IsUniqueViolation reports whether err violates the named unique constraint or index.
// An empty constraint matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
