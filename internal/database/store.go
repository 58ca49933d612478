// Package database implements the pricebook repositories over pgx.
//
// All statements run through the DBTX interface, satisfied by both
// *pgxpool.Pool and pgx.Tx, so read paths share code with the transactional
// apply step.
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Faxeron/back-home-new-sub000/internal/core"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store is the pgx-backed implementation of the engine's persistence
// interfaces.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InTx opens the apply transaction for one import. The first statement takes
// a per-tenant/company advisory transaction lock, so two imports for the
// same scope serialize instead of racing with last-writer-wins semantics.
func (s *Store) InTx(ctx context.Context, tenant, company int64, fn func(tx core.Tx) error) error {
	pgTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer pgTx.Rollback(ctx)

	lockKey := fmt.Sprintf("pricebook:%d:%d", tenant, company)
	if _, err := pgTx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return fmt.Errorf("acquire import lock: %w", err)
	}

	if err := fn(&storeTx{db: pgTx, tenant: tenant, company: company}); err != nil {
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// decArg converts an optional decimal to a statement argument (NULL when
// absent). Postgres coerces the text form into numeric.
func decArg(v core.OptDecimal) any {
	if !v.Valid {
		return nil
	}
	return v.Decimal.String()
}

// intArg converts an optional integer to a statement argument.
func intArg(v core.OptInt) any {
	if !v.Valid {
		return nil
	}
	return v.Int64
}

// parseDec parses a numeric column selected as text.
func parseDec(s *string) (core.OptDecimal, error) {
	if s == nil {
		return core.OptDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return core.OptDecimal{}, fmt.Errorf("parse numeric %q: %w", *s, err)
	}
	return core.Dec(d), nil
}
