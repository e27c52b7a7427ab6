package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

type contextKey string

const (
	DBTxKey     contextKey = "db_tx"
	SQLiteTxKey contextKey = "sqlite_tx"
)

// Transactor runs fn inside one database transaction. Repositories pick the
// transaction up from the context passed to fn, so every statement issued
// through them commits or rolls back together. An error returned by fn (or
// a panic) rolls the transaction back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TxFromContext retrieves the PostgreSQL transaction carried by ctx.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// SQLiteTxFromContext retrieves the SQLite transaction carried by ctx.
func SQLiteTxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(SQLiteTxKey).(*sqlx.Tx)
	return tx
}

// SQLiteQueryer is the subset of *sqlx.DB and *sqlx.Tx the repositories use.
type SQLiteQueryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// SQLiteConn returns the transaction carried by ctx, or db when there is none.
func SQLiteConn(ctx context.Context, db *sqlx.DB) SQLiteQueryer {
	if tx := SQLiteTxFromContext(ctx); tx != nil {
		return tx
	}
	return db
}

type pgTransactor struct{ pool *pgxpool.Pool }

// NewPGTransactor returns a Transactor backed by a pgx pool.
func NewPGTransactor(pool *pgxpool.Pool) Transactor { return &pgTransactor{pool: pool} }

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(context.WithValue(ctx, DBTxKey, tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type sqliteTransactor struct{ db *sqlx.DB }

// NewSQLiteTransactor returns a Transactor backed by a sqlx SQLite handle.
func NewSQLiteTransactor(db *sqlx.DB) Transactor { return &sqliteTransactor{db: db} }

func (t *sqliteTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if SQLiteTxFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, SQLiteTxKey, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
