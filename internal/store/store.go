// Package store opens the configured database and wires every repository
// against it.
package store

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/appointment"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/medicine"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
	"github.com/AdvaitShete/Hospital-Mangement-System/migrations"
)

// Options configures Open. Pool sizes only apply to PostgreSQL.
type Options struct {
	DatabaseURL string
	MaxConns    int32
	MinConns    int32
}

// Store bundles the repositories of one database.
type Store struct {
	Dialect      db.Dialect
	Patients     patient.Repository
	Medicines    medicine.Repository
	Appointments appointment.Repository
	Bills        billing.Repository
	Tx           db.Transactor

	pool *pgxpool.Pool
	lite *sqlx.DB
}

// Open connects to DatabaseURL and returns a Store for its dialect.
func Open(ctx context.Context, opts Options) (*Store, error) {
	dialect, dsn, err := db.ParseURL(opts.DatabaseURL)
	if err != nil {
		return nil, err
	}

	switch dialect {
	case db.Postgres:
		pool, err := db.NewPool(ctx, dsn, db.PoolOptions{
			MaxConns: opts.MaxConns,
			MinConns: opts.MinConns,
			AppName:  "clinic",
		})
		if err != nil {
			return nil, err
		}
		return NewPG(pool), nil
	case db.SQLite:
		lite, err := db.OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return NewSQLite(lite), nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// NewPG wires the PostgreSQL repositories over pool.
func NewPG(pool *pgxpool.Pool) *Store {
	return &Store{
		Dialect:      db.Postgres,
		Patients:     patient.NewRepoPG(pool),
		Medicines:    medicine.NewRepoPG(pool),
		Appointments: appointment.NewRepoPG(pool),
		Bills:        billing.NewRepoPG(pool),
		Tx:           db.NewPGTransactor(pool),
		pool:         pool,
	}
}

// NewSQLite wires the SQLite repositories over lite.
func NewSQLite(lite *sqlx.DB) *Store {
	return &Store{
		Dialect:      db.SQLite,
		Patients:     patient.NewRepoSQLite(lite),
		Medicines:    medicine.NewRepoSQLite(lite),
		Appointments: appointment.NewRepoSQLite(lite),
		Bills:        billing.NewRepoSQLite(lite),
		Tx:           db.NewSQLiteTransactor(lite),
		lite:         lite,
	}
}

// Migrator returns a migrator for this store. A nil files uses the
// embedded schema for the store's dialect.
func (s *Store) Migrator(files fs.FS) *db.Migrator {
	if s.pool != nil {
		if files == nil {
			files = migrations.Postgres()
		}
		return db.NewPGMigrator(s.pool, files)
	}
	if files == nil {
		files = migrations.SQLite()
	}
	return db.NewSQLiteMigrator(s.lite, files)
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool != nil {
		return s.pool.Ping(ctx)
	}
	return s.lite.PingContext(ctx)
}

// PoolStats reports connection pool statistics, or nil for SQLite.
func (s *Store) PoolStats() *db.PoolStats {
	if s.pool == nil {
		return nil
	}
	return db.GetPoolStats(s.pool)
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.lite != nil {
		s.lite.Close()
	}
}
