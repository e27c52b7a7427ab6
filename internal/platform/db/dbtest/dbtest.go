// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
	"github.com/AdvaitShete/Hospital-Mangement-System/migrations"
)

// NewSQLite returns a fresh in-memory database with the clinic schema
// applied. It is closed when the test ends.
func NewSQLite(t testing.TB) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if _, err := db.NewSQLiteMigrator(sqlDB, migrations.SQLite()).Up(ctx); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return sqlDB
}

// Count returns the number of rows in table.
func Count(t testing.TB, sqlDB *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := sqlDB.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
