package medicine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db/dbtest"
)

func TestRepoSQLite_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoSQLite(dbtest.NewSQLite(t))

	m := &Medicine{Name: "Paracetamol", Description: "500mg tablet", Price: decimal.RequireFromString("2.50"), Stock: 200}
	require.NoError(t, repo.Create(ctx, m))

	got, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2.5")), "price %s", got.Price)
	assert.Equal(t, 200, got.Stock)

	got.Stock = 150
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 150, again.Stock)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepoSQLite_SearchByName(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoSQLite(dbtest.NewSQLite(t))
	require.NoError(t, repo.Create(ctx, &Medicine{Name: "Paracetamol", Description: "500mg tablet", Price: decimal.NewFromFloat(2.5)}))
	require.NoError(t, repo.Create(ctx, &Medicine{Name: "Amoxicillin", Description: "250mg capsule", Price: decimal.NewFromInt(5)}))

	items, total, err := repo.Search(ctx, "", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Amoxicillin", items[0].Name)

	items, total, err = repo.Search(ctx, "TABLET", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Paracetamol", items[0].Name)
}

func TestRepoSQLite_NegativeStockRejected(t *testing.T) {
	ctx := context.Background()
	repo := NewRepoSQLite(dbtest.NewSQLite(t))
	err := repo.Create(ctx, &Medicine{Name: "X", Stock: -1})
	assert.ErrorIs(t, err, apperr.ErrStorage)
}
