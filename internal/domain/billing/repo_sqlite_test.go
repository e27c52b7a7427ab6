package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db/dbtest"
)

// failingRepo fails the n-th AddItem call (1-based).
type failingRepo struct {
	Repository
	failAt int
	seen   int
}

func (f *failingRepo) AddItem(ctx context.Context, it *BillItem) error {
	f.seen++
	if f.seen == f.failAt {
		return apperr.Storage("insert bill item", errors.New("disk I/O error"))
	}
	return f.Repository.AddItem(ctx, it)
}

type sqliteFixture struct {
	db       *sqlx.DB
	bills    Repository
	patients patient.Repository
	tx       db.Transactor
	ram      *patient.Patient
}

func newSQLiteFixture(t *testing.T) *sqliteFixture {
	t.Helper()
	sqlDB := dbtest.NewSQLite(t)
	f := &sqliteFixture{
		db:       sqlDB,
		bills:    NewRepoSQLite(sqlDB),
		patients: patient.NewRepoSQLite(sqlDB),
		tx:       db.NewSQLiteTransactor(sqlDB),
	}
	age := 30
	f.ram = &patient.Patient{Name: "Ram Kumar", Age: &age, Gender: "Male", Phone: "9876543210", Address: "123 MG Road", CreatedAt: time.Now().UTC()}
	require.NoError(t, f.patients.Create(context.Background(), f.ram))
	return f
}

func (f *sqliteFixture) service(repo Repository) *Service {
	return NewService(repo, f.patients, f.tx, zerolog.Nop())
}

func (f *sqliteFixture) counts(t *testing.T) (int, int) {
	return dbtest.Count(t, f.db, "bills"), dbtest.Count(t, f.db, "bill_items")
}

func TestSQLite_CreateAndReadBack(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t)
	svc := f.service(f.bills)

	created, err := svc.CreateBill(ctx, f.ram.ID, []ItemInput{
		{Description: "Consultation", Quantity: 1, UnitPrice: dec("300.00")},
		{Description: "Paracetamol", Quantity: 2, UnitPrice: dec("2.50")},
	})
	require.NoError(t, err)
	assert.Equal(t, "305.00", Money(created.Bill.Total))

	detail, err := svc.GetBill(ctx, created.Bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "305.00", Money(detail.Bill.Total))
	assert.True(t, detail.Bill.CreatedAt.Equal(created.Bill.CreatedAt))
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Consultation", detail.Items[0].Description)
	assert.Equal(t, "Paracetamol", detail.Items[1].Description)
	assert.Equal(t, 2, detail.Items[1].Quantity)
	assert.Equal(t, "2.50", Money(detail.Items[1].UnitPrice))
	assert.Equal(t, "5.00", Money(detail.Items[1].Amount))
	for i, it := range detail.Items {
		assert.Equal(t, created.Items[i].ID, it.ID)
	}
	assert.Equal(t, "Ram Kumar", detail.Patient.Name)
}

func TestSQLite_FailedItemRollsBackBill(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t)
	svc := f.service(&failingRepo{Repository: f.bills, failAt: 3})

	_, err := svc.CreateBill(ctx, f.ram.ID, []ItemInput{
		{Description: "A", Quantity: 1, UnitPrice: dec("1")},
		{Description: "B", Quantity: 1, UnitPrice: dec("2")},
		{Description: "C", Quantity: 1, UnitPrice: dec("3")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrStorage)

	bills, items := f.counts(t)
	assert.Zero(t, bills, "bill row must be rolled back")
	assert.Zero(t, items, "item rows must be rolled back")
}

func TestSQLite_ValidationLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t)
	svc := f.service(f.bills)
	_, err := svc.CreateBill(ctx, f.ram.ID, []ItemInput{{Description: "Seed", Quantity: 1, UnitPrice: dec("1")}})
	require.NoError(t, err)
	billsBefore, itemsBefore := f.counts(t)

	for _, items := range [][]ItemInput{
		nil,
		{{Description: "X", Quantity: 3, UnitPrice: dec("-1.00")}},
		{{Description: "X", Quantity: 0, UnitPrice: dec("1.00")}},
	} {
		_, err := svc.CreateBill(ctx, f.ram.ID, items)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}

	_, total, err := svc.ListBills(ctx, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, billsBefore, total)
	billsAfter, itemsAfter := f.counts(t)
	assert.Equal(t, billsBefore, billsAfter)
	assert.Equal(t, itemsBefore, itemsAfter)
}

func TestSQLite_UnknownPatientPersistsNothing(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t)
	svc := f.service(f.bills)

	_, err := svc.CreateBill(ctx, 4242, []ItemInput{{Description: "A", Quantity: 1, UnitPrice: dec("1")}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	bills, items := f.counts(t)
	assert.Zero(t, bills)
	assert.Zero(t, items)
}

func TestSQLite_RepoRejectsOrphanBill(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t)
	err := f.bills.CreateBill(ctx, &Bill{PatientID: 999, Total: dec("1"), CreatedAt: time.Now()})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSQLite_ListBillsNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newSQLiteFixture(t)
	svc := f.service(f.bills)

	sita := &patient.Patient{Name: "Sita Devi", CreatedAt: time.Now().UTC()}
	require.NoError(t, f.patients.Create(ctx, sita))

	base := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	clock := base
	svc.SetClock(func() time.Time { return clock })

	first, err := svc.CreateBill(ctx, f.ram.ID, []ItemInput{{Description: "A", Quantity: 1, UnitPrice: dec("10")}})
	require.NoError(t, err)
	clock = base.Add(time.Hour)
	second, err := svc.CreateBill(ctx, sita.ID, []ItemInput{
		{Description: "B", Quantity: 1, UnitPrice: dec("20")},
		{Description: "C", Quantity: 2, UnitPrice: dec("0.5")},
	})
	require.NoError(t, err)
	clock = base.Add(time.Hour)
	third, err := svc.CreateBill(ctx, f.ram.ID, []ItemInput{{Description: "D", Quantity: 1, UnitPrice: dec("30")}})
	require.NoError(t, err)

	list, total, err := svc.ListBills(ctx, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{third.Bill.ID, second.Bill.ID, first.Bill.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "Sita Devi", list[1].PatientName)
	assert.Equal(t, 2, list[1].ItemCount)
	assert.Equal(t, "21.00", Money(list[1].Total))

	mine, total, err := svc.ListBillsByPatient(ctx, f.ram.ID, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, third.Bill.ID, mine[0].ID)

	page, total, err := svc.ListBills(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, second.Bill.ID, page[0].ID)
}
