package billing

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
)

// -- Mock Repositories --

type mockRepo struct {
	bills      map[int64]*Bill
	items      map[int64][]*BillItem
	nextBillID int64
	nextItemID int64
	calls      int
}

func newMockRepo() *mockRepo {
	return &mockRepo{bills: make(map[int64]*Bill), items: make(map[int64][]*BillItem)}
}

func (m *mockRepo) CreateBill(_ context.Context, b *Bill) error {
	m.calls++
	m.nextBillID++
	b.ID = m.nextBillID
	m.bills[b.ID] = b
	return nil
}

func (m *mockRepo) AddItem(_ context.Context, it *BillItem) error {
	m.calls++
	m.nextItemID++
	it.ID = m.nextItemID
	m.items[it.BillID] = append(m.items[it.BillID], it)
	return nil
}

func (m *mockRepo) GetBill(_ context.Context, id int64) (*Bill, error) {
	m.calls++
	b, ok := m.bills[id]
	if !ok {
		return nil, apperr.NotFound("bill", id)
	}
	return b, nil
}

func (m *mockRepo) GetItems(_ context.Context, billID int64) ([]*BillItem, error) {
	m.calls++
	return m.items[billID], nil
}

func (m *mockRepo) List(_ context.Context, patientID int64, limit, offset int) ([]*BillSummary, int, error) {
	m.calls++
	var result []*BillSummary
	for _, b := range m.bills {
		if patientID == 0 || b.PatientID == patientID {
			result = append(result, &BillSummary{ID: b.ID, PatientID: b.PatientID, Total: b.Total, CreatedAt: b.CreatedAt, ItemCount: len(m.items[b.ID])})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, len(result), nil
}

type mockPatients map[int64]*patient.Patient

func (m mockPatients) GetByID(_ context.Context, id int64) (*patient.Patient, error) {
	p, ok := m[id]
	if !ok {
		return nil, apperr.NotFound("patient", id)
	}
	return p, nil
}

// passthroughTx runs fn directly; atomicity is covered by the SQLite tests.
type passthroughTx struct{ scopes int }

func (p *passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.scopes++
	return fn(ctx)
}

var fixedNow = time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC)

func newTestServiceWith(repo *mockRepo, tx *passthroughTx) *Service {
	age := 30
	patients := mockPatients{
		1: {ID: 1, Name: "Ram Kumar", Age: &age, Gender: "Male", Phone: "9876543210", Address: "123 MG Road"},
	}
	svc := NewService(repo, patients, tx, zerolog.Nop())
	svc.SetClock(func() time.Time { return fixedNow })
	return svc
}

func newTestService() *Service {
	return newTestServiceWith(newMockRepo(), &passthroughTx{})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestService_CreateBill(t *testing.T) {
	repo := newMockRepo()
	tx := &passthroughTx{}
	svc := newTestServiceWith(repo, tx)

	detail, err := svc.CreateBill(context.Background(), 1, []ItemInput{
		{Description: "Consultation", Quantity: 1, UnitPrice: dec("300.00")},
		{Description: "Paracetamol", Quantity: 2, UnitPrice: dec("2.50")},
	})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if Money(detail.Bill.Total) != "305.00" {
		t.Errorf("expected total 305.00, got %s", Money(detail.Bill.Total))
	}
	if detail.Bill.ID == 0 || !detail.Bill.CreatedAt.Equal(fixedNow) {
		t.Errorf("unexpected bill %+v", detail.Bill)
	}
	if len(detail.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(detail.Items))
	}
	for i, it := range detail.Items {
		if it.ID == 0 || it.BillID != detail.Bill.ID || it.LineNo != i+1 {
			t.Errorf("item %d not persisted correctly: %+v", i, it)
		}
	}
	if Money(detail.Items[1].Amount) != "5.00" {
		t.Errorf("expected amount 5.00, got %s", Money(detail.Items[1].Amount))
	}
	if detail.Patient == nil || detail.Patient.Name != "Ram Kumar" {
		t.Errorf("expected patient projection, got %+v", detail.Patient)
	}
	if tx.scopes != 1 {
		t.Errorf("expected one transaction scope, got %d", tx.scopes)
	}
}

func TestService_CreateBill_Validation(t *testing.T) {
	tests := []struct {
		name      string
		items     []ItemInput
		wantIndex int
		wantField string
	}{
		{"empty", nil, -1, "items"},
		{"zero quantity", []ItemInput{{Description: "A", Quantity: 0, UnitPrice: dec("1")}}, 0, "quantity"},
		{"negative quantity", []ItemInput{
			{Description: "A", Quantity: 1, UnitPrice: dec("1")},
			{Description: "B", Quantity: -2, UnitPrice: dec("1")},
		}, 1, "quantity"},
		{"negative price", []ItemInput{{Description: "X", Quantity: 3, UnitPrice: dec("-1.00")}}, 0, "unit_price"},
		{"blank description", []ItemInput{{Description: "   ", Quantity: 1, UnitPrice: dec("1")}}, 0, "description"},
		{"too precise price", []ItemInput{{Description: "A", Quantity: 1, UnitPrice: dec("0.00001")}}, 0, "unit_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			tx := &passthroughTx{}
			svc := newTestServiceWith(repo, tx)

			_, err := svc.CreateBill(context.Background(), 1, tt.items)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) || ve.Index != tt.wantIndex || ve.Field != tt.wantField {
				t.Errorf("expected item %d field %s, got %+v", tt.wantIndex, tt.wantField, ve)
			}
			if repo.calls != 0 || tx.scopes != 0 {
				t.Errorf("validation failure must not touch storage: calls=%d scopes=%d", repo.calls, tx.scopes)
			}
		})
	}
}

func TestService_CreateBill_ZeroPriceAllowed(t *testing.T) {
	svc := newTestService()
	detail, err := svc.CreateBill(context.Background(), 1, []ItemInput{{Description: "Free follow-up", Quantity: 1, UnitPrice: decimal.Zero}})
	if err != nil {
		t.Fatalf("CreateBill: %v", err)
	}
	if Money(detail.Bill.Total) != "0.00" {
		t.Errorf("expected 0.00, got %s", Money(detail.Bill.Total))
	}
}

func TestService_CreateBill_UnknownPatient(t *testing.T) {
	repo := newMockRepo()
	svc := newTestServiceWith(repo, &passthroughTx{})
	_, err := svc.CreateBill(context.Background(), 99, []ItemInput{{Description: "A", Quantity: 1, UnitPrice: dec("1")}})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(repo.bills) != 0 {
		t.Error("no bill should be written for an unknown patient")
	}
}

func TestService_CreateBill_TotalMatchesItems(t *testing.T) {
	svc := newTestService()
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(8)
		items := make([]ItemInput, n)
		want := decimal.Zero
		for i := range items {
			qty := 1 + rng.Intn(20)
			unit := decimal.New(rng.Int63n(1_000_000), -int32(rng.Intn(5)))
			items[i] = ItemInput{Description: "item", Quantity: qty, UnitPrice: unit}
			want = want.Add(unit.Mul(decimal.NewFromInt(int64(qty))).Round(2))
		}

		detail, err := svc.CreateBill(context.Background(), 1, items)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		sum := decimal.Zero
		for _, it := range detail.Items {
			sum = sum.Add(it.Amount)
		}
		if !detail.Bill.Total.Equal(sum) || !detail.Bill.Total.Equal(want) {
			t.Fatalf("round %d: total %s, items sum %s, want %s", round, detail.Bill.Total, sum, want)
		}
	}
}

func TestService_GetBill(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	created, _ := svc.CreateBill(ctx, 1, []ItemInput{
		{Description: "Consultation", Quantity: 1, UnitPrice: dec("300")},
		{Description: "Paracetamol", Quantity: 2, UnitPrice: dec("2.5")},
	})

	detail, err := svc.GetBill(ctx, created.Bill.ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if len(detail.Items) != 2 || detail.Items[0].Description != "Consultation" {
		t.Errorf("unexpected items %+v", detail.Items)
	}
	if detail.Patient.Name != "Ram Kumar" {
		t.Errorf("unexpected patient %+v", detail.Patient)
	}

	if _, err := svc.GetBill(ctx, 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestService_ListBills(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.CreateBill(ctx, 1, []ItemInput{{Description: "A", Quantity: 1, UnitPrice: dec("10")}})
	svc.CreateBill(ctx, 1, []ItemInput{{Description: "B", Quantity: 1, UnitPrice: dec("20")}})

	items, total, err := svc.ListBills(ctx, 20, 0)
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if total != 2 || items[0].ID != 2 {
		t.Errorf("expected newest first, got %+v", items)
	}

	items, total, _ = svc.ListBillsByPatient(ctx, 7, 20, 0)
	if total != 0 || len(items) != 0 {
		t.Errorf("expected no bills for patient 7, got %d", total)
	}
}
