package billing

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/validate"
)

// unitPricePlaces is the precision unit prices are stored with.
const unitPricePlaces = 4

// PatientLookup resolves the patient a bill belongs to.
type PatientLookup interface {
	GetByID(ctx context.Context, id int64) (*patient.Patient, error)
}

type Service struct {
	bills    Repository
	patients PatientLookup
	tx       db.Transactor
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(bills Repository, patients PatientLookup, tx db.Transactor, logger zerolog.Logger) *Service {
	return &Service{bills: bills, patients: patients, tx: tx, logger: logger, now: time.Now}
}

// SetClock replaces the time source used for created_at.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateBill validates items, then writes the bill and every item in one
// transaction. Nothing is persisted unless the whole bill is.
func (s *Service) CreateBill(ctx context.Context, patientID int64, items []ItemInput) (*BillDetail, error) {
	lines, total, err := priceItems(items)
	if err != nil {
		return nil, err
	}

	bill := &Bill{PatientID: patientID, Total: total, CreatedAt: s.now().UTC().Truncate(time.Microsecond)}
	var owner *patient.Patient

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.patients.GetByID(ctx, patientID)
		if err != nil {
			return err
		}
		owner = p

		if err := s.bills.CreateBill(ctx, bill); err != nil {
			return err
		}
		for _, it := range lines {
			it.BillID = bill.ID
			if err := s.bills.AddItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("bill_id", bill.ID).
		Int64("patient_id", patientID).
		Int("items", len(lines)).
		Str("total", Money(total)).
		Msg("bill created")

	return &BillDetail{Bill: bill, Items: lines, Patient: owner}, nil
}

// priceItems validates the inputs and computes each line amount and the
// bill total. It touches no storage.
func priceItems(items []ItemInput) ([]*BillItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, apperr.Invalid("items", "must not be empty")
	}

	lines := make([]*BillItem, len(items))
	total := decimal.Zero
	for i, in := range items {
		in.Description = strings.TrimSpace(in.Description)
		if err := validate.Item(i, &in); err != nil {
			return nil, decimal.Zero, err
		}
		if in.UnitPrice.IsNegative() {
			return nil, decimal.Zero, apperr.InvalidItem(i, "unit_price", "must not be negative")
		}
		if !in.UnitPrice.Equal(in.UnitPrice.Round(unitPricePlaces)) {
			return nil, decimal.Zero, apperr.InvalidItem(i, "unit_price", "must have at most 4 decimal places")
		}

		amount := LineAmount(in.Quantity, in.UnitPrice)
		lines[i] = &BillItem{
			LineNo:      i + 1,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Amount:      amount,
		}
		total = total.Add(amount)
	}
	return lines, total, nil
}

// GetBill returns the bill, its items in line order and its patient.
func (s *Service) GetBill(ctx context.Context, id int64) (*BillDetail, error) {
	bill, err := s.bills.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.bills.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.patients.GetByID(ctx, bill.PatientID)
	if err != nil {
		return nil, err
	}
	return &BillDetail{Bill: bill, Items: items, Patient: owner}, nil
}

// ListBills returns the bill history newest first.
func (s *Service) ListBills(ctx context.Context, limit, offset int) ([]*BillSummary, int, error) {
	return s.bills.List(ctx, 0, limit, offset)
}

func (s *Service) ListBillsByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*BillSummary, int, error) {
	return s.bills.List(ctx, patientID, limit, offset)
}
