package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
)

// Bill is an immutable billing event for one patient. Total always equals
// the sum of its items' amounts.
type Bill struct {
	ID        int64           `json:"id"`
	PatientID int64           `json:"patient_id"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// BillItem is one line of a Bill. LineNo is the 1-based position in which
// the item was supplied.
type BillItem struct {
	ID          int64           `json:"id"`
	BillID      int64           `json:"bill_id"`
	LineNo      int             `json:"line_no"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// ItemInput is a line item as supplied to CreateBill.
type ItemInput struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int             `json:"quantity" validate:"gte=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// BillDetail is a bill with its items in line order and the owning patient.
type BillDetail struct {
	Bill    *Bill            `json:"bill"`
	Items   []*BillItem      `json:"items"`
	Patient *patient.Patient `json:"patient"`
}

// BillSummary is one row of the bill history.
type BillSummary struct {
	ID          int64           `json:"id"`
	PatientID   int64           `json:"patient_id"`
	PatientName string          `json:"patient_name"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LineAmount is quantity * unitPrice rounded half up to 2 places.
func LineAmount(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Money formats an amount with exactly 2 fractional digits.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
