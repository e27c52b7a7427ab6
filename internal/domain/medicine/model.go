package medicine

import "github.com/shopspring/decimal"

// Medicine is a stocked item in the clinic pharmacy. Bills do not reference
// medicines; their line items are free text.
type Medicine struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name" validate:"required,max=200"`
	Description string          `db:"description" json:"description" validate:"max=500"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock" validate:"gte=0"`
}
