package billing

import "context"

type Repository interface {
	// CreateBill inserts the bill row. A missing patient is reported as
	// apperr.ErrNotFound.
	CreateBill(ctx context.Context, b *Bill) error
	AddItem(ctx context.Context, item *BillItem) error
	GetBill(ctx context.Context, id int64) (*Bill, error)
	// GetItems returns a bill's items ordered by line number.
	GetItems(ctx context.Context, billID int64) ([]*BillItem, error)
	// List returns bills newest first. patientID 0 lists every patient.
	List(ctx context.Context, patientID int64, limit, offset int) ([]*BillSummary, int, error)
}

const (
	summaryFrom  = `bills b JOIN patients p ON p.id = b.patient_id`
	summaryOrder = "b.created_at DESC, b.id DESC"
)
