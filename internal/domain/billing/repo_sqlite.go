package billing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
)

type repoSQLite struct{ db *sqlx.DB }

func NewRepoSQLite(sqlDB *sqlx.DB) Repository { return &repoSQLite{db: sqlDB} }

func (r *repoSQLite) conn(ctx context.Context) db.SQLiteQueryer {
	return db.SQLiteConn(ctx, r.db)
}

const (
	billColsSQLite    = `id, patient_id, total, created_at`
	itemColsSQLite    = `id, bill_id, line_no, description, qty, unit_price, amount`
	summaryColsSQLite = `b.id, b.patient_id, p.name AS patient_name, b.total,
		(SELECT COUNT(*) FROM bill_items i WHERE i.bill_id = b.id) AS item_count, b.created_at`
)

type billRow struct {
	ID        int64           `db:"id"`
	PatientID int64           `db:"patient_id"`
	Total     decimal.Decimal `db:"total"`
	CreatedAt string          `db:"created_at"`
}

func (row *billRow) toModel() (*Bill, error) {
	createdAt, err := db.ParseTime(row.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &Bill{ID: row.ID, PatientID: row.PatientID, Total: row.Total, CreatedAt: createdAt}, nil
}

type itemRow struct {
	ID          int64           `db:"id"`
	BillID      int64           `db:"bill_id"`
	LineNo      int             `db:"line_no"`
	Description string          `db:"description"`
	Quantity    int             `db:"qty"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	Amount      decimal.Decimal `db:"amount"`
}

type summaryRow struct {
	billRow
	PatientName string `db:"patient_name"`
	ItemCount   int    `db:"item_count"`
}

func (r *repoSQLite) CreateBill(ctx context.Context, b *Bill) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO bills (patient_id, total, created_at)
		VALUES (?, ?, ?)`,
		b.PatientID, b.Total.StringFixed(2), db.FormatTime(b.CreatedAt))
	if db.IsForeignKeyViolation(err) {
		return apperr.NotFound("patient", b.PatientID)
	}
	if err != nil {
		return apperr.Storage("insert bill", err)
	}
	b.ID, err = res.LastInsertId()
	return apperr.Storage("insert bill", err)
}

func (r *repoSQLite) AddItem(ctx context.Context, it *BillItem) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO bill_items (bill_id, line_no, description, qty, unit_price, amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		it.BillID, it.LineNo, it.Description, it.Quantity, it.UnitPrice.String(), it.Amount.StringFixed(2))
	if err != nil {
		return apperr.Storage("insert bill item", err)
	}
	it.ID, err = res.LastInsertId()
	return apperr.Storage("insert bill item", err)
}

func (r *repoSQLite) GetBill(ctx context.Context, id int64) (*Bill, error) {
	var row billRow
	err := r.conn(ctx).GetContext(ctx, &row, `SELECT `+billColsSQLite+` FROM bills WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("bill", id)
	}
	if err != nil {
		return nil, apperr.Storage("get bill", err)
	}
	b, err := row.toModel()
	return b, apperr.Storage("get bill", err)
}

func (r *repoSQLite) GetItems(ctx context.Context, billID int64) ([]*BillItem, error) {
	var rows []itemRow
	err := r.conn(ctx).SelectContext(ctx, &rows, `SELECT `+itemColsSQLite+` FROM bill_items WHERE bill_id = ? ORDER BY line_no`, billID)
	if err != nil {
		return nil, apperr.Storage("get bill items", err)
	}
	items := make([]*BillItem, len(rows))
	for i, row := range rows {
		items[i] = &BillItem{
			ID:          row.ID,
			BillID:      row.BillID,
			LineNo:      row.LineNo,
			Description: row.Description,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			Amount:      row.Amount,
		}
	}
	return items, nil
}

func (r *repoSQLite) List(ctx context.Context, patientID int64, limit, offset int) ([]*BillSummary, int, error) {
	qb := db.NewSearchQuery(db.SQLite, summaryFrom, summaryColsSQLite)
	if patientID > 0 {
		qb.AddEquals("b.patient_id", patientID)
	}
	qb.OrderBy(summaryOrder)

	var total int
	if err := r.conn(ctx).GetContext(ctx, &total, qb.CountSQL(), qb.CountArgs()...); err != nil {
		return nil, 0, apperr.Storage("count bills", err)
	}

	var rows []summaryRow
	if err := r.conn(ctx).SelectContext(ctx, &rows, qb.DataSQL(), qb.DataArgs(limit, offset)...); err != nil {
		return nil, 0, apperr.Storage("list bills", err)
	}
	items := make([]*BillSummary, 0, len(rows))
	for i := range rows {
		b, err := rows[i].toModel()
		if err != nil {
			return nil, 0, apperr.Storage("scan bill", err)
		}
		items = append(items, &BillSummary{
			ID:          b.ID,
			PatientID:   b.PatientID,
			PatientName: rows[i].PatientName,
			Total:       b.Total,
			ItemCount:   rows[i].ItemCount,
			CreatedAt:   b.CreatedAt,
		})
	}
	return items, total, nil
}
