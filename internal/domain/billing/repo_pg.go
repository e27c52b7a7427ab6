package billing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// NUMERIC columns are read back as text so decimal keeps the stored scale.
const (
	billCols    = `id, patient_id, total::text, created_at`
	itemCols    = `id, bill_id, line_no, description, qty, unit_price::text, amount::text`
	summaryCols = `b.id, b.patient_id, p.name, b.total::text,
		(SELECT COUNT(*) FROM bill_items i WHERE i.bill_id = b.id), b.created_at`
)

func parseDecimals(dst []*decimal.Decimal, src []string) error {
	for i, s := range src {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		*dst[i] = d
	}
	return nil
}

func (r *repoPG) scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	var total string
	if err := row.Scan(&b.ID, &b.PatientID, &total, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, parseDecimals([]*decimal.Decimal{&b.Total}, []string{total})
}

func (r *repoPG) scanItem(row pgx.Row) (*BillItem, error) {
	var it BillItem
	var unit, amount string
	if err := row.Scan(&it.ID, &it.BillID, &it.LineNo, &it.Description, &it.Quantity, &unit, &amount); err != nil {
		return nil, err
	}
	return &it, parseDecimals([]*decimal.Decimal{&it.UnitPrice, &it.Amount}, []string{unit, amount})
}

func (r *repoPG) scanSummary(row pgx.Row) (*BillSummary, error) {
	var s BillSummary
	var total string
	if err := row.Scan(&s.ID, &s.PatientID, &s.PatientName, &total, &s.ItemCount, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, parseDecimals([]*decimal.Decimal{&s.Total}, []string{total})
}

func (r *repoPG) CreateBill(ctx context.Context, b *Bill) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bills (patient_id, total, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		b.PatientID, b.Total.StringFixed(2), b.CreatedAt,
	).Scan(&b.ID)
	if db.IsForeignKeyViolation(err) {
		return apperr.NotFound("patient", b.PatientID)
	}
	return apperr.Storage("insert bill", err)
}

func (r *repoPG) AddItem(ctx context.Context, it *BillItem) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bill_items (bill_id, line_no, description, qty, unit_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		it.BillID, it.LineNo, it.Description, it.Quantity, it.UnitPrice.String(), it.Amount.StringFixed(2),
	).Scan(&it.ID)
	return apperr.Storage("insert bill item", err)
}

func (r *repoPG) GetBill(ctx context.Context, id int64) (*Bill, error) {
	b, err := r.scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bills WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("bill", id)
	}
	if err != nil {
		return nil, apperr.Storage("get bill", err)
	}
	return b, nil
}

func (r *repoPG) GetItems(ctx context.Context, billID int64) ([]*BillItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+itemCols+` FROM bill_items WHERE bill_id = $1 ORDER BY line_no`, billID)
	if err != nil {
		return nil, apperr.Storage("get bill items", err)
	}
	defer rows.Close()
	var items []*BillItem
	for rows.Next() {
		it, err := r.scanItem(rows)
		if err != nil {
			return nil, apperr.Storage("scan bill item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("get bill items", err)
	}
	return items, nil
}

func (r *repoPG) List(ctx context.Context, patientID int64, limit, offset int) ([]*BillSummary, int, error) {
	qb := db.NewSearchQuery(db.Postgres, summaryFrom, summaryCols)
	if patientID > 0 {
		qb.AddEquals("b.patient_id", patientID)
	}
	qb.OrderBy(summaryOrder)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, apperr.Storage("count bills", err)
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, apperr.Storage("list bills", err)
	}
	defer rows.Close()
	var items []*BillSummary
	for rows.Next() {
		s, err := r.scanSummary(rows)
		if err != nil {
			return nil, 0, apperr.Storage("scan bill", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Storage("list bills", err)
	}
	return items, total, nil
}
