package medicine

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

// NUMERIC is read back as text so decimal keeps the stored scale.
const medicineColsPG = `id, name, description, price::text, stock`

func (r *repoPG) scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	var price string
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &price, &m.Stock); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	m.Price = d
	return &m, nil
}

func (r *repoPG) Create(ctx context.Context, m *Medicine) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medicines (name, description, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		m.Name, m.Description, m.Price.String(), m.Stock,
	).Scan(&m.ID)
	return apperr.Storage("insert medicine", err)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Medicine, error) {
	m, err := r.scanMedicine(r.conn(ctx).QueryRow(ctx, `SELECT `+medicineColsPG+` FROM medicines WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("medicine", id)
	}
	if err != nil {
		return nil, apperr.Storage("get medicine", err)
	}
	return m, nil
}

func (r *repoPG) Update(ctx context.Context, m *Medicine) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicines SET name = $2, description = $3, price = $4, stock = $5
		WHERE id = $1`,
		m.ID, m.Name, m.Description, m.Price.String(), m.Stock)
	if err != nil {
		return apperr.Storage("update medicine", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("medicine", m.ID)
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, keyword string, limit, offset int) ([]*Medicine, int, error) {
	qb := db.NewSearchQuery(db.Postgres, "medicines", medicineColsPG)
	qb.AddKeyword(keyword, searchColumns...)
	qb.OrderBy(listOrder)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, apperr.Storage("count medicines", err)
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, apperr.Storage("list medicines", err)
	}
	defer rows.Close()
	var items []*Medicine
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, 0, apperr.Storage("scan medicine", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Storage("list medicines", err)
	}
	return items, total, nil
}
