package medicine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/db"
)

type repoSQLite struct{ db *sqlx.DB }

func NewRepoSQLite(sqlDB *sqlx.DB) Repository { return &repoSQLite{db: sqlDB} }

func (r *repoSQLite) conn(ctx context.Context) db.SQLiteQueryer {
	return db.SQLiteConn(ctx, r.db)
}

func (r *repoSQLite) Create(ctx context.Context, m *Medicine) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO medicines (name, description, price, stock)
		VALUES (?, ?, ?, ?)`,
		m.Name, m.Description, m.Price.String(), m.Stock)
	if err != nil {
		return apperr.Storage("insert medicine", err)
	}
	m.ID, err = res.LastInsertId()
	return apperr.Storage("insert medicine", err)
}

func (r *repoSQLite) GetByID(ctx context.Context, id int64) (*Medicine, error) {
	var m Medicine
	err := r.conn(ctx).GetContext(ctx, &m, `SELECT `+medicineCols+` FROM medicines WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("medicine", id)
	}
	if err != nil {
		return nil, apperr.Storage("get medicine", err)
	}
	return &m, nil
}

func (r *repoSQLite) Update(ctx context.Context, m *Medicine) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE medicines SET name = ?, description = ?, price = ?, stock = ?
		WHERE id = ?`,
		m.Name, m.Description, m.Price.String(), m.Stock, m.ID)
	if err != nil {
		return apperr.Storage("update medicine", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("medicine", m.ID)
	}
	return nil
}

func (r *repoSQLite) Search(ctx context.Context, keyword string, limit, offset int) ([]*Medicine, int, error) {
	qb := db.NewSearchQuery(db.SQLite, "medicines", medicineCols)
	qb.AddKeyword(keyword, searchColumns...)
	qb.OrderBy(listOrder)

	var total int
	if err := r.conn(ctx).GetContext(ctx, &total, qb.CountSQL(), qb.CountArgs()...); err != nil {
		return nil, 0, apperr.Storage("count medicines", err)
	}

	var items []*Medicine
	if err := r.conn(ctx).SelectContext(ctx, &items, qb.DataSQL(), qb.DataArgs(limit, offset)...); err != nil {
		return nil, 0, apperr.Storage("list medicines", err)
	}
	return items, total, nil
}
