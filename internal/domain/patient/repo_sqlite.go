package patient

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

type patientRow struct {
	ID        int64         `db:"id"`
	Name      string        `db:"name"`
	Age       sql.NullInt64 `db:"age"`
	Gender    string        `db:"gender"`
	Phone     string        `db:"phone"`
	Address   string        `db:"address"`
	CreatedAt string        `db:"created_at"`
}

func (row *patientRow) toModel() (*Patient, error) {
	createdAt, err := db.ParseTime(row.CreatedAt)
	if err != nil {
		return nil, err
	}
	p := &Patient{
		ID:        row.ID,
		Name:      row.Name,
		Gender:    row.Gender,
		Phone:     row.Phone,
		Address:   row.Address,
		CreatedAt: createdAt,
	}
	if row.Age.Valid {
		age := int(row.Age.Int64)
		p.Age = &age
	}
	return p, nil
}

func (r *repoSQLite) Create(ctx context.Context, p *Patient) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO patients (name, age, gender, phone, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Age, p.Gender, p.Phone, p.Address, db.FormatTime(p.CreatedAt))
	if err != nil {
		return apperr.Storage("insert patient", err)
	}
	p.ID, err = res.LastInsertId()
	return apperr.Storage("insert patient", err)
}

func (r *repoSQLite) GetByID(ctx context.Context, id int64) (*Patient, error) {
	var row patientRow
	err := r.conn(ctx).GetContext(ctx, &row, `SELECT `+patientCols+` FROM patients WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("patient", id)
	}
	if err != nil {
		return nil, apperr.Storage("get patient", err)
	}
	p, err := row.toModel()
	return p, apperr.Storage("get patient", err)
}

func (r *repoSQLite) Update(ctx context.Context, p *Patient) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		UPDATE patients SET name = ?, age = ?, gender = ?, phone = ?, address = ?
		WHERE id = ?`,
		p.Name, p.Age, p.Gender, p.Phone, p.Address, p.ID)
	if err != nil {
		return apperr.Storage("update patient", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("patient", p.ID)
	}
	return nil
}

func (r *repoSQLite) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return r.Search(ctx, "", limit, offset)
}

func (r *repoSQLite) Search(ctx context.Context, keyword string, limit, offset int) ([]*Patient, int, error) {
	qb := db.NewSearchQuery(db.SQLite, "patients", patientCols)
	qb.AddKeyword(keyword, searchColumns...)
	qb.OrderBy(listOrder)

	var total int
	if err := r.conn(ctx).GetContext(ctx, &total, qb.CountSQL(), qb.CountArgs()...); err != nil {
		return nil, 0, apperr.Storage("count patients", err)
	}

	var rows []patientRow
	if err := r.conn(ctx).SelectContext(ctx, &rows, qb.DataSQL(), qb.DataArgs(limit, offset)...); err != nil {
		return nil, 0, apperr.Storage("list patients", err)
	}
	items := make([]*Patient, 0, len(rows))
	for i := range rows {
		p, err := rows[i].toModel()
		if err != nil {
			return nil, 0, apperr.Storage("scan patient", err)
		}
		items = append(items, p)
	}
	return items, total, nil
}
