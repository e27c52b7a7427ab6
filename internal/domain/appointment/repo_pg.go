package appointment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

const apptCols = `a.id, a.patient_id, p.name, a.doctor, a.date, a.time, a.reason, a.status, a.created_at`

func (r *repoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.Doctor, &a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor, date, time, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		a.PatientID, a.Doctor, a.Date, a.Time, a.Reason, a.Status, a.CreatedAt,
	).Scan(&a.ID)
	if db.IsForeignKeyViolation(err) {
		return apperr.NotFound("patient", a.PatientID)
	}
	return apperr.Storage("insert appointment", err)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	a, err := r.scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM `+appointmentFrom+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("appointment", id)
	}
	if err != nil {
		return nil, apperr.Storage("get appointment", err)
	}
	return a, nil
}

func (r *repoPG) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE appointments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return apperr.Storage("update appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment", id)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	qb := db.NewSearchQuery(db.Postgres, appointmentFrom, apptCols)
	if patientID > 0 {
		qb.AddEquals("a.patient_id", patientID)
	}
	qb.OrderBy(listOrder)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, apperr.Storage("count appointments", err)
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, apperr.Storage("list appointments", err)
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, 0, apperr.Storage("scan appointment", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Storage("list appointments", err)
	}
	return items, total, nil
}
