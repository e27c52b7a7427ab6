package appointment

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

const apptColsSQLite = `a.id, a.patient_id, p.name AS patient_name, a.doctor, a.date, a.time, a.reason, a.status, a.created_at`

type appointmentRow struct {
	ID          int64  `db:"id"`
	PatientID   int64  `db:"patient_id"`
	PatientName string `db:"patient_name"`
	Doctor      string `db:"doctor"`
	Date        string `db:"date"`
	Time        string `db:"time"`
	Reason      string `db:"reason"`
	Status      string `db:"status"`
	CreatedAt   string `db:"created_at"`
}

func (row *appointmentRow) toModel() (*Appointment, error) {
	createdAt, err := db.ParseTime(row.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &Appointment{
		ID:          row.ID,
		PatientID:   row.PatientID,
		PatientName: row.PatientName,
		Doctor:      row.Doctor,
		Date:        row.Date,
		Time:        row.Time,
		Reason:      row.Reason,
		Status:      row.Status,
		CreatedAt:   createdAt,
	}, nil
}

func (r *repoSQLite) Create(ctx context.Context, a *Appointment) error {
	res, err := r.conn(ctx).ExecContext(ctx, `
		INSERT INTO appointments (patient_id, doctor, date, time, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.PatientID, a.Doctor, a.Date, a.Time, a.Reason, a.Status, db.FormatTime(a.CreatedAt))
	if db.IsForeignKeyViolation(err) {
		return apperr.NotFound("patient", a.PatientID)
	}
	if err != nil {
		return apperr.Storage("insert appointment", err)
	}
	a.ID, err = res.LastInsertId()
	return apperr.Storage("insert appointment", err)
}

func (r *repoSQLite) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	var row appointmentRow
	err := r.conn(ctx).GetContext(ctx, &row, `SELECT `+apptColsSQLite+` FROM `+appointmentFrom+` WHERE a.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("appointment", id)
	}
	if err != nil {
		return nil, apperr.Storage("get appointment", err)
	}
	a, err := row.toModel()
	return a, apperr.Storage("get appointment", err)
}

func (r *repoSQLite) SetStatus(ctx context.Context, id int64, status string) error {
	res, err := r.conn(ctx).ExecContext(ctx, `UPDATE appointments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return apperr.Storage("update appointment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("appointment", id)
	}
	return nil
}

func (r *repoSQLite) List(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	qb := db.NewSearchQuery(db.SQLite, appointmentFrom, apptColsSQLite)
	if patientID > 0 {
		qb.AddEquals("a.patient_id", patientID)
	}
	qb.OrderBy(listOrder)

	var total int
	if err := r.conn(ctx).GetContext(ctx, &total, qb.CountSQL(), qb.CountArgs()...); err != nil {
		return nil, 0, apperr.Storage("count appointments", err)
	}

	var rows []appointmentRow
	if err := r.conn(ctx).SelectContext(ctx, &rows, qb.DataSQL(), qb.DataArgs(limit, offset)...); err != nil {
		return nil, 0, apperr.Storage("list appointments", err)
	}
	items := make([]*Appointment, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toModel()
		if err != nil {
			return nil, 0, apperr.Storage("scan appointment", err)
		}
		items = append(items, a)
	}
	return items, total, nil
}
