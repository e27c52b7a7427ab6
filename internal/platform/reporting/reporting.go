// Package reporting writes the predefined CSV exports of clinic records.
package reporting

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/store"
)

// ExportDefinition describes one predefined export.
type ExportDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Headers     []string `json:"headers"`
	FileName    string   `json:"file_name"`
}

// PredefinedExports is the list of available exports.
var PredefinedExports = []ExportDefinition{
	{
		ID:          "patients",
		Name:        "Patients",
		Description: "All registered patients, newest first",
		Headers:     []string{"patient_id", "name", "age", "gender", "phone", "address", "added_on"},
		FileName:    "patients.csv",
	},
	{
		ID:          "appointments",
		Name:        "Appointments",
		Description: "All appointments with patient names, ordered by date and time",
		Headers:     []string{"appointment_id", "patient_id", "patient_name", "doctor", "date", "time", "reason", "status"},
		FileName:    "appointments.csv",
	},
	{
		ID:          "medicines",
		Name:        "Medicines",
		Description: "Pharmacy stock ordered by name",
		Headers:     []string{"medicine_id", "name", "description", "price", "stock"},
		FileName:    "medicines.csv",
	},
	{
		ID:          "bills",
		Name:        "Bills",
		Description: "Bill history with patient names, newest first",
		Headers:     []string{"bill_id", "patient_id", "patient_name", "total", "created_on"},
		FileName:    "bills.csv",
	},
}

// FindExport looks up an export by ID.
func FindExport(id string) *ExportDefinition {
	for i := range PredefinedExports {
		if PredefinedExports[i].ID == id {
			return &PredefinedExports[i]
		}
	}
	return nil
}

// pageSize bounds how many records one store call returns while exporting.
const pageSize = 500

// rowsFunc returns one page of CSV records and the total record count.
type rowsFunc func(ctx context.Context, limit, offset int) ([][]string, int, error)

// Exporter streams exports out of the store.
type Exporter struct {
	sources map[string]rowsFunc
	logger  zerolog.Logger
}

func NewExporter(st *store.Store, logger zerolog.Logger) *Exporter {
	return &Exporter{
		sources: map[string]rowsFunc{
			"patients":     patientRows(st),
			"appointments": appointmentRows(st),
			"medicines":    medicineRows(st),
			"bills":        billRows(st),
		},
		logger: logger.With().Str("component", "reporting").Logger(),
	}
}

// Write streams export id to w as CSV and returns the number of data rows.
func (e *Exporter) Write(ctx context.Context, id string, w io.Writer) (int, error) {
	def := FindExport(id)
	fetch, ok := e.sources[id]
	if def == nil || !ok {
		return 0, apperr.NotFound("export", id)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(def.Headers); err != nil {
		return 0, fmt.Errorf("write %s header: %w", id, err)
	}

	written := 0
	for {
		rows, total, err := fetch(ctx, pageSize, written)
		if err != nil {
			return written, err
		}
		if err := cw.WriteAll(rows); err != nil {
			return written, fmt.Errorf("write %s rows: %w", id, err)
		}
		written += len(rows)
		if len(rows) == 0 || written >= total {
			break
		}
	}
	cw.Flush()
	return written, cw.Error()
}

// WriteFile writes export id to path on fs.
func (e *Exporter) WriteFile(ctx context.Context, fs afero.Fs, id, path string) (int, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	f, err := fs.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	n, err := e.Write(ctx, id, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fs.Remove(path)
		return 0, err
	}
	e.logger.Info().Str("export", id).Str("path", path).Int("rows", n).Msg("export written")
	return n, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func patientRows(st *store.Store) rowsFunc {
	return func(ctx context.Context, limit, offset int) ([][]string, int, error) {
		items, total, err := st.Patients.List(ctx, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		rows := make([][]string, 0, len(items))
		for _, p := range items {
			age := ""
			if p.Age != nil {
				age = strconv.Itoa(*p.Age)
			}
			rows = append(rows, []string{
				strconv.FormatInt(p.ID, 10), p.Name, age, p.Gender, p.Phone, p.Address, formatTime(p.CreatedAt),
			})
		}
		return rows, total, nil
	}
}

func appointmentRows(st *store.Store) rowsFunc {
	return func(ctx context.Context, limit, offset int) ([][]string, int, error) {
		items, total, err := st.Appointments.List(ctx, 0, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		rows := make([][]string, 0, len(items))
		for _, a := range items {
			rows = append(rows, []string{
				strconv.FormatInt(a.ID, 10), strconv.FormatInt(a.PatientID, 10), a.PatientName,
				a.Doctor, a.Date, a.Time, a.Reason, a.Status,
			})
		}
		return rows, total, nil
	}
}

func medicineRows(st *store.Store) rowsFunc {
	return func(ctx context.Context, limit, offset int) ([][]string, int, error) {
		items, total, err := st.Medicines.Search(ctx, "", limit, offset)
		if err != nil {
			return nil, 0, err
		}
		rows := make([][]string, 0, len(items))
		for _, m := range items {
			rows = append(rows, []string{
				strconv.FormatInt(m.ID, 10), m.Name, m.Description, billing.Money(m.Price), strconv.Itoa(m.Stock),
			})
		}
		return rows, total, nil
	}
}

func billRows(st *store.Store) rowsFunc {
	return func(ctx context.Context, limit, offset int) ([][]string, int, error) {
		items, total, err := st.Bills.List(ctx, 0, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		rows := make([][]string, 0, len(items))
		for _, b := range items {
			rows = append(rows, []string{
				strconv.FormatInt(b.ID, 10), strconv.FormatInt(b.PatientID, 10), b.PatientName,
				billing.Money(b.Total), formatTime(b.CreatedAt),
			})
		}
		return rows, total, nil
	}
}
