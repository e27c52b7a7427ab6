// Package sandbox loads demo data into an empty clinic store.
package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/appointment"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/billing"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/medicine"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/store"
)

// SeedConfig controls how much synthetic data is generated on top of the
// fixed demo records.
type SeedConfig struct {
	ExtraPatients   int   `json:"extra_patients"`
	BillsPerPatient int   `json:"bills_per_patient"`
	Seed            int64 `json:"seed"`
}

// SeedResult summarises what Seed inserted.
type SeedResult struct {
	Skipped      bool          `json:"skipped"`
	Patients     int           `json:"patients"`
	Medicines    int           `json:"medicines"`
	Appointments int           `json:"appointments"`
	Bills        int           `json:"bills"`
	Duration     time.Duration `json:"duration"`
}

// Seeder writes demo data through the store and the billing service.
type Seeder struct {
	store  *store.Store
	bills  *billing.Service
	logger zerolog.Logger
	now    func() time.Time
}

func NewSeeder(st *store.Store, bills *billing.Service, logger zerolog.Logger) *Seeder {
	return &Seeder{
		store:  st,
		bills:  bills,
		logger: logger.With().Str("component", "seeder").Logger(),
		now:    time.Now,
	}
}

func demoPatients() []*patient.Patient {
	age1, age2 := 30, 28
	return []*patient.Patient{
		{Name: "Ram Kumar", Age: &age1, Gender: "Male", Phone: "9876543210", Address: "123 MG Road"},
		{Name: "Sita Devi", Age: &age2, Gender: "Female", Phone: "9123456780", Address: "45 Park Lane"},
	}
}

func demoMedicines() []*medicine.Medicine {
	return []*medicine.Medicine{
		{Name: "Paracetamol", Description: "500mg tablet", Price: decimal.RequireFromString("2.50"), Stock: 200},
		{Name: "Amoxicillin", Description: "250mg capsule", Price: decimal.RequireFromString("5.00"), Stock: 120},
	}
}

// Seed inserts the demo records, then cfg.ExtraPatients synthetic patients
// with cfg.BillsPerPatient bills each, all in one transaction. A store that
// already has patients is left untouched.
func (s *Seeder) Seed(ctx context.Context, cfg SeedConfig) (*SeedResult, error) {
	start := time.Now()

	_, existing, err := s.store.Patients.List(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		s.logger.Info().Int("patients", existing).Msg("store not empty, skipping seed")
		return &SeedResult{Skipped: true}, nil
	}

	result := &SeedResult{}
	gen := NewDataGenerator(cfg.Seed)

	err = s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now().UTC().Truncate(time.Microsecond)

		patients := demoPatients()
		for _, p := range patients {
			p.CreatedAt = now
			if err := s.store.Patients.Create(ctx, p); err != nil {
				return fmt.Errorf("seed patient %s: %w", p.Name, err)
			}
		}
		for _, m := range demoMedicines() {
			if err := s.store.Medicines.Create(ctx, m); err != nil {
				return fmt.Errorf("seed medicine %s: %w", m.Name, err)
			}
			result.Medicines++
		}

		appts := []*appointment.Appointment{
			{PatientID: patients[0].ID, Doctor: "Dr. Sharma", Date: "2025-08-15", Time: "10:00", Reason: "Fever"},
			{PatientID: patients[1].ID, Doctor: "Dr. Mehta", Date: "2025-08-16", Time: "14:00", Reason: "Checkup"},
		}
		for _, a := range appts {
			a.Status = appointment.StatusScheduled
			a.CreatedAt = now
			if err := s.store.Appointments.Create(ctx, a); err != nil {
				return fmt.Errorf("seed appointment: %w", err)
			}
			result.Appointments++
		}

		for i := 0; i < cfg.ExtraPatients; i++ {
			p := gen.GeneratePatient()
			p.CreatedAt = now
			if err := s.store.Patients.Create(ctx, p); err != nil {
				return fmt.Errorf("seed synthetic patient: %w", err)
			}
			patients = append(patients, p)

			for j := 0; j < cfg.BillsPerPatient; j++ {
				if _, err := s.bills.CreateBill(ctx, p.ID, gen.GenerateBillItems()); err != nil {
					return fmt.Errorf("seed bill for patient %d: %w", p.ID, err)
				}
				result.Bills++
			}
		}
		result.Patients = len(patients)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	s.logger.Info().
		Int("patients", result.Patients).
		Int("medicines", result.Medicines).
		Int("appointments", result.Appointments).
		Int("bills", result.Bills).
		Msg("demo data seeded")
	return result, nil
}
