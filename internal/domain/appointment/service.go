package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/domain/patient"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/validate"
)

// PatientLookup resolves the patient an appointment is booked for.
type PatientLookup interface {
	GetByID(ctx context.Context, id int64) (*patient.Patient, error)
}

type Service struct {
	appointments Repository
	patients     PatientLookup
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(appointments Repository, patients PatientLookup, logger zerolog.Logger) *Service {
	return &Service{appointments: appointments, patients: patients, logger: logger, now: time.Now}
}

// SetClock replaces the time source used for created_at.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) BookAppointment(ctx context.Context, a *Appointment) error {
	a.Doctor = strings.TrimSpace(a.Doctor)
	a.Date = strings.TrimSpace(a.Date)
	a.Time = strings.TrimSpace(a.Time)
	a.Reason = strings.TrimSpace(a.Reason)
	if err := validate.Struct(a); err != nil {
		return err
	}
	p, err := s.patients.GetByID(ctx, a.PatientID)
	if err != nil {
		return err
	}
	a.PatientName = p.Name
	a.Status = StatusScheduled
	a.CreatedAt = s.now().UTC()
	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	s.logger.Info().
		Int64("appointment_id", a.ID).
		Int64("patient_id", a.PatientID).
		Str("slot", a.Date+" "+a.Time).
		Msg("appointment booked")
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, patientID int64, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, patientID, limit, offset)
}

// CancelAppointment marks the appointment Cancelled. Cancelling twice is a
// no-op.
func (s *Service) CancelAppointment(ctx context.Context, id int64) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCancelled {
		return a, nil
	}
	if err := s.appointments.SetStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	a.Status = StatusCancelled
	s.logger.Info().Int64("appointment_id", id).Msg("appointment cancelled")
	return a, nil
}
