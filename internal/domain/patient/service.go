package patient

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/validate"
)

type Service struct {
	patients Repository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(patients Repository, logger zerolog.Logger) *Service {
	return &Service{patients: patients, logger: logger, now: time.Now}
}

// SetClock replaces the time source used for created_at.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func normalize(p *Patient) {
	p.Name = strings.TrimSpace(p.Name)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Address = strings.TrimSpace(p.Address)
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	normalize(p)
	if err := validate.Struct(p); err != nil {
		return err
	}
	p.CreatedAt = s.now().UTC()
	if err := s.patients.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info().Int64("patient_id", p.ID).Msg("patient registered")
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.ID <= 0 {
		return apperr.Invalid("id", "is required")
	}
	normalize(p)
	if err := validate.Struct(p); err != nil {
		return err
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return err
	}
	stored, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) SearchPatients(ctx context.Context, keyword string, limit, offset int) ([]*Patient, int, error) {
	return s.patients.Search(ctx, keyword, limit, offset)
}
