package medicine

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/validate"
)

type Service struct {
	medicines Repository
	logger    zerolog.Logger
}

func NewService(medicines Repository, logger zerolog.Logger) *Service {
	return &Service{medicines: medicines, logger: logger}
}

func check(m *Medicine) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	if err := validate.Struct(m); err != nil {
		return err
	}
	if m.Price.IsNegative() {
		return apperr.Invalid("price", "must not be negative")
	}
	return nil
}

func (s *Service) CreateMedicine(ctx context.Context, m *Medicine) error {
	if err := check(m); err != nil {
		return err
	}
	if err := s.medicines.Create(ctx, m); err != nil {
		return err
	}
	s.logger.Info().Int64("medicine_id", m.ID).Str("name", m.Name).Msg("medicine added")
	return nil
}

func (s *Service) GetMedicine(ctx context.Context, id int64) (*Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

func (s *Service) UpdateMedicine(ctx context.Context, m *Medicine) error {
	if m.ID <= 0 {
		return apperr.Invalid("id", "is required")
	}
	if err := check(m); err != nil {
		return err
	}
	return s.medicines.Update(ctx, m)
}

func (s *Service) SearchMedicines(ctx context.Context, keyword string, limit, offset int) ([]*Medicine, int, error) {
	return s.medicines.Search(ctx, keyword, limit, offset)
}
