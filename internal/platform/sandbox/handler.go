package sandbox

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
)

// SeedHandler exposes the seeder over HTTP. It is only mounted in
// development.
type SeedHandler struct {
	seeder *Seeder
}

func NewSeedHandler(seeder *Seeder) *SeedHandler {
	return &SeedHandler{seeder: seeder}
}

func (h *SeedHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/sandbox/seed", h.handleSeed)
}

func (h *SeedHandler) handleSeed(c echo.Context) error {
	var cfg SeedConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if cfg.ExtraPatients < 0 || cfg.ExtraPatients > 1000 || cfg.BillsPerPatient < 0 || cfg.BillsPerPatient > 50 {
		return echo.NewHTTPError(http.StatusBadRequest, "extra_patients must be 0-1000 and bills_per_patient 0-50")
	}

	result, err := h.seeder.Seed(c.Request().Context(), cfg)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
