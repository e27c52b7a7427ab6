package reporting

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
)

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	exporter *Exporter
}

func NewHandler(exporter *Exporter) *Handler {
	return &Handler{exporter: exporter}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports")
	g.GET("/exports", h.ListExports)
	g.GET("/exports/:id", h.DownloadExport)
}

// ListExports returns all available export definitions.
func (h *Handler) ListExports(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedExports)
}

// DownloadExport streams an export as a CSV attachment.
func (h *Handler) DownloadExport(c echo.Context) error {
	def := FindExport(c.Param("id"))
	if def == nil {
		return echo.NewHTTPError(http.StatusNotFound, "export not found")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", def.FileName))

	// Headers go out with the first write, so a failure is only reportable
	// before anything was sent.
	if _, err := h.exporter.Write(c.Request().Context(), def.ID, res); err != nil {
		if res.Committed {
			return err
		}
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}
	if !res.Committed {
		res.WriteHeader(http.StatusOK)
	}
	return nil
}
