package invoice

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/apperr"
)

type Handler struct {
	renderer *Renderer
}

func NewHandler(r *Renderer) *Handler {
	return &Handler{renderer: r}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/bills/:id/invoice", h.GetInvoice)
}

// GetInvoice streams the rendered invoice. ?format=text|document selects the
// encoding; ?download=true asks the client to save it as a file.
func (h *Handler) GetInvoice(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	format, err := ParseFormat(c.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	art, err := h.renderer.BuildInvoice(c.Request().Context(), id, format)
	if err != nil {
		return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
	}

	disposition := "inline"
	if c.QueryParam("download") == "true" || format == FormatDocument {
		disposition = "attachment"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, art.Name))
	return c.Blob(http.StatusOK, art.ContentType, art.Data)
}
