package api

import (
	"errors"

	"TicketPulse/internal/usecase"
	xhttp "TicketPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	catalog *usecase.Catalog
}

func NewEventHandler(catalog *usecase.Catalog) *EventHandler {
	return &EventHandler{catalog: catalog}
}

func (h *EventHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/event")
	g.GET("", h.Event)
	g.GET("/teacher", h.TeacherTier)
}

func (h *EventHandler) Event(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.catalog.Event())
}

func (h *EventHandler) TeacherTier(c echo.Context) error {
	tier, err := h.catalog.TeacherTier()
	if errors.Is(err, usecase.ErrTierNotFound) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("teacher tier is not available"))
	}
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("load teacher tier").WithError(err))
	}
	return xhttp.SuccessResponse(c, tier)
}
