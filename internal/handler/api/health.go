package api

import (
	"TicketPulse/internal/usecase"
	xhttp "TicketPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	session *usecase.MonitorSession
}

func NewHealthHandler(session *usecase.MonitorSession) *HealthHandler {
	return &HealthHandler{session: session}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

type healthResponse struct {
	Status       string `json:"status"`
	Unlocked     bool   `json:"unlocked"`
	LoginEnabled bool   `json:"loginEnabled"`
}

func (h *HealthHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, healthResponse{
		Status:       "ok",
		Unlocked:     h.session.Unlocked(),
		LoginEnabled: h.session.LoginEnabled(),
	})
}
