package api

import (
	"net/http"

	"TicketPulse/internal/domain/models"
	drepo "TicketPulse/internal/domain/repository"
	"TicketPulse/internal/usecase"
	xhttp "TicketPulse/pkg/http"
	xlogger "TicketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TicketsHandler serves the aggregated availability of every active tier.
type TicketsHandler struct {
	logger  *xlogger.Logger
	fetcher drepo.SnapshotFetcher
	tiers   []models.TierConfig
}

func NewTicketsHandler(logger *xlogger.Logger, fetcher drepo.SnapshotFetcher, tiers []models.TierConfig) *TicketsHandler {
	return &TicketsHandler{
		logger:  logger,
		fetcher: fetcher,
		tiers:   append([]models.TierConfig(nil), tiers...),
	}
}

func (h *TicketsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/tickets", h.Tickets)
}

// Tickets always reaches upstream; responses must not be cached anywhere.
func (h *TicketsHandler) Tickets(c echo.Context) error {
	xhttp.NoStore(c)

	records, err := h.fetcher.FetchSnapshot(c.Request().Context(), h.tiers)
	if err != nil {
		h.logger.Error("ticket aggregation failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_TOTAL_FAILURE", "", usecase.TotalFailureMessage, http.StatusInternalServerError).WithError(err))
	}
	return xhttp.SuccessResponse(c, records)
}
