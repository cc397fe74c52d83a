package api

import (
	"errors"
	"net/http"

	"TicketPulse/internal/domain/models"
	drepo "TicketPulse/internal/domain/repository"
	svcmetrics "TicketPulse/internal/service/metrics"
	"TicketPulse/internal/service/ratelimit"
	"TicketPulse/internal/service/stream"
	"TicketPulse/internal/usecase"
	xhttp "TicketPulse/pkg/http"
	xlogger "TicketPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MonitorHandler exposes the dashboard session: unlock/lock, manual refresh,
// the latest snapshot and its live stream.
type MonitorHandler struct {
	logger  *xlogger.Logger
	session *usecase.MonitorSession
	store   drepo.SnapshotStore
	hub     *stream.Hub
	limiter *ratelimit.Limiter
	metrics *svcmetrics.MonitorMetrics
	burst   float64
	perSec  float64
}

// MonitorOption configures MonitorHandler.
type MonitorOption func(*MonitorHandler)

// WithRateLimit sets the per-address token bucket for unlock and refresh.
func WithRateLimit(l *ratelimit.Limiter, burst, perSec float64) MonitorOption {
	return func(h *MonitorHandler) {
		h.limiter, h.burst, h.perSec = l, burst, perSec
	}
}

func WithMonitorMetrics(m *svcmetrics.MonitorMetrics) MonitorOption {
	return func(h *MonitorHandler) { h.metrics = m }
}

func NewMonitorHandler(
	logger *xlogger.Logger,
	session *usecase.MonitorSession,
	store drepo.SnapshotStore,
	hub *stream.Hub,
	opts ...MonitorOption,
) *MonitorHandler {
	h := &MonitorHandler{logger: logger, session: session, store: store, hub: hub}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *MonitorHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/monitor")
	g.GET("", h.Latest)
	g.GET("/stream", h.Stream)
	g.POST("/unlock", h.Unlock)
	g.POST("/lock", h.Lock)
	g.POST("/refresh", h.Refresh)
}

type sessionState struct {
	Unlocked bool `json:"unlocked"`
}

func errLocked() *xhttp.AppError {
	return xhttp.NewAppError("ERR_LOCKED", "", usecase.ErrSessionLocked.Error(), http.StatusForbidden)
}

func (h *MonitorHandler) Unlock(c echo.Context) error {
	if !h.allow(c, "unlock") {
		h.countUnlock("limited")
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many unlock attempts"))
	}

	req := &models.UnlockRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.countUnlock("invalid")
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.session.Unlock(req.Password); err != nil {
		if errors.Is(err, usecase.ErrInvalidPassword) {
			h.countUnlock("denied")
			h.logger.Warn("monitor unlock denied", xlogger.String("remote", c.RealIP()))
			return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError(err.Error()))
		}
		h.logger.Error("monitor unlock failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("unlock failed").WithError(err))
	}
	h.countUnlock("ok")
	return xhttp.SuccessResponse(c, sessionState{Unlocked: true})
}

func (h *MonitorHandler) Lock(c echo.Context) error {
	if err := h.session.Lock(c.Request().Context()); err != nil {
		h.logger.Error("monitor lock failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("lock failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, sessionState{Unlocked: false})
}

func (h *MonitorHandler) Refresh(c echo.Context) error {
	if !h.allow(c, "refresh") {
		h.countRefresh("limited")
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many refresh requests"))
	}
	if err := h.session.Refresh(); err != nil {
		h.countRefresh("locked")
		return xhttp.AppErrorResponse(c, errLocked())
	}
	h.countRefresh("ok")
	return xhttp.DataResponse(c, http.StatusAccepted, sessionState{Unlocked: true})
}

// Latest returns the most recent dashboard snapshot.
func (h *MonitorHandler) Latest(c echo.Context) error {
	xhttp.NoStore(c)
	if !h.session.Unlocked() {
		return xhttp.AppErrorResponse(c, errLocked())
	}

	snap, err := h.store.Latest(c.Request().Context())
	if errors.Is(err, drepo.ErrNoSnapshot) {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("no snapshot yet"))
	}
	if err != nil {
		h.logger.Error("load snapshot failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("load snapshot failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, snap)
}

// Stream upgrades to a WebSocket that receives every published snapshot.
func (h *MonitorHandler) Stream(c echo.Context) error {
	if !h.session.Unlocked() {
		return xhttp.AppErrorResponse(c, errLocked())
	}
	// The upgrader has already answered the client when this fails.
	if err := h.hub.ServeWS(c.Response(), c.Request()); err != nil {
		h.logger.Warn("stream upgrade failed", xlogger.Error(err))
	}
	return nil
}

func (h *MonitorHandler) allow(c echo.Context, action string) bool {
	if h.limiter == nil {
		return true
	}
	return h.limiter.Allow(action+":"+c.RealIP(), h.burst, h.perSec)
}

func (h *MonitorHandler) countUnlock(result string) {
	if h.metrics != nil {
		h.metrics.UnlockAttempts.WithLabelValues(result).Inc()
	}
}

func (h *MonitorHandler) countRefresh(result string) {
	if h.metrics != nil {
		h.metrics.Refreshes.WithLabelValues(result).Inc()
	}
}
