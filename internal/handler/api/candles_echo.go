package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"CandlePull/internal/domain/models"
	"CandlePull/internal/usecase"
	xhttp "CandlePull/pkg/http"
	"CandlePull/pkg/logger"
	pgdb "CandlePull/pkg/postgres"
)

// Readiness is the health surface the handler consults: the fast flag for
// liveness of the store connection and a live round-trip check.
type Readiness interface {
	Ready() bool
	Health(ctx context.Context) error
}

// CandlesHandler serves the candle read API.
type CandlesHandler struct {
	l         *logger.Logger
	uc        *usecase.CandlesUseCase
	readiness Readiness
}

// NewCandlesHandler creates the handler.
func NewCandlesHandler(l *logger.Logger, uc *usecase.CandlesUseCase, readiness Readiness) *CandlesHandler {
	return &CandlesHandler{l: l, uc: uc, readiness: readiness}
}

// RegisterRoutes registers API routes on the Echo instance.
func (h *CandlesHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/candles/:symbol", h.Candles)
	e.GET("/healthz", h.Health)
}

// Candles handles GET /candles/:symbol?resolution=&limit=.
func (h *CandlesHandler) Candles(c echo.Context) error {
	symbol := strings.ToUpper(c.Param("symbol"))

	out, err := h.uc.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:     symbol,
		Resolution: c.QueryParam("resolution"),
		RawLimit:   c.QueryParam("limit"),
	})
	if err != nil {
		return h.respondError(c, symbol, err)
	}

	return xhttp.SuccessResponse(c, out)
}

func (h *CandlesHandler) respondError(c echo.Context, symbol string, err error) error {
	var ire *models.InvalidResolutionError
	if errors.As(err, &ire) {
		appErr := xhttp.BadRequestError("ERR_INVALID_RESOLUTION", ire.Error()).
			WithParam("valid", ire.Valid)
		return xhttp.AppErrorResponse(c, appErr)
	}

	var ile *models.InvalidLimitError
	if errors.As(err, &ile) {
		appErr := xhttp.BadRequestError("ERR_INVALID_LIMIT", ile.Error()).
			WithParam("min", ile.Min).
			WithParam("max", ile.Max)
		return xhttp.AppErrorResponse(c, appErr)
	}

	if errors.Is(err, models.ErrNoData) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no candles for "+symbol))
	}

	if errors.Is(err, pgdb.ErrNotReady) {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("ERR_NOT_READY", "store connection not established"))
	}

	var qe *models.QueryError
	if errors.As(err, &qe) {
		h.l.Error("candle query failed",
			logger.String("symbol", symbol),
			logger.String("code", qe.Code),
			logger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.InternalError("ERR_QUERY_FAILED", "candle query failed"))
	}

	h.l.Error("candle request failed", logger.String("symbol", symbol), logger.Error(err))
	return xhttp.InternalServerErrorResponse(c)
}

// Health handles GET /healthz. It reports 503 until the store connection is
// up, then performs a live round trip.
func (h *CandlesHandler) Health(c echo.Context) error {
	if !h.readiness.Ready() {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("ERR_NOT_READY", "store connection not established"))
	}

	start := time.Now()
	if err := h.readiness.Health(c.Request().Context()); err != nil {
		h.l.Warn("health round trip failed", logger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("ERR_STORE_UNHEALTHY", "store round trip failed"))
	}

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":       "ok",
		"roundtrip_ms": time.Since(start).Milliseconds(),
	})
}
