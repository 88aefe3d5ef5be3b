package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/performance-signup/internal/service"
)

type CalendarHandler struct {
	Booking *service.BookingService
	Log     *zap.Logger
}

// Feed handles GET /v1/calendar.ics.
func (h *CalendarHandler) Feed(c echo.Context) error {
	data, err := h.Booking.CalendarFeed(c.Request().Context())
	if err != nil {
		h.Log.Error("calendar feed failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "schedule unavailable"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="performances.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", data)
}
