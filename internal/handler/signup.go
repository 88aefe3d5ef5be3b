package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/performance-signup/internal/model"
	"github.com/iliyamo/performance-signup/internal/schedule"
	"github.com/iliyamo/performance-signup/internal/service"
)

const msgMissingFields = "Missing required fields"

// jsonpCallback restricts callback names to dotted JavaScript identifiers.
var jsonpCallback = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// SignupHandler serves the public listing and claim endpoints.  OnClaimed,
// when set, runs after every successful claim; the router uses it to purge
// cached listings.
type SignupHandler struct {
	Booking   *service.BookingService
	Log       *zap.Logger
	OnClaimed func(ctx context.Context)
}

type dateOption struct {
	Date           string `json:"date"`
	Label          string `json:"label"`
	Available      bool   `json:"available"`
	RawDate        string `json:"rawDate"`
	ISODate        string `json:"isoDate"`
	TotalSlots     int    `json:"totalSlots"`
	OccupiedSlots  int    `json:"occupiedSlots"`
	AvailableSlots int    `json:"availableSlots"`
}

type datesResp struct {
	Success bool         `json:"success"`
	Dates   []dateOption `json:"dates"`
}

// ListDates handles GET /v1/dates.  With a callback query parameter the
// payload is wrapped as JSONP.
func (h *SignupHandler) ListDates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	sessions := h.Booking.ListAvailable(ctx)
	resp := datesResp{Success: true, Dates: make([]dateOption, 0, len(sessions))}
	for _, s := range sessions {
		resp.Dates = append(resp.Dates, dateOption{
			Date:           s.RawDateLabel,
			Label:          s.Label,
			Available:      true,
			RawDate:        s.RawDateLabel,
			ISODate:        s.Date.Format("2006-01-02"),
			TotalSlots:     s.TotalSlots,
			OccupiedSlots:  s.OccupiedSlots,
			AvailableSlots: s.AvailableSlots,
		})
	}

	if cb := c.QueryParam("callback"); cb != "" {
		if !jsonpCallback.MatchString(cb) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid callback"})
		}
		return c.JSONP(http.StatusOK, cb, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

// Submit handles POST /v1/signup.  The body may be JSON or a form.
func (h *SignupHandler) Submit(c echo.Context) error {
	var reg model.Registration
	if err := c.Bind(&reg); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request body"})
	}
	if len(reg.MissingFields()) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": msgMissingFields})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	claim, err := h.Booking.Claim(ctx, reg)
	if err != nil {
		return c.JSON(claimStatus(err), echo.Map{"success": false, "message": schedule.Message(err)})
	}
	if h.OnClaimed != nil {
		h.OnClaimed(context.WithoutCancel(ctx))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": schedule.Message(nil),
		"line":    claim.Line,
	})
}

func claimStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRegistration):
		return http.StatusBadRequest
	case errors.Is(err, schedule.ErrNoAvailableSlot), errors.Is(err, schedule.ErrSlotAlreadyTaken):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}
