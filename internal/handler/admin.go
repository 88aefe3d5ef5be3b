package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/performance-signup/internal/middleware"
	"github.com/iliyamo/performance-signup/internal/model"
	"github.com/iliyamo/performance-signup/internal/service"
	"github.com/iliyamo/performance-signup/internal/utils"
)

// AdminHandler serves the password-protected schedule overview.  There is
// a single admin identity whose bcrypt hash comes from configuration.
type AdminHandler struct {
	Booking      *service.BookingService
	Log          *zap.Logger
	PasswordHash string
	JWTSecret    string
	AccessTTLMin int
}

type loginReq struct {
	Password string `json:"password" form:"password"`
}

type sessionResp struct {
	RawDate       string            `json:"rawDate"`
	GuestArtist   string            `json:"guestArtist"`
	Label         string            `json:"label,omitempty"`
	Category      string            `json:"category"`
	Date          string            `json:"date,omitempty"`
	Past          bool              `json:"past"`
	TotalSlots    int               `json:"totalSlots"`
	OccupiedSlots int               `json:"occupiedSlots"`
	Performers    []model.Performer `json:"performers"`
}

// Login handles POST /v1/admin/login and returns a bearer token.
func (h *AdminHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Password) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}
	if !utils.VerifyPassword(h.PasswordHash, req.Password) {
		h.Log.Warn("admin login rejected", zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	access, err := utils.NewAccessToken(h.JWTSecret, "admin", middleware.RoleAdmin, h.AccessTTLMin)
	if err != nil {
		h.Log.Error("issue admin token failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": access.Token, "expires": access.Exp})
}

// Sessions handles GET /v1/admin/sessions: every session, past and full
// ones included, in sheet order.
func (h *AdminHandler) Sessions(c echo.Context) error {
	sessions, err := h.Booking.Overview(c.Request().Context())
	if err != nil {
		h.Log.Error("admin overview failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "schedule unavailable"})
	}
	out := make([]sessionResp, 0, len(sessions))
	for _, s := range sessions {
		r := sessionResp{
			RawDate:       s.RawDateLabel,
			GuestArtist:   s.GuestArtist,
			Label:         s.Label,
			Category:      string(s.Category),
			Past:          s.Past,
			TotalSlots:    s.TotalSlots,
			OccupiedSlots: s.OccupiedSlots,
			Performers:    s.Performers,
		}
		if s.DateKnown {
			r.Date = s.Date.Format("2006-01-02")
		}
		if r.Performers == nil {
			r.Performers = []model.Performer{}
		}
		out = append(out, r)
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": out})
}

// Setup handles POST /v1/admin/setup.
func (h *AdminHandler) Setup(c echo.Context) error {
	if err := h.Booking.Setup(c.Request().Context()); err != nil {
		h.Log.Error("schedule setup failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "schedule unavailable"})
	}
	return c.NoContent(http.StatusNoContent)
}
