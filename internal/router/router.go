package router // package router registers the HTTP routes and their middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/performance-signup/internal/config"
	"github.com/iliyamo/performance-signup/internal/handler"
	"github.com/iliyamo/performance-signup/internal/middleware"
	"github.com/iliyamo/performance-signup/internal/service"
)

// Deps carries everything the routes need.  Redis may be nil, in which
// case caching and rate limiting are disabled.
type Deps struct {
	Config    config.Config
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Booking   *service.BookingService
	Log       *zap.Logger
}

// New builds the Echo instance with global middleware and all routes.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: d.Config.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes mounts the public, signup and admin routes on e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)

	signup := &handler.SignupHandler{
		Booking: d.Booking,
		Log:     d.Log,
		// Listings are cached, so a claim must invalidate them.
		OnClaimed: func(ctx context.Context) {
			middleware.PurgeCache(ctx, d.Redis, d.Cache.Prefix, d.Log)
		},
	}
	cal := &handler.CalendarHandler{Booking: d.Booking, Log: d.Log}

	v1 := e.Group("/v1")
	v1.GET("/dates", signup.ListDates, cache)
	v1.POST("/signup", signup.Submit, limit)
	v1.GET("/calendar.ics", cal.Feed, cache)

	if !d.Config.AdminEnabled() {
		d.Log.Info("admin routes disabled: ADMIN_PASSWORD_HASH not set")
		return
	}
	admin := &handler.AdminHandler{
		Booking:      d.Booking,
		Log:          d.Log,
		PasswordHash: d.Config.AdminPasswordHash,
		JWTSecret:    d.Config.JWTSecret,
		AccessTTLMin: d.Config.AccessTTLMin,
	}
	v1.POST("/admin/login", admin.Login, limit)

	protected := v1.Group("/admin", middleware.JWTAuth(d.Config.JWTSecret), middleware.RequireRole(middleware.RoleAdmin))
	protected.GET("/sessions", admin.Sessions)
	protected.POST("/setup", admin.Setup)
}
