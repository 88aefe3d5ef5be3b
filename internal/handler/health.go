package handler // package handler contains the HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers load balancer probes with a plain "ok".
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
