package middleware

import "github.com/labstack/echo/v4"

// subject identifies the caller for rate limiting: the authenticated
// user_id when JWTAuth ran, otherwise "anon".
func subject(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
