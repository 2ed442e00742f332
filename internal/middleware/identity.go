package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's id, or false on public routes.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ContextUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role, or "" on public routes.
func Role(c echo.Context) string {
	r, _ := c.Get(ContextRole).(string)
	return r
}

// principal names the caller for rate-limit keys: the user id, or "anon".
func principal(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
