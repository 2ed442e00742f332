package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id" // uint64
	ContextRole   = "role"    // string
)

// JWTAuth validates a Bearer access token and stores its subject and role
// in the request context under ContextUserID and ContextRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextRole, claims.Role)
			return next(c)
		}
	}
}
