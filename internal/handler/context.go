package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/middleware"
	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/service"
)

// requestTimeout bounds every store round trip made for one request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// identity returns the caller set by JWTAuth.
func identity(c echo.Context) (service.Identity, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return service.Identity{}, echo.ErrUnauthorized
	}
	return service.Identity{UserID: id, Role: middleware.Role(c)}, nil
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, errBadRequest("invalid " + name)
	}
	return n, nil
}

// queryInt parses an optional integer query parameter; absent means nil.
func queryInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errBadRequest("invalid " + name)
	}
	return &n, nil
}

func queryIntOr(c echo.Context, name string, def int) (int, error) {
	p, err := queryInt(c, name)
	if err != nil || p == nil {
		return def, err
	}
	return *p, nil
}

func paramDate(c echo.Context, name string) (model.Date, error) {
	d, err := model.ParseDate(c.Param(name))
	if err != nil {
		return model.Date{}, errBadRequest("invalid " + name + ": expected YYYY-MM-DD")
	}
	return d, nil
}
