package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/service"
)

// badRequest is a 400 raised by the handler layer itself, for malformed
// path params, query strings and bodies.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func errBadRequest(msg string) error { return &badRequest{msg} }

var kindStatus = map[service.Kind]int{
	service.KindNotFound:            http.StatusNotFound,
	service.KindForbidden:           http.StatusForbidden,
	service.KindInvalidState:        http.StatusBadRequest,
	service.KindCapacityExceeded:    http.StatusBadRequest,
	service.KindSlotLimitExceeded:   http.StatusBadRequest,
	service.KindDuplicateEnrollment: http.StatusBadRequest,
	service.KindConflictingWrite:    http.StatusConflict,
	service.KindInvalidInput:        http.StatusBadRequest,
	service.KindLinkedData:          http.StatusBadRequest,
}

// writeError renders err as {"error": ...}. Validation failures also carry
// a per-field map. Anything unrecognized is logged and answered with 500.
func writeError(c echo.Context, err error) error {
	var (
		se   *service.Error
		br   *badRequest
		ve   validator.ValidationErrors
		herr *echo.HTTPError
	)
	switch {
	case errors.As(err, &se):
		if code, ok := kindStatus[se.Kind]; ok {
			return c.JSON(code, echo.Map{"error": se.Error()})
		}
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.As(err, &ve):
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(translator)
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	case errors.As(err, &br):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": br.msg})
	case errors.As(err, &herr):
		if herr.Code < http.StatusInternalServerError {
			return c.JSON(herr.Code, echo.Map{"error": strings.ToLower(http.StatusText(herr.Code))})
		}
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// HTTPErrorHandler answers errors that escape handlers, such as unknown
// routes and middleware failures, in the same shape.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		var herr *echo.HTTPError
		code := http.StatusInternalServerError
		if errors.As(err, &herr) {
			code = herr.Code
		}
		_ = c.NoContent(code)
		return
	}
	if werr := writeError(c, err); werr != nil {
		c.Logger().Error(werr)
	}
}
