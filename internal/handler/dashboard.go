package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/service"
)

// DashboardHandler serves the staff dashboard figures.
type DashboardHandler struct {
	Reporting *service.ReportingService
}

func NewDashboardHandler(reporting *service.ReportingService) *DashboardHandler {
	if reporting == nil {
		panic("nil reporting service passed to NewDashboardHandler")
	}
	return &DashboardHandler{Reporting: reporting}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.Reporting.DashboardStats(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *DashboardHandler) TodaySchedules(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Reporting.TodaySchedules(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
