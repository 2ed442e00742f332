package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/service"
)

// AttendanceHandler serves attendance sheets and member statistics.
type AttendanceHandler struct {
	Attendance *service.AttendanceService
}

func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	if attendance == nil {
		panic("nil attendance service passed to NewAttendanceHandler")
	}
	return &AttendanceHandler{Attendance: attendance}
}

type attendanceBatchReq struct {
	ScheduleID uint64     `json:"schedule_id" validate:"required"`
	Date       model.Date `json:"date"`
	MemberIDs  []uint64   `json:"member_ids"`
}

// Sheet handles GET /v1/attendance/schedule/:schedule_id/date/:date.
func (h *AttendanceHandler) Sheet(c echo.Context) error {
	scheduleID, err := paramID(c, "schedule_id")
	if err != nil {
		return writeError(c, err)
	}
	date, err := paramDate(c, "date")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rows, err := h.Attendance.Sheet(ctx, scheduleID, date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

// SaveBatch replaces the day's records; member_ids lists who was present.
func (h *AttendanceHandler) SaveBatch(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req attendanceBatchReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Attendance.Save(ctx, id, req.ScheduleID, req.Date, req.MemberIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Stats handles GET /v1/attendance/stats/:member_id?month=&year=.
func (h *AttendanceHandler) Stats(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "member_id")
	if err != nil {
		return writeError(c, err)
	}
	month, err := queryInt(c, "month")
	if err != nil {
		return writeError(c, err)
	}
	year, err := queryInt(c, "year")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.Attendance.MemberStats(ctx, id, memberID, service.StatsPeriod{Month: month, Year: year})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
