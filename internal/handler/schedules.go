package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/model"
	"github.com/iliyamo/swim-club-backend/internal/service"
)

// ScheduleHandler serves schedules, enrollments and session cancellations.
type ScheduleHandler struct {
	Schedules   *service.ScheduleService
	Enrollments *service.EnrollmentService
}

func NewScheduleHandler(schedules *service.ScheduleService, enrollments *service.EnrollmentService) *ScheduleHandler {
	if schedules == nil || enrollments == nil {
		panic("nil service passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Schedules: schedules, Enrollments: enrollments}
}

type scheduleReq struct {
	DayOfWeek string  `json:"day_of_week" validate:"required"`
	StartTime string  `json:"start_time" validate:"required"`
	EndTime   string  `json:"end_time" validate:"required"`
	CoachID   *uint64 `json:"coach_id"`
	Capacity  int     `json:"capacity" validate:"gte=0,lte=1000"`
	GroupName *string `json:"group_name" validate:"omitempty,max=100"`
	Location  *string `json:"location" validate:"omitempty,max=100"`
	IsActive  *bool   `json:"is_active"`
}

func (r scheduleReq) input() service.ScheduleInput {
	return service.ScheduleInput{
		DayOfWeek: r.DayOfWeek,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		CoachID:   r.CoachID,
		Capacity:  r.Capacity,
		GroupName: r.GroupName,
		Location:  r.Location,
		IsActive:  r.IsActive,
	}
}

type enrollReq struct {
	MemberID   uint64     `json:"member_id" validate:"required"`
	ScheduleID uint64     `json:"schedule_id" validate:"required"`
	StartDate  model.Date `json:"start_date"`
}

type cancelEnrollmentReq struct {
	EndDate *model.Date `json:"end_date"`
}

type cancelSessionReq struct {
	CancelDate model.Date `json:"cancel_date"`
	Reason     *string    `json:"reason" validate:"omitempty,max=255"`
}

type scheduleRequestReq struct {
	Message string `json:"message" validate:"notblank,max=1000"`
}

// List handles GET /v1/schedules?active_only=bool. Only active schedules
// are listed unless active_only=false.
func (h *ScheduleHandler) List(c echo.Context) error {
	activeOnly := true
	if raw := c.QueryParam("active_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return writeError(c, errBadRequest("invalid active_only"))
		}
		activeOnly = v
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Enrollments.ListSchedules(ctx, activeOnly)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ScheduleHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req scheduleReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Schedules.CreateSchedule(ctx, id, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *ScheduleHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	scheduleID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req scheduleReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Schedules.UpdateSchedule(ctx, id, scheduleID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ScheduleHandler) Delete(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	scheduleID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Schedules.DeleteSchedule(ctx, id, scheduleID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Enroll handles POST /v1/schedules/enrollments.
func (h *ScheduleHandler) Enroll(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req enrollReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Enrollments.Enroll(ctx, id, service.EnrollInput{
		MemberID:   req.MemberID,
		ScheduleID: req.ScheduleID,
		StartDate:  req.StartDate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

// CancelEnrollment handles DELETE /v1/schedules/enrollments/:id. The body
// is optional.
func (h *ScheduleHandler) CancelEnrollment(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	enrollmentID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req cancelEnrollmentReq
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return writeError(c, errBadRequest("invalid body"))
		}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Enrollments.CancelEnrollment(ctx, id, enrollmentID, req.EndDate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *ScheduleHandler) MemberEnrollments(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	memberID, err := paramID(c, "member_id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Enrollments.ListMemberEnrollments(ctx, id, memberID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ScheduleHandler) CancelSession(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	scheduleID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req cancelSessionReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	out, err := h.Schedules.CancelSession(ctx, id, scheduleID, req.CancelDate, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ScheduleHandler) ListCancellations(c echo.Context) error {
	scheduleID, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Schedules.ListCancellations(ctx, scheduleID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Request forwards a request for a new slot to the club.
func (h *ScheduleHandler) Request(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return writeError(c, err)
	}
	var req scheduleRequestReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Schedules.RequestSchedule(ctx, id, req.Message); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "received"})
}
