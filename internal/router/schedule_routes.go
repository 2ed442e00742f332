package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/handler"
)

func registerSchedules(v1 *echo.Group, s *handler.ScheduleHandler, g gates) {
	v1.GET("/schedules", s.List, g.any)
	v1.POST("/schedules", s.Create, g.owner)
	v1.PUT("/schedules/:id", s.Update, g.owner)
	v1.DELETE("/schedules/:id", s.Delete, g.owner)

	// enrollment engine
	v1.POST("/schedules/enrollments", s.Enroll, g.ownerParent)
	v1.DELETE("/schedules/enrollments/:id", s.CancelEnrollment, g.ownerParent)
	v1.GET("/schedules/members/:member_id/enrollments", s.MemberEnrollments, g.any)

	v1.POST("/schedules/:id/cancellations", s.CancelSession, g.staff)
	v1.GET("/schedules/:id/cancellations", s.ListCancellations, g.any)
	v1.POST("/schedules/requests", s.Request, g.any)
}

func registerAttendance(v1 *echo.Group, a *handler.AttendanceHandler, g gates) {
	v1.GET("/attendance/schedule/:schedule_id/date/:date", a.Sheet, g.any)
	v1.POST("/attendance/batch", a.SaveBatch, g.staff)
	v1.GET("/attendance/stats/:member_id", a.Stats, g.owner)
}
