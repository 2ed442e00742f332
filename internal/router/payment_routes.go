package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/handler"
)

func registerPayments(v1 *echo.Group, p *handler.PaymentHandler, g gates) {
	v1.POST("/payments", p.Create, g.owner)
	v1.GET("/payments/history", p.History, g.owner)
	v1.GET("/payments/yearly-summary", p.YearlySummary, g.owner)
	v1.GET("/payments/debtors", p.Debtors, g.owner)
	v1.GET("/payments/status/:member_id", p.Status, g.ownerParent)
}

func registerDashboard(v1 *echo.Group, d *handler.DashboardHandler, g gates) {
	v1.GET("/dashboard/stats", d.Stats, g.staff)
	v1.GET("/dashboard/today-schedules", d.TodaySchedules, g.staff)
}
