package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/swim-club-backend/internal/handler"
)

func registerMembers(v1 *echo.Group, m *handler.MemberHandler, g gates) {
	v1.GET("/members/mine", m.Mine, g.any)
	v1.POST("/members", m.Create, g.ownerParent)
	v1.POST("/members/admin-create", m.AdminCreate, g.owner)
	v1.PUT("/members/:id", m.Update, g.ownerParent)
	v1.GET("/members/all", m.ListAll, g.staff)
	v1.POST("/members/:id/deactivate", m.Deactivate, g.ownerParent)
	v1.DELETE("/members/:id", m.Purge, g.owner)
}

func registerSkills(v1 *echo.Group, s *handler.SkillHandler, g gates, cache echo.MiddlewareFunc) {
	v1.GET("/skills", s.List, g.any, cache)
	v1.POST("/skills", s.Create, g.owner)
	v1.POST("/skills/members/:member_id", s.Award, g.staff)
	v1.DELETE("/skills/members/:member_id/:skill_id", s.Revoke, g.staff)
	v1.GET("/skills/members/:member_id", s.MemberSkills, g.any)
	v1.GET("/skills/members/:member_id/status", s.Status, g.any)
	v1.PUT("/skills/members/:member_id/batch", s.BatchReplace, g.staff)
}

func registerMessages(v1 *echo.Group, m *handler.MessageHandler, g gates) {
	v1.POST("/messages", m.Send, g.any)
	v1.GET("/messages", m.Inbox, g.any)
}
